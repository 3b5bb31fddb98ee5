package source

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInline(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantData string
		wantMIME string
	}{
		{"declared type", "data:video/webm;base64,aGVsbG8=", "hello", "video/webm"},
		{"no declared type", "data:;base64,aGVsbG8=", "hello", DefaultMIMEType},
		{"bare header", "data:,aGVsbG8=", "hello", DefaultMIMEType},
		{"type without base64 flag", "data:video/ogg,aGk=", "hi", "video/ogg"},
		{"extra params", "data:video/mp4;codecs=avc1;base64,aGk=", "hi", "video/mp4"},
		{"unpadded", "data:video/mp4;base64,aGk", "hi", "video/mp4"},
		{"wrapped lines", "data:video/mp4;base64,aGVs\nbG8=", "hello", "video/mp4"},
		{"empty payload", "data:video/mp4;base64,", "", "video/mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeInline(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantData, string(p.Data))
			assert.Equal(t, tt.wantMIME, p.MIMEType)
			assert.NotNil(t, p.Data)
		})
	}
}

func TestDecodeInline_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing comma", "data:video/mp4;base64"},
		{"bad base64", "data:video/mp4;base64,!!!!"},
		{"not a data uri", "https://example.com/a.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeInline(tt.raw)
			require.Error(t, err)
			var de *DecodeError
			assert.True(t, errors.As(err, &de), "expected *DecodeError, got %T", err)
		})
	}
}

func TestEncodeInline_RoundTrip(t *testing.T) {
	data := []byte{0x00, 0x01, 0xfe, 0xff, 'm', 'p', '4'}

	raw := EncodeInline(data, "video/quicktime")
	assert.Equal(t, KindInline, Classify(raw).Kind)

	p, err := DecodeInline(raw)
	require.NoError(t, err)
	assert.Equal(t, data, p.Data)
	assert.Equal(t, "video/quicktime", p.MIMEType)

	p, err = DecodeInline(EncodeInline(data, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultMIMEType, p.MIMEType)
}
