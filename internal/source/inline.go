package source

import (
	"encoding/base64"
	"strings"
)

// DecodeInline parses a data URI of the form
//
//	data:[<mime>][;param=value]*[;base64],<payload>
//
// The payload segment is always base64-decoded. Whitespace inside it is
// ignored and unpadded input is accepted.
func DecodeInline(raw string) (Payload, error) {
	if !strings.HasPrefix(raw, InlinePrefix) {
		return Payload{}, &DecodeError{Reason: "missing data: prefix"}
	}

	header, body, ok := strings.Cut(raw[len(InlinePrefix):], ",")
	if !ok {
		return Payload{}, &DecodeError{Reason: "missing ',' between header and payload"}
	}

	mimeType, _, _ := strings.Cut(header, ";")
	mimeType = strings.TrimSpace(mimeType)

	body = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, body)

	enc := base64.StdEncoding
	if len(body)%4 != 0 {
		enc = base64.RawStdEncoding
	}
	data, err := enc.DecodeString(body)
	if err != nil {
		return Payload{}, &DecodeError{Reason: "invalid base64", Err: err}
	}

	return withDefaultType(Payload{Data: data, MIMEType: mimeType}), nil
}

// EncodeInline renders data as a base64 data URI.
func EncodeInline(data []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}
	return InlinePrefix + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
