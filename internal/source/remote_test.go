package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/webm; charset=binary")
		_, _ = w.Write([]byte("remote-bytes"))
	}))
	defer srv.Close()

	p, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), srv.URL+"/clip.webm")
	require.NoError(t, err)
	assert.Equal(t, "remote-bytes", string(p.Data))
	assert.Equal(t, "video/webm", p.MIMEType)
}

func TestHTTPFetcher_NoContentTypeDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// An explicit empty header keeps net/http from sniffing one
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte{0x00, 0x00, 0x00, 0x18})
	}))
	defer srv.Close()

	p, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, DefaultMIMEType, p.MIMEType)
	assert.Equal(t, int64(4), p.Size())
}

func TestHTTPFetcher_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Equal(t, KindRemote, fe.Kind)
	assert.Contains(t, err.Error(), "status 404")
}

func TestHTTPFetcher_Timeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(done)

	_, err := NewHTTPFetcher(50*time.Millisecond).Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestHTTPFetcher_InvalidLocator(t *testing.T) {
	_, err := NewHTTPFetcher(time.Second).Fetch(context.Background(), "::not a url")
	require.Error(t, err)

	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "", mediaType(""))
	assert.Equal(t, "video/mp4", mediaType("video/mp4"))
	assert.Equal(t, "video/mp4", mediaType("Video/MP4; codecs=avc1"))
	assert.Equal(t, "", mediaType("; ;"))
}
