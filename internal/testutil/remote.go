package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// VideoServer is an httptest server that serves fixed bodies by path.
//
// Unknown paths answer 404. Bodies registered with an empty content type are
// served without a Content-Type header so callers exercise their default.
//
// Thread-safety: Serve and Hits are safe for concurrent use.
type VideoServer struct {
	*httptest.Server

	mu     sync.RWMutex
	bodies map[string]fixture
	hits   atomic.Int64
}

type fixture struct {
	body        []byte
	contentType string
}

// NewVideoServer starts a server that is closed when the test ends.
func NewVideoServer(t *testing.T) *VideoServer {
	t.Helper()
	vs := &VideoServer{bodies: make(map[string]fixture)}
	vs.Server = httptest.NewServer(http.HandlerFunc(vs.handle))
	t.Cleanup(vs.Close)
	return vs
}

// Serve registers body at path and returns the absolute URL for it.
func (vs *VideoServer) Serve(path string, body []byte, contentType string) string {
	vs.mu.Lock()
	vs.bodies[path] = fixture{body: body, contentType: contentType}
	vs.mu.Unlock()
	return vs.URL + path
}

// Hits returns the number of requests received.
func (vs *VideoServer) Hits() int64 {
	return vs.hits.Load()
}

func (vs *VideoServer) handle(w http.ResponseWriter, r *http.Request) {
	vs.hits.Add(1)

	vs.mu.RLock()
	f, ok := vs.bodies[r.URL.Path]
	vs.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	if f.contentType == "" {
		w.Header()["Content-Type"] = nil
	} else {
		w.Header().Set("Content-Type", f.contentType)
	}
	_, _ = w.Write(f.body)
}
