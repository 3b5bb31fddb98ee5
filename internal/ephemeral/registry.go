// Package ephemeral holds process-lifetime handles to in-memory payloads.
//
// A Registry is both the publishing side (stored payload to playable handle)
// and the resolving side (handle back to bytes) of blob: references. Handles
// never outlive the process and are not persisted.
package ephemeral

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// HandlePrefix starts every handle issued by a Registry.
const HandlePrefix = "blob:reel/"

// ErrUnknownHandle is returned when a handle was never published or has been revoked.
type ErrUnknownHandle struct {
	Handle string
}

func (e *ErrUnknownHandle) Error() string {
	return fmt.Sprintf("unknown ephemeral handle %q", e.Handle)
}

type entry struct {
	data     []byte
	mimeType string
}

// Registry maps handles to payloads. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Publish stores data under a fresh handle and returns it.
// The registry keeps its own copy of data.
func (r *Registry) Publish(data []byte, mimeType string) string {
	handle := HandlePrefix + uuid.NewString()
	cp := make([]byte, len(data))
	copy(cp, data)

	r.mu.Lock()
	r.entries[handle] = entry{data: cp, mimeType: mimeType}
	r.mu.Unlock()
	return handle
}

// Resolve returns a copy of the bytes behind handle and their declared type.
func (r *Registry) Resolve(ctx context.Context, handle string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if !strings.HasPrefix(handle, HandlePrefix) {
		return nil, "", &ErrUnknownHandle{Handle: handle}
	}

	r.mu.RLock()
	e, ok := r.entries[handle]
	r.mu.RUnlock()
	if !ok {
		return nil, "", &ErrUnknownHandle{Handle: handle}
	}

	cp := make([]byte, len(e.data))
	copy(cp, e.data)
	return cp, e.mimeType, nil
}

// Revoke releases handle. Revoking an unknown handle is a no-op.
func (r *Registry) Revoke(handle string) {
	r.mu.Lock()
	delete(r.entries, handle)
	r.mu.Unlock()
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
