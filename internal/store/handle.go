package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// State is the lifecycle position of a Handle.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Handle opens a Store lazily on first use and memoizes it.
//
// Concurrent first callers share one in-flight open, so the schema and its
// indexes are created once. A failed open is not memoized; the next call
// retries.
type Handle struct {
	path   string
	openFn func(path string) (*Store, error)

	group singleflight.Group
	opens atomic.Int64

	mu    sync.Mutex
	state State
	st    *Store
}

// NewHandle returns an uninitialized handle for the database at path.
func NewHandle(path string) *Handle {
	return &Handle{path: path, openFn: Open}
}

// Ready returns the open Store, opening it first if needed.
//
// Cancelling ctx only abandons the wait. An open already in flight runs to
// completion and its Store is kept for later callers.
func (h *Handle) Ready(ctx context.Context) (*Store, error) {
	if st := h.current(); st != nil {
		return st, nil
	}

	ch := h.group.DoChan("open", func() (any, error) {
		h.mu.Lock()
		if h.st != nil {
			st := h.st
			h.mu.Unlock()
			return st, nil
		}
		h.state = StateInitializing
		h.mu.Unlock()

		h.opens.Add(1)
		st, err := h.openFn(h.path)

		h.mu.Lock()
		defer h.mu.Unlock()
		if err != nil {
			h.state = StateUninitialized
			return nil, err
		}
		h.st = st
		h.state = StateReady
		return st, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Store), nil
	}
}

// State reports where the handle is in its lifecycle.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Opens reports how many times the underlying database has been opened.
func (h *Handle) Opens() int64 {
	return h.opens.Load()
}

// Path returns the database path the handle opens.
func (h *Handle) Path() string {
	return h.path
}

// Close closes the memoized Store, if any, and returns the handle to the
// uninitialized state.
func (h *Handle) Close() error {
	h.mu.Lock()
	st := h.st
	h.st = nil
	h.state = StateUninitialized
	h.mu.Unlock()

	if st == nil {
		return nil
	}
	return st.Close()
}

func (h *Handle) current() *Store {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.st
}
