package ephemeral

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishResolve(t *testing.T) {
	r := NewRegistry()
	data := []byte("frame data")

	h := r.Publish(data, "video/webm")
	assert.True(t, strings.HasPrefix(h, HandlePrefix))
	assert.Equal(t, 1, r.Len())

	// Mutating the caller's slice must not affect the published copy
	data[0] = 'X'

	got, mimeType, err := r.Resolve(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, "frame data", string(got))
	assert.Equal(t, "video/webm", mimeType)
}

func TestPublish_UniqueHandles(t *testing.T) {
	r := NewRegistry()
	a := r.Publish([]byte("x"), "")
	b := r.Publish([]byte("x"), "")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.Len())
}

func TestResolve_Unknown(t *testing.T) {
	r := NewRegistry()

	for _, h := range []string{HandlePrefix + "missing", "blob:http://elsewhere/x", "not-a-handle"} {
		_, _, err := r.Resolve(context.Background(), h)
		var unknown *ErrUnknownHandle
		require.True(t, errors.As(err, &unknown), "handle %q", h)
		assert.Equal(t, h, unknown.Handle)
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	r := NewRegistry()
	h := r.Publish([]byte("x"), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.Resolve(ctx, h)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRevoke(t *testing.T) {
	r := NewRegistry()
	h := r.Publish([]byte("x"), "")

	r.Revoke(h)
	r.Revoke(h)
	assert.Equal(t, 0, r.Len())

	_, _, err := r.Resolve(context.Background(), h)
	assert.Error(t, err)
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := r.Publish([]byte("payload"), "video/mp4")
			got, _, err := r.Resolve(context.Background(), h)
			assert.NoError(t, err)
			assert.Equal(t, "payload", string(got))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, r.Len())
}
