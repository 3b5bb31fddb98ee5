package store

import (
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecord creates a record with minimal required fields.
func createTestRecord(id, nodeID string, payload []byte, createdAt int64) Record {
	return Record{
		ID:              id,
		NodeID:          nodeID,
		NodeType:        "shot",
		Payload:         payload,
		CreatedAt:       createdAt,
		SourceReference: "data:video/mp4;base64,AAAA",
	}
}
