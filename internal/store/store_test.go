package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	var count int
	err = s2.db.QueryRow("SELECT COUNT(*) FROM videos").Scan(&count)
	if err != nil {
		t.Errorf("query failed: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	indexes := getTableIndexes(t, s.db, "videos")
	named := 0
	for _, idx := range indexes {
		if idx == "idx_videos_node_id" {
			named++
		}
	}
	if named != 1 {
		t.Errorf("idx_videos_node_id present %d times, want 1", named)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	path := "/nonexistent/dir/test.db"

	_, err := Open(path)
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}
	_ = s.Close()
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)

	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_UserVersion(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}
}

// Schema tests

func TestSchema_VideosTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "videos")

	expected := []string{
		"id", "node_id", "node_type", "payload", "mime_type",
		"size_bytes", "created_at", "source_reference", "extra",
	}

	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("videos table missing column %q", col)
		}
	}
}

func TestSchema_VideosIndexes(t *testing.T) {
	s := createTestStore(t)

	indexes := getTableIndexes(t, s.db, "videos")

	expected := []string{
		"idx_videos_node_id",
		"idx_videos_node_type",
		"idx_videos_created_at",
	}

	for _, idx := range expected {
		if !contains(indexes, idx) {
			t.Errorf("videos table missing index %q", idx)
		}
	}
}

func TestConstraint_SizeMatchesPayload(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO videos (id, node_id, node_type, payload, mime_type, size_bytes, created_at)
		VALUES ('v1', 'n1', 'shot', X'010203', 'video/mp4', 99, 1)
	`)
	if err == nil {
		t.Error("expected CHECK constraint failure for mismatched size_bytes")
	}
}

// Migration tests

func TestMigration_V0DatabaseGetsIndexesAndKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	raw, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	_, err = raw.Exec(`
		CREATE TABLE videos (
			id               TEXT PRIMARY KEY,
			node_id          TEXT NOT NULL,
			node_type        TEXT NOT NULL,
			payload          BLOB NOT NULL,
			mime_type        TEXT NOT NULL DEFAULT 'video/mp4',
			size_bytes       INTEGER NOT NULL CHECK (size_bytes = length(payload)),
			created_at       INTEGER NOT NULL,
			source_reference TEXT NOT NULL DEFAULT '',
			extra            TEXT
		);
		INSERT INTO videos (id, node_id, node_type, payload, size_bytes, created_at)
		VALUES ('old-1', 'n1', 'shot', X'0A0B0C', 3, 1700000000000);
	`)
	if err != nil {
		t.Fatalf("seed legacy schema: %v", err)
	}
	raw.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() on legacy database failed: %v", err)
	}
	defer s.Close()

	if err := s.verifyPragma("user_version", "1"); err != nil {
		t.Error(err)
	}

	indexes := getTableIndexes(t, s.db, "videos")
	for _, idx := range []string{"idx_videos_node_id", "idx_videos_node_type", "idx_videos_created_at"} {
		if !contains(indexes, idx) {
			t.Errorf("legacy database missing index %q after upgrade", idx)
		}
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM videos").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("row count after upgrade = %d, want 1", count)
	}
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
