package store

import (
	"context"
	"fmt"
)

// Upsert inserts a record or fully replaces the record with the same ID.
//
// The row and every secondary index entry are written in one transaction, so
// readers see either the previous record or the new one. SizeBytes is
// recomputed from Payload; a missing MIMEType falls back to DefaultMIMEType.
func (s *Store) Upsert(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("upsert video: empty id")
	}

	payload := rec.Payload
	if payload == nil {
		// go-sqlite3 binds a nil slice as NULL
		payload = []byte{}
	}
	mimeType := rec.MIMEType
	if mimeType == "" {
		mimeType = DefaultMIMEType
	}

	extraJSON, err := marshalExtra(rec.Extra)
	if err != nil {
		return fmt.Errorf("upsert video %q: %w", rec.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert video %q: begin tx: %w", rec.ID, err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO videos
		(id, node_id, node_type, payload, mime_type, size_bytes, created_at, source_reference, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			node_id = excluded.node_id,
			node_type = excluded.node_type,
			payload = excluded.payload,
			mime_type = excluded.mime_type,
			size_bytes = excluded.size_bytes,
			created_at = excluded.created_at,
			source_reference = excluded.source_reference,
			extra = excluded.extra
	`,
		rec.ID,
		rec.NodeID,
		rec.NodeType,
		payload,
		mimeType,
		int64(len(payload)),
		rec.CreatedAt,
		rec.SourceReference,
		extraJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert video %q: insert: %w", rec.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("upsert video %q: commit: %w", rec.ID, err)
	}
	return nil
}

// Delete removes the record with the given ID.
// Deleting an ID that does not exist is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete video %q: %w", id, err)
	}
	return nil
}

// Clear removes every record. Returns the number of rows removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM videos`)
	if err != nil {
		return 0, fmt.Errorf("clear videos: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear videos: rows affected: %w", err)
	}
	return n, nil
}
