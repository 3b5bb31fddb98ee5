package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const recordColumns = `id, node_id, node_type, payload, mime_type, size_bytes, created_at, source_reference, extra`

// Get retrieves a single record by ID.
// Returns (nil, nil) if no record exists - a miss is not an error.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM videos
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get video %q: %w", id, err)
	}
	return &rec, nil
}

// ListByNode returns every record owned by nodeID using idx_videos_node_id.
// Results are ordered by created_at then id; returns an empty slice (not nil)
// when nothing matches.
func (s *Store) ListByNode(ctx context.Context, nodeID string) ([]Record, error) {
	return s.listWhere(ctx, "list by node", `node_id = ?`, nodeID)
}

// ListByNodeType returns every record tagged with nodeType using idx_videos_node_type.
func (s *Store) ListByNodeType(ctx context.Context, nodeType string) ([]Record, error) {
	return s.listWhere(ctx, "list by node type", `node_type = ?`, nodeType)
}

// ListCreatedSince returns records written at or after sinceMillis using
// idx_videos_created_at.
func (s *Store) ListCreatedSince(ctx context.Context, sinceMillis int64) ([]Record, error) {
	return s.listWhere(ctx, "list created since", `created_at >= ?`, sinceMillis)
}

func (s *Store) listWhere(ctx context.Context, op, where string, arg any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM videos
		WHERE `+where+`
		ORDER BY created_at ASC, id COLLATE BINARY ASC
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return records, nil
}

// ListIDs returns every stored ID in ascending order.
func (s *Store) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM videos ORDER BY id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list ids: scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list ids: iterate: %w", err)
	}
	return ids, nil
}

// Usage returns the record count and the sum of size_bytes over all records.
func (s *Store) Usage(ctx context.Context) (Usage, error) {
	var u Usage
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(size_bytes), 0)
		FROM videos
	`).Scan(&u.Count, &u.TotalSizeBytes)
	if err != nil {
		return Usage{}, fmt.Errorf("usage: %w", err)
	}
	return u, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var extraJSON sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.NodeID,
		&rec.NodeType,
		&rec.Payload,
		&rec.MIMEType,
		&rec.SizeBytes,
		&rec.CreatedAt,
		&rec.SourceReference,
		&extraJSON,
	)
	if err != nil {
		return Record{}, err
	}

	rec.Extra, err = unmarshalExtra(extraJSON)
	if err != nil {
		return Record{}, fmt.Errorf("record %q: %w", rec.ID, err)
	}
	if rec.Payload == nil {
		rec.Payload = []byte{}
	}
	return rec, nil
}
