package store

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalExtra converts caller metadata to JSON TEXT for storage.
// Empty or nil maps are stored as NULL.
func marshalExtra(extra map[string]any) (sql.NullString, error) {
	if len(extra) == 0 {
		return sql.NullString{}, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(extra); err != nil {
		return sql.NullString{}, fmt.Errorf("marshal extra: %w", err)
	}
	return sql.NullString{String: strings.TrimSpace(buf.String()), Valid: true}, nil
}

// ValidateExtra reports whether extra can be stored. Values JSON cannot
// encode (channels, funcs, NaN) are rejected.
func ValidateExtra(extra map[string]any) error {
	_, err := marshalExtra(extra)
	return err
}

// unmarshalExtra parses stored metadata. NULL yields a nil map.
func unmarshalExtra(data sql.NullString) (map[string]any, error) {
	if !data.Valid || data.String == "" {
		return nil, nil
	}
	var extra map[string]any
	if err := json.Unmarshal([]byte(data.String), &extra); err != nil {
		return nil, fmt.Errorf("unmarshal extra: %w", err)
	}
	return extra, nil
}
