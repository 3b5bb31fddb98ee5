package store

// DefaultMIMEType is recorded when a payload does not declare its type.
const DefaultMIMEType = "video/mp4"

// Record is one stored video: the normalized payload and its metadata.
type Record struct {
	ID       string `json:"id"`
	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`

	// Payload is the normalized video bytes. Only one copy is stored per record.
	Payload  []byte `json:"-"`
	MIMEType string `json:"mime_type"`

	// SizeBytes is derived from Payload on write. Values set by callers are ignored.
	SizeBytes int64 `json:"size_bytes"`

	// CreatedAt is epoch milliseconds, stamped by the writer.
	CreatedAt int64 `json:"created_at"`

	// SourceReference is the data:, blob: or remote reference the payload came from.
	SourceReference string `json:"source_reference"`

	Extra map[string]any `json:"extra,omitempty"`
}

// Usage aggregates all live records.
type Usage struct {
	Count          int64 `json:"count"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}
