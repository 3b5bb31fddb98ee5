// Package manifest loads YAML batch-ingest manifests and feeds them to a vault.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reel/internal/source"
)

// Manifest lists videos to ingest in one run.
type Manifest struct {
	// Entries are ingested in file order.
	Entries []Entry `yaml:"entries"`
}

// Entry describes one video to store.
type Entry struct {
	// ID is the record id. If empty, an id is generated from NodeID and the
	// current time.
	ID string `yaml:"id,omitempty"`

	// NodeID is the owning node. Required.
	NodeID string `yaml:"node_id"`

	// NodeType tags the owning node's kind. Required.
	NodeType string `yaml:"node_type"`

	// Source is a data:, blob: or remote reference.
	// Exactly one of Source and File must be set.
	Source string `yaml:"source,omitempty"`

	// File is a local file whose bytes are inlined as a data: reference.
	// Relative paths resolve against the manifest's directory.
	File string `yaml:"file,omitempty"`

	// MIMEType applies to File entries only. Defaults to video/mp4.
	MIMEType string `yaml:"mime_type,omitempty"`

	// Metadata is stored verbatim as the record's extra column.
	Metadata map[string]interface{} `yaml:"metadata,omitempty"`
}

// Load reads and parses a manifest file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or fails validation.
// File paths are resolved relative to the manifest's directory.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes manifest YAML. basePath anchors relative File entries; pass
// "" to leave them untouched.
func Parse(data []byte, basePath string) (*Manifest, error) {
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i := range m.Entries {
		f := m.Entries[i].File
		if f != "" && !filepath.IsAbs(f) && basePath != "" {
			m.Entries[i].File = filepath.Join(basePath, f)
		}
	}

	if err := validate(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	return &m, nil
}

func validate(m *Manifest) error {
	if len(m.Entries) == 0 {
		return fmt.Errorf("entries list is required and must be non-empty")
	}

	seen := make(map[string]int)
	for i, e := range m.Entries {
		if e.NodeID == "" {
			return fmt.Errorf("entries[%d]: node_id is required", i)
		}
		if e.NodeType == "" {
			return fmt.Errorf("entries[%d]: node_type is required", i)
		}
		switch {
		case e.Source == "" && e.File == "":
			return fmt.Errorf("entries[%d]: one of source or file is required", i)
		case e.Source != "" && e.File != "":
			return fmt.Errorf("entries[%d]: source and file are mutually exclusive", i)
		}
		if e.MIMEType != "" && e.File == "" {
			return fmt.Errorf("entries[%d]: mime_type only applies to file entries", i)
		}
		if e.ID != "" {
			if prev, dup := seen[e.ID]; dup {
				return fmt.Errorf("entries[%d]: duplicate id %q (first at entries[%d])", i, e.ID, prev)
			}
			seen[e.ID] = i
		}
	}
	return nil
}

// Reference returns the source reference the entry resolves to. File entries
// are read and encoded as a data: URI.
func (e Entry) Reference() (string, error) {
	if e.File == "" {
		return e.Source, nil
	}
	data, err := os.ReadFile(e.File)
	if err != nil {
		return "", fmt.Errorf("failed to read video file: %w", err)
	}
	return source.EncodeInline(data, e.MIMEType), nil
}
