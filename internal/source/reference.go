package source

import "strings"

const (
	// InlinePrefix marks a self-describing data URI.
	InlinePrefix = "data:"

	// EphemeralPrefix marks a process-local handle.
	EphemeralPrefix = "blob:"

	// DefaultMIMEType is used when a payload does not declare a type.
	DefaultMIMEType = "video/mp4"
)

// Kind tags the shape of a Reference.
type Kind int

const (
	KindInline Kind = iota
	KindEphemeral
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindInline:
		return "inline"
	case KindEphemeral:
		return "ephemeral"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

// Reference is a classified source reference.
type Reference struct {
	Kind Kind
	Raw  string
}

// Classify inspects only the scheme prefix of raw. Anything that is not an
// inline payload or an ephemeral handle is treated as a remote locator.
func Classify(raw string) Reference {
	switch {
	case strings.HasPrefix(raw, InlinePrefix):
		return Reference{Kind: KindInline, Raw: raw}
	case strings.HasPrefix(raw, EphemeralPrefix):
		return Reference{Kind: KindEphemeral, Raw: raw}
	default:
		return Reference{Kind: KindRemote, Raw: raw}
	}
}

// Payload is a normalized binary body with its declared type.
type Payload struct {
	Data     []byte
	MIMEType string
}

// Size returns the byte length of the payload.
func (p Payload) Size() int64 {
	return int64(len(p.Data))
}

func withDefaultType(p Payload) Payload {
	if p.MIMEType == "" {
		p.MIMEType = DefaultMIMEType
	}
	if p.Data == nil {
		p.Data = []byte{}
	}
	return p
}
