package source

import (
	"context"
	"errors"
)

// LocalResolver resolves ephemeral handles to the bytes they reference.
type LocalResolver interface {
	Resolve(ctx context.Context, handle string) ([]byte, string, error)
}

// Normalizer turns any classified Reference into exactly one Payload.
type Normalizer struct {
	Local  LocalResolver
	Remote Fetcher
}

// NewNormalizer wires the ephemeral resolver and remote fetcher.
func NewNormalizer(local LocalResolver, remote Fetcher) *Normalizer {
	return &Normalizer{Local: local, Remote: remote}
}

// Normalize resolves ref. No partial payload is returned on error.
func (n *Normalizer) Normalize(ctx context.Context, ref Reference) (Payload, error) {
	switch ref.Kind {
	case KindInline:
		return DecodeInline(ref.Raw)

	case KindEphemeral:
		if n.Local == nil {
			return Payload{}, &FetchError{Kind: KindEphemeral, Locator: ref.Raw}
		}
		data, mimeType, err := n.Local.Resolve(ctx, ref.Raw)
		if err != nil {
			return Payload{}, &FetchError{Kind: KindEphemeral, Locator: ref.Raw, Err: err}
		}
		return withDefaultType(Payload{Data: data, MIMEType: mimeType}), nil

	default:
		if n.Remote == nil {
			return Payload{}, &FetchError{Kind: KindRemote, Locator: ref.Raw}
		}
		p, err := n.Remote.Fetch(ctx, ref.Raw)
		if err != nil {
			var fe *FetchError
			if errors.As(err, &fe) {
				return Payload{}, err
			}
			return Payload{}, &FetchError{Kind: KindRemote, Locator: ref.Raw, Err: err}
		}
		return withDefaultType(p), nil
	}
}
