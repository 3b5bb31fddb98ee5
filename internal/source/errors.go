package source

import "fmt"

// DecodeError reports a malformed inline payload.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode inline payload: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode inline payload: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FetchError reports a failed ephemeral or remote resolution.
// StatusCode is set when a remote server answered with a non-success status.
type FetchError struct {
	Kind       Kind
	Locator    string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch %s %q: status %d", e.Kind, e.Locator, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s %q: %v", e.Kind, e.Locator, e.Err)
	default:
		return fmt.Sprintf("fetch %s %q failed", e.Kind, e.Locator)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
