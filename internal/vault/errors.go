package vault

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes vault failures.
type ErrorCode string

const (
	// ErrCodeStorageUnavailable indicates the database could not be opened or created.
	ErrCodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"

	// ErrCodeDecode indicates a malformed inline payload.
	ErrCodeDecode ErrorCode = "DECODE_ERROR"

	// ErrCodeFetchFailed indicates an ephemeral or remote reference could not be resolved.
	ErrCodeFetchFailed ErrorCode = "FETCH_FAILED"

	// ErrCodeWriteFailed indicates a write transaction failed.
	ErrCodeWriteFailed ErrorCode = "WRITE_FAILED"

	// ErrCodeReadFailed indicates a read failed for a reason other than a miss.
	ErrCodeReadFailed ErrorCode = "READ_FAILED"

	// ErrCodeInvalidInput indicates the caller passed unusable arguments.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Error is returned by every Vault operation that fails.
type Error struct {
	Code ErrorCode

	// Op names the operation, e.g. "put" or "delete".
	Op string

	// ID is the record or node the operation targeted, when there is one.
	ID string

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Op, e.Code)
	if e.ID != "" {
		msg = fmt.Sprintf("%s %q: %s", e.Op, e.ID, e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode carried by err, or "" if err is not a vault error.
func CodeOf(err error) ErrorCode {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Code
	}
	return ""
}

// IsStorageUnavailable reports whether err means the database could not be opened.
func IsStorageUnavailable(err error) bool {
	return CodeOf(err) == ErrCodeStorageUnavailable
}

// IsDecodeError reports whether err came from a malformed inline payload.
func IsDecodeError(err error) bool {
	return CodeOf(err) == ErrCodeDecode
}

// IsFetchFailed reports whether err came from ephemeral or remote resolution.
func IsFetchFailed(err error) bool {
	return CodeOf(err) == ErrCodeFetchFailed
}

// IsWriteFailed reports whether err came from a failed write transaction.
func IsWriteFailed(err error) bool {
	return CodeOf(err) == ErrCodeWriteFailed
}

// IsReadFailed reports whether err came from a failed read.
func IsReadFailed(err error) bool {
	return CodeOf(err) == ErrCodeReadFailed
}
