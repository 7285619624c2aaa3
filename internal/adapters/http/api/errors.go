package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors. The messages of ErrNotConfigured and
// ErrSearchFailed are sent to clients verbatim.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrNotConfigured = errors.New("YouTube API not configured")
	ErrSearchFailed  = errors.New("failed to search video")
)

// NewKind returns kind prefixed with the failing operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind attaches kind and the underlying cause to op. Both stay visible
// to errors.Is.
func WrapKind(op string, kind, err error) error {
	if err == nil {
		return NewKind(op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// Wrap prefixes err with op. It returns nil for a nil err.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
