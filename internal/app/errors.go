package service

import "errors"

// Sentinel error kinds returned by FindVideo. Callers map them with errors.Is.
var (
	ErrInvalidRequest = errors.New("invalid video request")
	ErrNotConfigured  = errors.New("video search not configured")
	ErrSearchFailed   = errors.New("video search failed")
)
