package videosearch

import "errors"

// Sentinel error kinds for provider calls. These allow errors.Is from callers.
var (
	ErrNotConfigured = errors.New("video search not configured")
	ErrTransport     = errors.New("video search transport failed")
	ErrProvider      = errors.New("video search provider error")
	ErrDecode        = errors.New("video search response malformed")
)
