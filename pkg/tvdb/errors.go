package tvdb

import "errors"

// Sentinel errors for TVDB API responses.
var (
	// ErrInvalidID indicates a non-positive series or IMDb ID.
	ErrInvalidID = errors.New("invalid id")

	// ErrUnauthorized indicates the API key was rejected or the session
	// token expired.
	ErrUnauthorized = errors.New("unauthorized: invalid or expired API key")

	// ErrNotFound indicates the requested series doesn't exist.
	ErrNotFound = errors.New("series not found")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = errors.New("rate limited: too many requests")
)
