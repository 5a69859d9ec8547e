package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrItemNotFound indicates the remote item no longer exists
	ErrItemNotFound = errors.New("drive item not found")

	// ErrDriveUnreachable indicates the drive API is unreachable
	ErrDriveUnreachable = errors.New("drive is unreachable")

	// ErrAuthFailed indicates the access token was rejected
	ErrAuthFailed = errors.New("access token is invalid")

	// ErrRateLimited indicates the drive throttled the request even after
	// the single backoff retry
	ErrRateLimited = errors.New("drive rate limit exceeded")

	// ErrNoDownloadURL indicates the item has no retrievable direct link
	ErrNoDownloadURL = errors.New("item has no download url")
)
