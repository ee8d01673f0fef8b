package api

// API limits and constants.
const (
	// MaxUploadSize is the maximum allowed size for photo uploads and
	// snapshot imports (10 MB).
	MaxUploadSize = 10 << 20
)

// Cache-Control header values.
const (
	CacheOneDayPrivate = "private, max-age=86400"
	CacheNoStore       = "no-cache"
)
