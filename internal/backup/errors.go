// Package backup serializes the paint collection to a portable JSON
// snapshot and restores from one.
package backup

import "errors"

var (
	// ErrInvalidSnapshot indicates the document is not parsable or has no
	// paint list.
	ErrInvalidSnapshot = errors.New("invalid snapshot document")

	// ErrVersionMismatch indicates the snapshot format version is newer
	// than this build understands.
	ErrVersionMismatch = errors.New("snapshot version not supported")
)
