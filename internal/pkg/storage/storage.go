package storage

import (
	"context"
	"errors"
	"io"
)

// ErrBlobNotFound is returned when the requested blob does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// Blobs is the interface for binary content storage.
type Blobs interface {
	// Put writes the content under the given relative path, creating parent
	// directories as needed.
	Put(ctx context.Context, path string, content io.Reader) error

	// Open returns a reader for the blob at the given relative path, or
	// ErrBlobNotFound.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Remove deletes the blob. Removing a missing blob is not an error.
	Remove(ctx context.Context, path string) error
}
