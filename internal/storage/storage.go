// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned by Get when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// Storage is the interface for storing and retrieving binary objects.
type Storage interface {
	// Put streams size bytes from reader to the store under the given key.
	// An existing object under the same key is overwritten.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Get opens a streaming, single-pass handle to the object at key.
	// The caller must Close the returned reader on every exit path to
	// release the underlying connection. Returns ErrObjectNotFound when
	// no object exists under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object at key. Deleting a nonexistent key is not
	// an error.
	Delete(ctx context.Context, key string) error
	// PresignedURL returns a time-limited URL that allows downloading the
	// object at key without credentials.
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
