package interfaces

import (
	"context"
	"io"
)

// BlobStore keeps uploaded framework source files
type BlobStore interface {
	// Get opens the object at key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Put writes r to key
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
}
