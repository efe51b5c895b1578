package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no object exists under the requested key.
var ErrNotFound = errors.New("blob not found")

// Store abstracts the durable byte storage behind file uploads.
type Store interface {
	// Put writes the object under key, overwriting any previous content.
	Put(ctx context.Context, key string, data []byte) error

	// Get reads the object stored under key.
	// Returns ErrNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)
}
