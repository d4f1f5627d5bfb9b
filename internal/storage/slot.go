package storage

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("storage: not found")

// Slot is a key-value persistence target. Write always replaces the whole
// value stored under key.
type Slot interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
}

// Stamped is implemented by slots that record when a key was last written.
type Stamped interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}
