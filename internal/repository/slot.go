package repository

import (
	"context"
	"errors"
)

// ErrSlotEmpty indicates nothing has been written under the key yet.
var ErrSlotEmpty = errors.New("storage slot is empty")

// Slot is a durable key-value cell holding a whole serialized store.
// Write replaces the previous value completely or leaves it untouched.
type Slot interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
	Backend() string
}
