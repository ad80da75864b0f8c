package kvstore

import (
	"context"
	"errors"
)

var ErrKeyNotFound = errors.New("key not found")

// Store is a key-scoped value store. Keys are opaque strings built as
// "{userId}:{entityType}:{entitySuffix}" and values are JSON documents.
// ListByPrefix returns values in no particular order.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	ListByPrefix(ctx context.Context, prefix string) ([][]byte, error)
}
