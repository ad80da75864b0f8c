package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore_GetSetDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	assert.NoError(t, store.Set(ctx, "user-1:watchlist:600519", []byte(`{"stockCode":"600519"}`)))

	value, err := store.Get(ctx, "user-1:watchlist:600519")
	assert.NoError(t, err)
	assert.Equal(t, `{"stockCode":"600519"}`, string(value))

	assert.NoError(t, store.Set(ctx, "user-1:watchlist:600519", []byte(`{"stockCode":"600519","stockName":"贵州茅台"}`)))
	value, err = store.Get(ctx, "user-1:watchlist:600519")
	assert.NoError(t, err)
	assert.Contains(t, string(value), "贵州茅台")

	assert.NoError(t, store.Delete(ctx, "user-1:watchlist:600519"))
	_, err = store.Get(ctx, "user-1:watchlist:600519")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// deleting an absent key is a no-op
	assert.NoError(t, store.Delete(ctx, "user-1:watchlist:600519"))
}

func TestMemoryStore_ListByPrefix(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	assert.NoError(t, store.Set(ctx, "user-1:transaction:1", []byte(`a`)))
	assert.NoError(t, store.Set(ctx, "user-1:transaction:2", []byte(`b`)))
	assert.NoError(t, store.Set(ctx, "user-1:watchlist:600519", []byte(`c`)))
	assert.NoError(t, store.Set(ctx, "user-2:transaction:3", []byte(`d`)))

	values, err := store.ListByPrefix(ctx, "user-1:transaction:")
	assert.NoError(t, err)
	assert.Len(t, values, 2)
	for _, value := range values {
		assert.Contains(t, []string{"a", "b"}, string(value))
	}

	values, err = store.ListByPrefix(ctx, "user-3:")
	assert.NoError(t, err)
	assert.Empty(t, values)
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := []byte("payload")
	assert.NoError(t, store.Set(ctx, "key", original))
	original[0] = 'X'

	value, err := store.Get(ctx, "key")
	assert.NoError(t, err)
	assert.Equal(t, "payload", string(value))

	value[0] = 'Y'
	again, err := store.Get(ctx, "key")
	assert.NoError(t, err)
	assert.Equal(t, "payload", string(again))
}
