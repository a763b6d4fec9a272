package kv_test

import (
	"context"
	"testing"

	"github.com/gmcandra/mebelshop/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "cart:1", []byte(`[{"product_id":"p1"}]`)))

	got, err := store.Get(ctx, "cart:1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"product_id":"p1"}]`), got)
}

func TestMemoryGetMissing(t *testing.T) {
	store := kv.NewMemory()

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestMemoryDelete(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "token", []byte("abc")))
	require.NoError(t, store.Delete(ctx, "token"))

	_, err := store.Get(ctx, "token")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	// Deleting an absent key is a no-op, not an error.
	assert.NoError(t, store.Delete(ctx, "token"))
}

func TestMemoryCopiesValues(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()

	val := []byte("original")
	require.NoError(t, store.Set(ctx, "k", val))
	val[0] = 'X'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)

	got[0] = 'Y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}
