package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, found, err := store.Get(ctx, "mall_cart_guest")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set(ctx, "mall_cart_guest", "[]"))
	require.NoError(t, store.Set(ctx, "mall_cart_alice", `[{"productId":"a"}]`))

	value, found, err := store.Get(ctx, "mall_cart_alice")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"productId":"a"}]`, value)
	assert.Equal(t, []string{"mall_cart_alice", "mall_cart_guest"}, store.Keys())

	require.NoError(t, store.Delete(ctx, "mall_cart_alice"))
	assert.Equal(t, []string{"mall_cart_guest"}, store.Keys())
	assert.NoError(t, store.Ping(ctx))
}

func TestStoreHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := New()

	assert.ErrorIs(t, store.Set(ctx, "k", "v"), context.Canceled)
	_, _, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.Keys())
}
