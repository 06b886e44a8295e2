package oauth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStateStore(t *testing.T) (*StateStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStateStore(client), mr
}

func TestStateStore_RoundTrip(t *testing.T) {
	store, _ := setupStateStore(t)
	ctx := context.Background()

	state, err := store.GenerateState(ctx, "/library")
	require.NoError(t, err)
	assert.Len(t, state, 64)

	returnTo, err := store.ConsumeState(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "/library", returnTo)

	// 只能使用一次
	_, err = store.ConsumeState(ctx, state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateStore_Invalid(t *testing.T) {
	store, _ := setupStateStore(t)
	ctx := context.Background()

	_, err := store.ConsumeState(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = store.ConsumeState(ctx, "never-issued")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateStore_Expires(t *testing.T) {
	store, mr := setupStateStore(t)
	ctx := context.Background()

	state, err := store.GenerateState(ctx, "/")
	require.NoError(t, err)

	mr.FastForward(stateTTL + time.Second)
	_, err = store.ConsumeState(ctx, state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateStore_Unique(t *testing.T) {
	store, _ := setupStateStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		state, err := store.GenerateState(ctx, "/")
		require.NoError(t, err)
		assert.False(t, seen[state])
		seen[state] = true
	}
}
