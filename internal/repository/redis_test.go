package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisMirrorStore(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	store := NewRedisMirrorStore(client, time.Hour)
	ctx := context.Background()

	t.Run("StoreAndLoad", func(t *testing.T) {
		require.NoError(t, store.Store(ctx, "schedly:appointments", []byte(`[]`)))

		got, ok, err := store.Load(ctx, "schedly:appointments")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "[]", string(got))
		assert.Equal(t, time.Hour, s.TTL("schedly:appointments"))
	})

	t.Run("Missing", func(t *testing.T) {
		_, ok, err := store.Load(ctx, "schedly:none")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Expiry", func(t *testing.T) {
		require.NoError(t, store.Store(ctx, "schedly:services", []byte(`[]`)))
		s.FastForward(time.Hour + time.Second)

		_, ok, err := store.Load(ctx, "schedly:services")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Store(ctx, "schedly:services", []byte(`[]`)))
		require.NoError(t, store.Delete(ctx, "schedly:services"))
		assert.False(t, s.Exists("schedly:services"))
	})

	t.Run("NilClient", func(t *testing.T) {
		store := NewRedisMirrorStore(nil, time.Hour)
		_, _, err := store.Load(ctx, "k")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("ServerDown", func(t *testing.T) {
		s.SetError("LOADING")
		defer s.SetError("")
		_, _, err := store.Load(ctx, "k")
		assert.Error(t, err)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("Close", func(t *testing.T) {
		assert.NoError(t, Close(client))
		assert.NoError(t, Close(nil))
	})
}
