package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	t.Run("absent key reads as nil", func(t *testing.T) {
		value, err := store.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("set get remove", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "inventory:v1", []byte(`{"stock":5}`)))

		value, err := store.Get(ctx, "inventory:v1")
		require.NoError(t, err)
		assert.JSONEq(t, `{"stock":5}`, string(value))

		removed, err := store.Remove(ctx, "inventory:v1")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = store.Remove(ctx, "inventory:v1")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("values are copied", func(t *testing.T) {
		raw := []byte("abc")
		require.NoError(t, store.Set(ctx, "k", raw))
		raw[0] = 'x'

		value, _ := store.Get(ctx, "k")
		assert.Equal(t, "abc", string(value))
	})

	t.Run("instances are isolated", func(t *testing.T) {
		other := NewMemoryStore()
		value, err := other.Get(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("keys by prefix", func(t *testing.T) {
		s := NewMemoryStore()
		_ = s.Set(ctx, "a:2", nil)
		_ = s.Set(ctx, "a:1", nil)
		_ = s.Set(ctx, "b:1", nil)
		assert.Equal(t, []string{"a:1", "a:2"}, s.Keys("a:"))
	})
}
