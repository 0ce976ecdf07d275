package secretstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	store := NewMemory()

	t.Run("GetMissing", func(t *testing.T) {
		v, found, err := store.Get("nope")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, v)
	})

	t.Run("PutThenGet", func(t *testing.T) {
		require.NoError(t, store.Put("pair_token", []byte("secret-bytes")))

		v, found, err := store.Get("pair_token")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("secret-bytes"), v)
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		require.NoError(t, store.Put("k", []byte("v1")))
		require.NoError(t, store.Put("k", []byte("v2")))

		v, found, err := store.Get("k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("v2"), v)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Put("gone", []byte("x")))
		require.NoError(t, store.Delete("gone"))

		_, found, err := store.Get("gone")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("DeleteMissingIsNoop", func(t *testing.T) {
		assert.NoError(t, store.Delete("never-existed"))
	})

	t.Run("GetReturnsCopyNotAlias", func(t *testing.T) {
		original := []byte("mutate-me")
		require.NoError(t, store.Put("alias", original))
		original[0] = 'X'

		v, found, err := store.Get("alias")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("mutate-me"), v)
	})
}
