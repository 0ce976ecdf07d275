package secretstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/allow2/offlinecore/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal(t *testing.T) {
	t.Run("StoreAndLoad", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocal(dir, "correct horse battery staple")
		require.NoError(t, err)

		require.NoError(t, store.Put("pair_token", []byte("the pairing secret")))

		v, found, err := store.Get("pair_token")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("the pairing secret"), v)
	})

	t.Run("GetMissingIsNotAnError", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocal(dir, "passphrase")
		require.NoError(t, err)

		v, found, err := store.Get("absent")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, v)
	})

	t.Run("WrongPassphraseFailsAuthentication", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocal(dir, "right-passphrase")
		require.NoError(t, err)
		require.NoError(t, store.Put("k", []byte("v")))

		other, err := NewLocal(dir, "wrong-passphrase")
		require.NoError(t, err)

		_, _, err = other.Get("k")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.BadSignature))
	})

	t.Run("Delete", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocal(dir, "passphrase")
		require.NoError(t, err)
		require.NoError(t, store.Put("k", []byte("v")))

		require.NoError(t, store.Delete("k"))

		_, found, err := store.Get("k")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("DeleteMissingIsNoop", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocal(dir, "passphrase")
		require.NoError(t, err)
		assert.NoError(t, store.Delete("never-existed"))
	})

	t.Run("FileHasRestrictedPermissions", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocal(dir, "passphrase")
		require.NoError(t, err)
		require.NoError(t, store.Put("k", []byte("v")))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)

		info, err := os.Stat(filepath.Join(dir, entries[0].Name()))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("OverwriteChangesCiphertextAndSalt", func(t *testing.T) {
		dir := t.TempDir()
		store, err := NewLocal(dir, "passphrase")
		require.NoError(t, err)

		require.NoError(t, store.Put("k", []byte("v1")))
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		first, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
		require.NoError(t, err)

		require.NoError(t, store.Put("k", []byte("v2")))
		second, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
		require.NoError(t, err)

		assert.NotEqual(t, first, second)

		v, found, err := store.Get("k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte("v2"), v)
	})
}
