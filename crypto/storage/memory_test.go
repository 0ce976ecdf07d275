// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package storage

import (
	"fmt"
	"testing"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKeyStorage(t *testing.T) {
	provider := sagecrypto.NewProvider()
	storage := NewMemoryKeyStorage()

	t.Run("StoreAndLoadKeyPair", func(t *testing.T) {
		keyPair, err := provider.GenerateKeypair()
		require.NoError(t, err)

		err = storage.Store("test-key", keyPair)
		require.NoError(t, err)

		loadedKeyPair, err := storage.Load("test-key")
		require.NoError(t, err)
		assert.NotNil(t, loadedKeyPair)
		assert.Equal(t, keyPair.ID(), loadedKeyPair.ID())
		assert.Equal(t, keyPair.Type(), loadedKeyPair.Type())

		message := []byte("test message")
		signature, err := loadedKeyPair.Sign(message)
		require.NoError(t, err)

		err = keyPair.Verify(message, signature)
		assert.NoError(t, err)
	})

	t.Run("LoadNonExistentKey", func(t *testing.T) {
		_, err := storage.Load("non-existent")
		assert.Error(t, err)
		assert.True(t, errs.Is(err, errs.Storage))
	})

	t.Run("OverwriteExistingKey", func(t *testing.T) {
		keyPair1, err := provider.GenerateKeypair()
		require.NoError(t, err)
		keyPair2, err := provider.GenerateKeypair()
		require.NoError(t, err)

		err = storage.Store("overwrite-test", keyPair1)
		require.NoError(t, err)

		err = storage.Store("overwrite-test", keyPair2)
		require.NoError(t, err)

		loadedKeyPair, err := storage.Load("overwrite-test")
		require.NoError(t, err)
		assert.Equal(t, keyPair2.ID(), loadedKeyPair.ID())
	})

	t.Run("DeleteKey", func(t *testing.T) {
		keyPair, err := provider.GenerateKeypair()
		require.NoError(t, err)

		err = storage.Store("delete-test", keyPair)
		require.NoError(t, err)
		assert.True(t, storage.Exists("delete-test"))

		err = storage.Delete("delete-test")
		require.NoError(t, err)
		assert.False(t, storage.Exists("delete-test"))

		_, err = storage.Load("delete-test")
		assert.Error(t, err)
		assert.True(t, errs.Is(err, errs.Storage))
	})

	t.Run("DeleteNonExistentKey", func(t *testing.T) {
		err := storage.Delete("non-existent")
		assert.Error(t, err)
		assert.True(t, errs.Is(err, errs.Storage))
	})

	t.Run("ListKeys", func(t *testing.T) {
		storage = NewMemoryKeyStorage()

		keyPair1, err := provider.GenerateKeypair()
		require.NoError(t, err)
		keyPair2, err := provider.GenerateKeypair()
		require.NoError(t, err)
		keyPair3, err := provider.GenerateKeypair()
		require.NoError(t, err)

		require.NoError(t, storage.Store("key1", keyPair1))
		require.NoError(t, storage.Store("key2", keyPair2))
		require.NoError(t, storage.Store("key3", keyPair3))

		ids, err := storage.List()
		require.NoError(t, err)
		assert.Len(t, ids, 3)
		assert.Contains(t, ids, "key1")
		assert.Contains(t, ids, "key2")
		assert.Contains(t, ids, "key3")
	})

	t.Run("EmptyStorageList", func(t *testing.T) {
		emptyStorage := NewMemoryKeyStorage()
		ids, err := emptyStorage.List()
		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("ConcurrentAccess", func(t *testing.T) {
		storage := NewMemoryKeyStorage()
		done := make(chan bool)

		for i := 0; i < 10; i++ {
			go func(id int) {
				keyPair, _ := provider.GenerateKeypair()
				storage.Store(fmt.Sprintf("concurrent-%d", id), keyPair)
				done <- true
			}(i)
		}

		for i := 0; i < 10; i++ {
			<-done
		}

		ids, err := storage.List()
		require.NoError(t, err)
		assert.Len(t, ids, 10)
	})
}
