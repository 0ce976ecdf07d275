package storage

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/errs"
	"github.com/allow2/offlinecore/secretstore"
)

const keyStorageIndexKey = "allow2.keystorage.index"

func keyStorageEntryKey(id string) string {
	return "allow2.keystorage.entry." + id
}

// storedKeyPair is the JSON-on-disk shape of one entry. Private is omitted
// for verify-only keys (a parent's public signing key held by a child
// device that only ever calls Verify).
type storedKeyPair struct {
	Public  []byte `json:"public"`
	Private []byte `json:"private,omitempty"`
}

// secretStoreKeyStorage persists KeyPairs through a secretstore.SecretStore
// so a rotated signing key survives process restarts, unlike
// memoryKeyStorage. A small JSON index under keyStorageIndexKey tracks
// which IDs exist, since SecretStore has no native listing operation.
type secretStoreKeyStorage struct {
	store secretstore.SecretStore
	mu    sync.Mutex
}

// NewSecretStoreKeyStorage wraps store as a sagecrypto.KeyStorage. This is
// the persistent counterpart to NewMemoryKeyStorage: allow2-pair's key
// rotation command uses it so a rotated device identity key is still there
// on the next invocation.
func NewSecretStoreKeyStorage(store secretstore.SecretStore) sagecrypto.KeyStorage {
	return &secretStoreKeyStorage{store: store}
}

func (s *secretStoreKeyStorage) loadIndex() ([]string, error) {
	data, ok, err := s.store.Get(keyStorageIndexKey)
	if err != nil {
		return nil, errs.New(errs.Storage, "storage.loadIndex", err)
	}
	if !ok {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, errs.New(errs.Storage, "storage.loadIndex", err)
	}
	return ids, nil
}

func (s *secretStoreKeyStorage) saveIndex(ids []string) error {
	sort.Strings(ids)
	data, err := json.Marshal(ids)
	if err != nil {
		return errs.New(errs.Storage, "storage.saveIndex", err)
	}
	if err := s.store.Put(keyStorageIndexKey, data); err != nil {
		return errs.New(errs.Storage, "storage.saveIndex", err)
	}
	return nil
}

// Store persists keyPair under id, adding id to the index if it is new.
func (s *secretStoreKeyStorage) Store(id string, keyPair sagecrypto.KeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pub, err := sagecrypto.PublicKeyBytes(keyPair)
	if err != nil {
		return err
	}
	entry := storedKeyPair{Public: pub}
	if priv, ok := keyPair.PrivateKey().(ed25519.PrivateKey); ok && len(priv) > 0 {
		entry.Private = []byte(priv)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return errs.New(errs.Storage, "storage.Store", err)
	}
	if err := s.store.Put(keyStorageEntryKey(id), data); err != nil {
		return errs.New(errs.Storage, "storage.Store", err)
	}

	ids, err := s.loadIndex()
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return s.saveIndex(append(ids, id))
}

// Load returns the KeyPair stored under id. Keys saved without a private
// half come back as verify-only KeyPairs.
func (s *secretStoreKeyStorage) Load(id string) (sagecrypto.KeyPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok, err := s.store.Get(keyStorageEntryKey(id))
	if err != nil {
		return nil, errs.New(errs.Storage, "storage.Load", err)
	}
	if !ok {
		return nil, errs.New(errs.Storage, "storage.Load", fmt.Errorf("key %q not found", id))
	}
	var entry storedKeyPair
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, errs.New(errs.Storage, "storage.Load", err)
	}
	if len(entry.Private) == 0 {
		return sagecrypto.NewEd25519VerifyingKey(ed25519.PublicKey(entry.Public)), nil
	}
	return sagecrypto.NewEd25519KeyPair(ed25519.PublicKey(entry.Public), ed25519.PrivateKey(entry.Private)), nil
}

// Delete removes id from the backing store and the index. Deleting an
// absent id is not an error, matching secretstore.SecretStore.Delete.
func (s *secretStoreKeyStorage) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(keyStorageEntryKey(id)); err != nil {
		return errs.New(errs.Storage, "storage.Delete", err)
	}
	ids, err := s.loadIndex()
	if err != nil {
		return err
	}
	filtered := ids[:0]
	for _, existing := range ids {
		if existing != id {
			filtered = append(filtered, existing)
		}
	}
	return s.saveIndex(filtered)
}

// List returns every known ID in sorted order.
func (s *secretStoreKeyStorage) List() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadIndex()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// Exists reports whether id has a stored entry.
func (s *secretStoreKeyStorage) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.store.Get(keyStorageEntryKey(id))
	return err == nil && ok
}
