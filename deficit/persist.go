package deficit

import (
	"encoding/json"

	"github.com/allow2/offlinecore/errs"
	"github.com/allow2/offlinecore/secretstore"
)

// storeKey is the SecretStore key a child device persists its deficit
// ledger under, alongside nonceledger's "allow2.nonce_ledger" (spec §6).
const storeKey = "allow2.deficit_ledger"

// Marshal serializes the ledger's per-child owed seconds for storage.
func (l *Ledger) Marshal() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	b, err := json.Marshal(l.owed)
	if err != nil {
		return nil, errs.New(errs.Storage, "deficit.Marshal", err)
	}
	return b, nil
}

// Unmarshal replaces the ledger's contents with a previously-marshaled
// snapshot. Existing entries are discarded.
func (l *Ledger) Unmarshal(data []byte) error {
	var in map[uint64]int
	if err := json.Unmarshal(data, &in); err != nil {
		return errs.New(errs.Storage, "deficit.Unmarshal", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if in == nil {
		in = make(map[uint64]int)
	}
	l.owed = in
	return nil
}

// LoadFromStore returns the ledger persisted under store's
// "allow2.deficit_ledger" key, or a fresh empty Ledger if nothing has
// been saved yet.
func LoadFromStore(store secretstore.SecretStore) (*Ledger, error) {
	data, ok, err := store.Get(storeKey)
	if err != nil {
		return nil, errs.New(errs.Storage, "deficit.LoadFromStore", err)
	}
	l := New()
	if !ok {
		return l, nil
	}
	if err := l.Unmarshal(data); err != nil {
		return nil, err
	}
	return l, nil
}

// SaveToStore persists l under store's "allow2.deficit_ledger" key.
func (l *Ledger) SaveToStore(store secretstore.SecretStore) error {
	data, err := l.Marshal()
	if err != nil {
		return err
	}
	if err := store.Put(storeKey, data); err != nil {
		return errs.New(errs.Storage, "deficit.SaveToStore", err)
	}
	return nil
}
