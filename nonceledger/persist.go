package nonceledger

import (
	"encoding/json"
	"time"

	"github.com/allow2/offlinecore/errs"
	"github.com/allow2/offlinecore/secretstore"
)

// storeKey is the SecretStore key a child device persists its ledger
// under (spec §6), shared by every caller so a ledger survives restarts.
const storeKey = "allow2.nonce_ledger"

// snapshotEntry is the JSON-serializable form of entry.
type snapshotEntry struct {
	Nonce     string    `json:"nonce"`
	FirstSeen time.Time `json:"first_seen"`
}

// Marshal serializes the ledger for storage under the
// "allow2.nonce_ledger" SecretStore key (spec §6). Losing this state
// would permit replay of any nonce recorded before the loss.
func (l *Ledger) Marshal() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]snapshotEntry, 0, len(l.seen))
	for n, e := range l.seen {
		out = append(out, snapshotEntry{Nonce: n, FirstSeen: e.firstSeen})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return nil, errs.New(errs.Storage, "nonceledger.Marshal", err)
	}
	return b, nil
}

// Unmarshal replaces the ledger's contents with a previously-marshaled
// snapshot. Existing entries are discarded.
func (l *Ledger) Unmarshal(data []byte) error {
	var in []snapshotEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return errs.New(errs.Storage, "nonceledger.Unmarshal", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = make(map[string]entry, len(in))
	for _, e := range in {
		l.seen[e.Nonce] = entry{firstSeen: e.FirstSeen}
	}
	return nil
}

// LoadFromStore returns the ledger persisted under store's
// "allow2.nonce_ledger" key, or a fresh empty Ledger if nothing has been
// saved yet.
func LoadFromStore(store secretstore.SecretStore, ttl time.Duration) (*Ledger, error) {
	data, ok, err := store.Get(storeKey)
	if err != nil {
		return nil, errs.New(errs.Storage, "nonceledger.LoadFromStore", err)
	}
	l := New(ttl)
	if !ok {
		return l, nil
	}
	if err := l.Unmarshal(data); err != nil {
		return nil, err
	}
	return l, nil
}

// SaveToStore persists l under store's "allow2.nonce_ledger" key. Callers
// that accept a grant or voice approval must save before acting on the
// result, so a crash between acceptance and persistence cannot be
// exploited as a replay window.
func (l *Ledger) SaveToStore(store secretstore.SecretStore) error {
	data, err := l.Marshal()
	if err != nil {
		return err
	}
	if err := store.Put(storeKey, data); err != nil {
		return errs.New(errs.Storage, "nonceledger.SaveToStore", err)
	}
	return nil
}
