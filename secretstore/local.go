package secretstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	sagecrypto "github.com/allow2/offlinecore/crypto"
	"github.com/allow2/offlinecore/errs"
)

// localKeyInfo is the HKDF "info" label for deriving a Local store's
// AES-256-GCM key from its unlock passphrase.
const localKeyInfo = "allow2-secretstore-v1"

// entryFile is the on-disk shape of one encrypted entry, adapted from
// crypto/vault's EncryptedKeyData.
type entryFile struct {
	Version    string    `json:"version"`
	Salt       string    `json:"salt"`
	Nonce      string    `json:"nonce"`
	Ciphertext string    `json:"ciphertext"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Local is a filesystem-backed, passphrase-protected SecretStore: one
// JSON file per key under basePath, AES-256-GCM with a key derived from
// passphrase via HKDF-SHA256 with a per-entry random salt.
type Local struct {
	basePath   string
	passphrase []byte
	provider   sagecrypto.Provider
	mu         sync.Mutex
}

// NewLocal creates (if needed) basePath and returns a Local store
// unlocked with passphrase. The same passphrase must be supplied on
// every subsequent open; a wrong one surfaces as errs.BadSignature
// (GCM authentication failure) on first Get.
func NewLocal(basePath, passphrase string) (*Local, error) {
	if err := os.MkdirAll(basePath, 0700); err != nil {
		return nil, errs.New(errs.Storage, "secretstore.NewLocal", err)
	}
	return &Local{
		basePath:   basePath,
		passphrase: []byte(passphrase),
		provider:   sagecrypto.NewProvider(),
	}, nil
}

func (l *Local) path(key string) string {
	return filepath.Join(l.basePath, base64.RawURLEncoding.EncodeToString([]byte(key))+".json")
}

func (l *Local) Get(key string) ([]byte, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := os.ReadFile(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errs.New(errs.Storage, "secretstore.Get", err)
	}

	var ef entryFile
	if err := json.Unmarshal(raw, &ef); err != nil {
		return nil, false, errs.New(errs.Storage, "secretstore.Get", err)
	}

	salt, err := base64.StdEncoding.DecodeString(ef.Salt)
	if err != nil {
		return nil, false, errs.New(errs.Storage, "secretstore.Get", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(ef.Nonce)
	if err != nil {
		return nil, false, errs.New(errs.Storage, "secretstore.Get", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(ef.Ciphertext)
	if err != nil {
		return nil, false, errs.New(errs.Storage, "secretstore.Get", err)
	}

	gcm, err := l.gcmFor(salt)
	if err != nil {
		return nil, false, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, false, errs.New(errs.BadSignature, "secretstore.Get", err)
	}
	return plaintext, true, nil
}

func (l *Local) Put(key string, value []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	salt, err := l.provider.RandomBytes(16)
	if err != nil {
		return errs.New(errs.Storage, "secretstore.Put", err)
	}

	gcm, err := l.gcmFor(salt)
	if err != nil {
		return err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return errs.New(errs.Storage, "secretstore.Put", err)
	}

	ciphertext := gcm.Seal(nil, nonce, value, nil)

	ef := entryFile{
		Version:    "1",
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		UpdatedAt:  time.Now(),
	}
	data, err := json.Marshal(ef)
	if err != nil {
		return errs.New(errs.Storage, "secretstore.Put", err)
	}

	if err := os.WriteFile(l.path(key), data, 0600); err != nil {
		return errs.New(errs.Storage, "secretstore.Put", err)
	}
	return nil
}

func (l *Local) Delete(key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.Remove(l.path(key)); err != nil && !os.IsNotExist(err) {
		return errs.New(errs.Storage, "secretstore.Delete", err)
	}
	return nil
}

// gcmFor derives the AES-256-GCM cipher for this store's passphrase and
// a per-entry salt via HKDF-SHA256, per spec's "passphrase-derived key
// via HKDF" pin (crypto/vault's PBKDF2 iteration count doesn't apply
// here since OfflineCrypto only exposes HKDF as its KDF primitive).
func (l *Local) gcmFor(salt []byte) (cipher.AEAD, error) {
	derived, err := l.provider.HKDF(l.passphrase, salt, []byte(localKeyInfo), 32)
	if err != nil {
		return nil, errs.New(errs.Storage, "secretstore.gcmFor", err)
	}
	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, errs.New(errs.Storage, "secretstore.gcmFor", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errs.New(errs.Storage, "secretstore.gcmFor", err)
	}
	return gcm, nil
}

