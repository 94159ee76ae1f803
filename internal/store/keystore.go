package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"sealchat/internal/util/memzero"
)

const (
	// The current supported version of the encrypted blob format on disk.
	keystoreFormatVersion = 1

	secretFile = "secret.enc"
)

// ErrWrongPassphrase is returned when the passphrase is incorrect or the
// sealed secret has been modified or corrupted.
var ErrWrongPassphrase = errors.New("wrong passphrase or corrupted secret")

// blob is the on-disk JSON structure holding the ciphertext and KDF
// parameters.
type blob struct {
	V      int    `json:"v"`
	Salt   []byte `json:"salt"`
	N      int    `json:"scrypt_N"`
	R      int    `json:"scrypt_r"`
	P      int    `json:"scrypt_p"`
	Cipher []byte `json:"cipher"`
}

// KeyStore seals the provisioned chat secret on disk under a local
// passphrase.
type KeyStore struct {
	dir string
	mu  sync.Mutex
}

func NewKeyStore(dir string) *KeyStore { return &KeyStore{dir: dir} }

// SaveSecret seals secret under passphrase and writes it with 0600
// permissions. The caller keeps ownership of secret.
func (s *KeyStore) SaveSecret(passphrase string, secret []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	N, r, p := scryptParamsDefault()
	sealed, err := seal(passphrase, secret, N, r, p)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, secretFile), sealed, 0o600)
}

// LoadSecret opens the sealed secret. The returned slice is sensitive; wipe
// it with memzero once a key has been derived.
func (s *KeyStore) LoadSecret(passphrase string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := os.ReadFile(filepath.Join(s.dir, secretFile))
	if err != nil {
		return nil, err
	}
	return open(passphrase, sealed)
}

// seal derives a key from passphrase and wraps raw into a JSON blob.
func seal(passphrase string, raw []byte, N, r, p int) ([]byte, error) {
	var salt [16]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(passphrase), salt[:], N, r, p, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	memzero.Zero(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte // zero nonce; salt-bound key guarantees uniqueness
	ct := aead.Seal(nil, nonce[:], raw, salt[:])

	return json.Marshal(blob{
		V:      keystoreFormatVersion,
		Salt:   salt[:],
		N:      N,
		R:      r,
		P:      p,
		Cipher: ct,
	})
}

// open unwraps the JSON blob using a key derived from passphrase.
func open(passphrase string, b []byte) ([]byte, error) {
	var bl blob
	if err := json.Unmarshal(b, &bl); err != nil {
		return nil, err
	}
	if bl.V > keystoreFormatVersion {
		return nil, fmt.Errorf("unsupported keystore version %d", bl.V)
	}

	key, err := scrypt.Key([]byte(passphrase), bl.Salt, bl.N, bl.R, bl.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.New(key)
	memzero.Zero(key)
	if err != nil {
		return nil, err
	}
	var nonce [12]byte
	pt, err := aead.Open(nil, nonce[:], bl.Cipher, bl.Salt)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

// Tunables for scrypt key derivation.
func scryptParamsDefault() (N, r, p int) { return 1 << 15, 8, 1 }
