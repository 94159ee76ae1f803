package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/argon2"

	"sealchat/internal/domain"
	"sealchat/internal/util/memzero"
)

// passphraseSalt is a fixed domain-separation salt for passphrase derivation.
// Both parties must derive the same key from the same passphrase, so the salt
// is part of the protocol rather than per-user state.
var passphraseSalt = []byte("sealchat/v1 passphrase kdf")

// Argon2Params tunes the passphrase derivation cost.
type Argon2Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
}

// DefaultArgon2Params follows the x/crypto argon2id recommendation.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{Time: 1, MemoryKiB: 64 * 1024, Threads: 4}
}

// DeriveSecret derives key material from a high-entropy secret (for example a
// server-generated random value) with a single one-way hash.
func DeriveSecret(secret []byte) (domain.KeyMaterial, error) {
	if len(secret) == 0 {
		return domain.KeyMaterial{}, domain.ErrKeyDerivation
	}
	sum := sha256.Sum256(secret)
	return material(sum[:]), nil
}

// DerivePassphrase derives key material from a low-entropy user passphrase
// using Argon2id. The derivation is deterministic for a given passphrase.
func DerivePassphrase(passphrase string, params Argon2Params) (domain.KeyMaterial, error) {
	if passphrase == "" {
		return domain.KeyMaterial{}, domain.ErrKeyDerivation
	}
	key := argon2.IDKey([]byte(passphrase), passphraseSalt, params.Time, params.MemoryKiB, params.Threads, domain.KeySize)
	km := material(key)
	memzero.Zero(key)
	return km, nil
}

// FingerprintOf returns the hex SHA-256 fingerprint of a derived key. The
// fingerprint is computed from the key, not the original secret, so
// presenting it leaks nothing about the passphrase beyond brute force.
func FingerprintOf(key domain.SymmetricKey) domain.Fingerprint {
	sum := sha256.Sum256(key.Slice())
	return domain.Fingerprint(hex.EncodeToString(sum[:]))
}

// MatchesFingerprint derives a key from candidate and compares its
// fingerprint to expected in constant time. It reports only match/no-match;
// callers must not branch on why a candidate failed.
func MatchesFingerprint(candidate []byte, expected domain.Fingerprint) bool {
	km, err := DeriveSecret(candidate)
	if err != nil {
		return false
	}
	defer km.Destroy()
	return km.Matches(expected)
}

func material(key []byte) domain.KeyMaterial {
	km := domain.KeyMaterial{Key: domain.MustSymmetricKey(key)}
	km.Fingerprint = FingerprintOf(km.Key)
	return km
}
