package domain

import (
	"crypto/subtle"
	"fmt"
)

const (
	// KeySize is the fixed symmetric key length in bytes.
	KeySize = 32
)

// Fingerprint is a hex-encoded one-way hash of a derived key. It is the only
// key-related value that ever crosses the trust boundary.
type Fingerprint string

// Equals compares two fingerprints in constant time.
func (f Fingerprint) Equals(other Fingerprint) bool {
	return subtle.ConstantTimeCompare([]byte(f), []byte(other)) == 1
}

// SymmetricKey is a fixed-size AEAD key.
type SymmetricKey [KeySize]byte

func (k SymmetricKey) Slice() []byte { return k[:] }

// MustSymmetricKey copies b into a SymmetricKey and panics on a length
// mismatch. Use only where the length is already guaranteed.
func MustSymmetricKey(b []byte) SymmetricKey {
	if len(b) != KeySize {
		panic(fmt.Errorf("symmetric key: want %d bytes, got %d", KeySize, len(b)))
	}
	var out SymmetricKey
	copy(out[:], b)
	return out
}

// KeyMaterial binds a derived symmetric key to its fingerprint. The key never
// leaves the process that derived it; only the fingerprint is advertised.
type KeyMaterial struct {
	Key         SymmetricKey
	Fingerprint Fingerprint
}

// Matches reports whether fp equals this key's fingerprint, in constant time.
func (km *KeyMaterial) Matches(fp Fingerprint) bool {
	return km.Fingerprint.Equals(fp)
}

// Destroy wipes the key and clears the fingerprint. The material must not be
// used afterwards.
func (km *KeyMaterial) Destroy() {
	for i := range km.Key {
		km.Key[i] = 0
	}
	km.Fingerprint = ""
}

// Destroyed reports whether the material has been wiped (all-zero key).
func (km *KeyMaterial) Destroyed() bool {
	var zero SymmetricKey
	return subtle.ConstantTimeCompare(km.Key[:], zero[:]) == 1
}
