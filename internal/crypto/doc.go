// Package crypto exposes the symmetric primitives used by sealchat.
//
// Contents
//
//   - Key derivation from a shared secret: Argon2id for low-entropy
//     passphrases, a single SHA-256 pass for high-entropy server secrets
//     (DerivePassphrase, DeriveSecret)
//   - Key fingerprints and constant-time fingerprint matching
//     (MatchesFingerprint)
//   - The AEAD codec sealing plaintext into nonce||ciphertext||tag
//     envelopes (Codec)
//
// # Notes
//
// The codec's contract values are fixed: 256-bit key, 96-bit nonce, 128-bit
// tag. NewCodec rejects any cipher that disagrees at construction time.
// Callers should treat derived keys as sensitive and rely on
// domain.KeyMaterial.Destroy to reduce their lifetime in memory.
package crypto
