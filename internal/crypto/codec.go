package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"sealchat/internal/domain"
)

// Codec performs authenticated encryption of single opaque payloads under one
// key. Each Seal consumes a fresh random nonce; nonces are never derived from
// counters.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec builds a codec over ChaCha20-Poly1305. The 256/96/128-bit contract
// is checked here: a cipher with different lengths is a construction error,
// not a call-time one.
func NewCodec(km domain.KeyMaterial) (*Codec, error) {
	aead, err := chacha20poly1305.New(km.Key.Slice())
	if err != nil {
		return nil, fmt.Errorf("aead init: %w", err)
	}
	if aead.NonceSize() != domain.NonceSize || aead.Overhead() != domain.TagSize {
		return nil, fmt.Errorf("aead init: nonce/tag sizes %d/%d violate contract %d/%d",
			aead.NonceSize(), aead.Overhead(), domain.NonceSize, domain.TagSize)
	}
	return &Codec{aead: aead}, nil
}

// Seal encrypts plaintext into a self-contained envelope. An empty plaintext
// is valid and produces a nonce+tag-only envelope.
func (c *Codec) Seal(plaintext []byte) (domain.Envelope, error) {
	out := make([]byte, domain.NonceSize, domain.NonceSize+len(plaintext)+domain.TagSize)
	if _, err := rand.Read(out[:domain.NonceSize]); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	out = c.aead.Seal(out, out[:domain.NonceSize], plaintext, nil)
	return domain.Envelope(out), nil
}

// Open verifies and decrypts an envelope. No plaintext is ever returned on
// failure: a short envelope is ErrEnvelopeMalformed, a tag mismatch is
// ErrTagVerification.
func (c *Codec) Open(env domain.Envelope) ([]byte, error) {
	if len(env) < domain.EnvelopeMinSize {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrEnvelopeMalformed, len(env))
	}
	plaintext, err := c.aead.Open(nil, env[:domain.NonceSize], env[domain.NonceSize:], nil)
	if err != nil {
		return nil, domain.ErrTagVerification
	}
	return plaintext, nil
}
