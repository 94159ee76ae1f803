package domain

import (
	"encoding/base64"
	"fmt"
)

// AEAD envelope layout constants. These are contract values, not tunables:
// the codec refuses construction if its cipher disagrees.
const (
	NonceSize = 12 // 96-bit nonce
	TagSize   = 16 // 128-bit authentication tag

	// EnvelopeMinSize is the length of an envelope carrying an empty
	// plaintext: nonce plus tag, nothing in between.
	EnvelopeMinSize = NonceSize + TagSize
)

// Envelope is one self-contained encrypted unit, serialized as
// nonce || ciphertext || tag. It is opaque outside the codec.
type Envelope []byte

// Base64 returns the transport encoding of the envelope.
func (e Envelope) Base64() string { return base64.StdEncoding.EncodeToString(e) }

// EnvelopeFromBase64 decodes a transport-encoded envelope. A string that is
// not valid base64, or whose payload is shorter than nonce+tag, is malformed.
func EnvelopeFromBase64(s string) (Envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64", ErrEnvelopeMalformed)
	}
	if len(raw) < EnvelopeMinSize {
		return nil, fmt.Errorf("%w: %d bytes, want at least %d", ErrEnvelopeMalformed, len(raw), EnvelopeMinSize)
	}
	return Envelope(raw), nil
}

// FrameType discriminates stream frames on the wire.
type FrameType string

const (
	FrameChunk    FrameType = "chunk"
	FrameTerminal FrameType = "done"
	FrameError    FrameType = "error"
)

// StreamFrame is one event of the encrypted stream. Exactly one of the
// payload groups is populated depending on Type:
//
//   - chunk: Seq and EncryptedData
//   - done:  EncryptedData (envelope wrapping Metadata JSON)
//   - error: Code and Message
//
// Seq is diagnostic only; ordering is guaranteed by the transport.
type StreamFrame struct {
	Type          FrameType `json:"type"`
	Seq           uint64    `json:"seq,omitempty"`
	EncryptedData string    `json:"encrypted_data,omitempty"`
	Code          string    `json:"code,omitempty"`
	Message       string    `json:"message,omitempty"`
}

// Metadata is the structured payload of the terminal frame.
type Metadata struct {
	ID          string            `json:"id"`
	Annotations map[string]string `json:"annotations,omitempty"`
}
