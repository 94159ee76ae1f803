package frame

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
)

// GenerationFailedCode identifies an upstream generator failure in an Error
// frame. The generator's error text is not forwarded to the peer.
const GenerationFailedCode = "GENERATION_FAILED"

// Encoder is a pull-based frame producer for one logical message. Next
// returns frames in emission order and io.EOF once the terminal frame (or an
// error frame) has been produced. An Encoder is not safe for concurrent use
// and cannot be reused across messages.
type Encoder struct {
	codec  *crypto.Codec
	source domain.ChunkSource
	msgID  string
	seq    uint64
	done   bool
}

// NewEncoder builds an encoder that seals chunks from source under codec.
// msgID becomes the terminal metadata's message identifier.
func NewEncoder(codec *crypto.Codec, source domain.ChunkSource, msgID string) *Encoder {
	return &Encoder{codec: codec, source: source, msgID: msgID}
}

// Next pulls the next chunk from the source and returns the frame carrying
// it. It suspends while the source does. Zero chunks followed by completion
// is a valid message: the first frame is then the terminal one.
func (e *Encoder) Next(ctx context.Context) (domain.StreamFrame, error) {
	if e.done {
		return domain.StreamFrame{}, io.EOF
	}

	chunk, ok, err := e.source.Next(ctx)
	if err != nil {
		// Unrecoverable upstream failure: emit one Error frame and stop.
		// No further Chunk frames may follow it.
		e.done = true
		if ctx.Err() != nil {
			return domain.StreamFrame{}, ctx.Err()
		}
		return domain.StreamFrame{
			Type:    domain.FrameError,
			Code:    GenerationFailedCode,
			Message: "response generation failed",
		}, nil
	}

	if !ok {
		e.done = true
		return e.terminal()
	}

	env, err := e.codec.Seal(chunk)
	if err != nil {
		e.done = true
		return domain.StreamFrame{}, fmt.Errorf("seal chunk %d: %w", e.seq, err)
	}
	f := domain.StreamFrame{
		Type:          domain.FrameChunk,
		Seq:           e.seq,
		EncryptedData: env.Base64(),
	}
	e.seq++
	return f, nil
}

// terminal seals the accumulated metadata into the closing frame.
func (e *Encoder) terminal() (domain.StreamFrame, error) {
	meta := domain.Metadata{ID: e.msgID, Annotations: e.source.Annotations()}
	raw, err := json.Marshal(meta)
	if err != nil {
		return domain.StreamFrame{}, fmt.Errorf("marshal metadata: %w", err)
	}
	env, err := e.codec.Seal(raw)
	if err != nil {
		return domain.StreamFrame{}, fmt.Errorf("seal metadata: %w", err)
	}
	return domain.StreamFrame{Type: domain.FrameTerminal, EncryptedData: env.Base64()}, nil
}
