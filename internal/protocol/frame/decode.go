package frame

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
)

// Decoder is a pull-based plaintext consumer for one logical message. Next
// returns decrypted chunks in arrival order; io.EOF signals the terminal
// frame was processed, after which Metadata is valid. Any failure is sticky:
// once Next has returned a non-EOF error, the message is abandoned and every
// subsequent call returns the same error.
type Decoder struct {
	codec *crypto.Codec
	src   domain.FrameSource
	log   *logrus.Entry

	meta    domain.Metadata
	lastSeq uint64
	nChunks uint64
	done    bool
	failure error
}

// NewDecoder builds a decoder that opens frames from src under codec.
func NewDecoder(codec *crypto.Codec, src domain.FrameSource, log *logrus.Entry) *Decoder {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Decoder{codec: codec, src: src, log: log}
}

// Next returns the next plaintext chunk. An empty (zero-length) chunk is
// valid output; callers must check err before the chunk.
func (d *Decoder) Next(ctx context.Context) ([]byte, error) {
	if d.failure != nil {
		return nil, d.failure
	}
	if d.done {
		return nil, io.EOF
	}

	f, err := d.src.Next(ctx)
	if err != nil {
		if err == io.EOF {
			// Transport closed without a terminal frame.
			err = fmt.Errorf("%w: stream ended before terminal frame", domain.ErrEnvelopeMalformed)
		}
		return nil, d.fail(err)
	}

	switch f.Type {
	case domain.FrameChunk:
		env, err := domain.EnvelopeFromBase64(f.EncryptedData)
		if err != nil {
			return nil, d.fail(err)
		}
		plaintext, err := d.codec.Open(env)
		if err != nil {
			return nil, d.fail(fmt.Errorf("chunk %d: %w", f.Seq, err))
		}
		// Sequence numbers are diagnostic only; the transport guarantees
		// order, so a regression is logged rather than fatal.
		if d.nChunks > 0 && f.Seq < d.lastSeq {
			d.log.WithFields(logrus.Fields{"seq": f.Seq, "last_seq": d.lastSeq}).
				Warn("chunk sequence regressed")
		}
		d.lastSeq = f.Seq
		d.nChunks++
		if plaintext == nil {
			plaintext = []byte{}
		}
		return plaintext, nil

	case domain.FrameTerminal:
		env, err := domain.EnvelopeFromBase64(f.EncryptedData)
		if err != nil {
			return nil, d.fail(err)
		}
		raw, err := d.codec.Open(env)
		if err != nil {
			return nil, d.fail(fmt.Errorf("terminal: %w", err))
		}
		var meta domain.Metadata
		if err := json.Unmarshal(raw, &meta); err != nil || meta.ID == "" {
			// The AEAD step succeeded but the content is unusable. This is a
			// data-integrity failure one layer up, never "no metadata".
			return nil, d.fail(domain.ErrMetadataParse)
		}
		d.meta = meta
		d.done = true
		return nil, io.EOF

	case domain.FrameError:
		return nil, d.fail(&domain.RemoteError{Code: f.Code, Message: f.Message})

	default:
		return nil, d.fail(fmt.Errorf("%w: unrecognized frame type %q", domain.ErrEnvelopeMalformed, f.Type))
	}
}

// Metadata returns the terminal frame's parsed metadata. Valid only after
// Next has returned io.EOF.
func (d *Decoder) Metadata() domain.Metadata { return d.meta }

// Chunks returns how many chunk frames were decrypted and delivered.
func (d *Decoder) Chunks() uint64 { return d.nChunks }

func (d *Decoder) fail(err error) error {
	d.failure = err
	return err
}
