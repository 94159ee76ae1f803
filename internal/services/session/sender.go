package session

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/protocol/frame"
)

// Sender coordinates the encode path of one message exchange. It is the
// single logical producer: one upstream chunk source, one downstream sink,
// no fan-out, no reordering.
type Sender struct {
	sess  domain.Session
	codec *crypto.Codec
	log   *logrus.Entry
}

// NewSender binds fresh session state to km. The session ID doubles as the
// message identifier carried by the terminal frame.
func NewSender(km domain.KeyMaterial, log *logrus.Entry) (*Sender, error) {
	codec, err := crypto.NewCodec(km)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	sess := domain.Session{
		ID:          uuid.NewString(),
		Fingerprint: km.Fingerprint,
		State:       domain.Streaming,
	}
	return &Sender{sess: sess, codec: codec, log: log.WithField("session", sess.ID)}, nil
}

// Fingerprint returns the advertised fingerprint of the session key.
func (s *Sender) Fingerprint() domain.Fingerprint { return s.sess.Fingerprint }

// Session returns a snapshot of the session state.
func (s *Sender) Session() domain.Session { return s.sess }

// Run encodes chunks from source and emits each frame to sink as soon as it
// is sealed. It returns once the terminal (or error) frame has been emitted.
// A sender whose session is already terminal cannot run again.
func (s *Sender) Run(ctx context.Context, source domain.ChunkSource, sink domain.FrameSink) error {
	if s.sess.State.Terminal() {
		return domain.ErrSessionTerminal
	}

	enc := frame.NewEncoder(s.codec, source, s.sess.ID)
	upstreamFailed := false
	for {
		f, err := enc.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			s.sess.State = domain.Failed
			return err
		}
		if err := sink.Write(f); err != nil {
			s.sess.State = domain.Failed
			return fmt.Errorf("emit frame %d: %w", s.sess.FramesSent, err)
		}
		s.sess.FramesSent++
		if f.Type == domain.FrameError {
			upstreamFailed = true
		}
	}

	if upstreamFailed {
		s.sess.State = domain.Failed
		s.log.WithField("frames", s.sess.FramesSent).Warn("exchange ended with error frame")
		return nil
	}
	s.sess.State = domain.Completed
	s.log.WithField("frames", s.sess.FramesSent).Debug("exchange completed")
	return nil
}
