package session

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/protocol/frame"
)

// ErrKeyNotConfirmed is returned when frames are consumed before the peer's
// fingerprint has been confirmed.
var ErrKeyNotConfirmed = errors.New("key not confirmed for this session")

// Receiver coordinates the decode path of one message exchange. Its state
// machine is
//
//	AwaitingKeyConfirmation -> Streaming -> Completed | Failed
//	AwaitingKeyConfirmation -> Rejected
//
// with all of Completed, Failed and Rejected terminal. The re-key handler is
// invoked synchronously on Rejected and on any Failed transition whose cause
// is indistinguishable from a key problem.
type Receiver struct {
	sess  domain.Session
	km    *domain.KeyMaterial
	codec *crypto.Codec
	rekey domain.RekeyHandler
	log   *logrus.Entry
	meta  domain.Metadata
}

// NewReceiver builds a receiver owning km for one exchange. rekey is a
// required collaborator, not an optional notification.
func NewReceiver(km *domain.KeyMaterial, rekey domain.RekeyHandler, log *logrus.Entry) (*Receiver, error) {
	codec, err := crypto.NewCodec(*km)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	sess := domain.Session{ID: uuid.NewString(), State: domain.AwaitingKeyConfirmation}
	return &Receiver{
		sess:  sess,
		km:    km,
		codec: codec,
		rekey: rekey,
		log:   log.WithField("session", sess.ID),
	}, nil
}

// Session returns a snapshot of the session state.
func (r *Receiver) Session() domain.Session { return r.sess }

// State returns the current state machine position.
func (r *Receiver) State() domain.SessionState { return r.sess.State }

// Metadata returns the terminal metadata. Valid only in state Completed.
func (r *Receiver) Metadata() domain.Metadata { return r.meta }

// ConfirmKey checks the peer's advertised fingerprint against the held key.
// A mismatch is fatal for the session: it transitions to Rejected, triggers
// the re-key handler, and no frame will ever be processed.
func (r *Receiver) ConfirmKey(ctx context.Context, fp domain.Fingerprint) error {
	if r.sess.State != domain.AwaitingKeyConfirmation {
		return domain.ErrSessionTerminal
	}
	if !r.km.Matches(fp) {
		r.sess.State = domain.Rejected
		r.invokeRekey(ctx, domain.ErrFingerprintMismatch)
		return domain.ErrFingerprintMismatch
	}
	r.sess.Fingerprint = fp
	r.sess.State = domain.Streaming
	return nil
}

// Reject marks the session Rejected without processing frames, for when the
// peer refused our advertised fingerprint. The re-key handler runs as for a
// local mismatch.
func (r *Receiver) Reject(ctx context.Context) error {
	if r.sess.State != domain.AwaitingKeyConfirmation {
		return domain.ErrSessionTerminal
	}
	r.sess.State = domain.Rejected
	r.invokeRekey(ctx, domain.ErrFingerprintMismatch)
	return nil
}

// Consume drives the decode path: each decrypted chunk is handed to deliver
// in arrival order, and the terminal metadata is returned on completion.
// Chunks delivered before a mid-stream failure are not retracted.
func (r *Receiver) Consume(ctx context.Context, src domain.FrameSource, deliver func(chunk []byte) error) (domain.Metadata, error) {
	switch r.sess.State {
	case domain.Streaming:
	case domain.AwaitingKeyConfirmation:
		return domain.Metadata{}, ErrKeyNotConfirmed
	default:
		return domain.Metadata{}, domain.ErrSessionTerminal
	}

	dec := frame.NewDecoder(r.codec, src, r.log)
	for {
		chunk, err := dec.Next(ctx)
		if err == io.EOF {
			r.meta = dec.Metadata()
			r.sess.State = domain.Completed
			r.log.WithFields(logrus.Fields{"frames": r.sess.FramesReceived, "message": r.meta.ID}).
				Debug("exchange completed")
			return r.meta, nil
		}
		if err != nil {
			r.sess.State = domain.Failed
			if domain.IsKeyFailure(err) {
				r.invokeRekey(ctx, err)
			}
			return domain.Metadata{}, err
		}
		r.sess.FramesReceived++
		if err := deliver(chunk); err != nil {
			r.sess.State = domain.Failed
			return domain.Metadata{}, err
		}
	}
}

// invokeRekey runs the handler synchronously. The handler owns wiping the key
// material; its own failure is logged (by kind only) and not propagated over
// the original cause.
func (r *Receiver) invokeRekey(ctx context.Context, cause error) {
	if err := r.rekey.OnKeyFailure(ctx, r.km, cause); err != nil {
		r.log.WithError(err).Warn("re-key handler failed")
	}
}
