package session_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/services/session"
)

type chunkSource struct {
	chunks [][]byte
	notes  map[string]string
	i      int
}

func (s *chunkSource) Next(ctx context.Context) ([]byte, bool, error) {
	if s.i >= len(s.chunks) {
		return nil, false, nil
	}
	c := s.chunks[s.i]
	s.i++
	return c, true, nil
}

func (s *chunkSource) Annotations() map[string]string { return s.notes }

// frameBuffer collects emitted frames and replays them as a source.
type frameBuffer struct {
	frames []domain.StreamFrame
	i      int
}

func (b *frameBuffer) Write(f domain.StreamFrame) error { b.frames = append(b.frames, f); return nil }

func (b *frameBuffer) Next(ctx context.Context) (domain.StreamFrame, error) {
	if b.i >= len(b.frames) {
		return domain.StreamFrame{}, io.EOF
	}
	f := b.frames[b.i]
	b.i++
	return f, nil
}

// rekeyRecorder records invocations and wipes the key like the real handler.
type rekeyRecorder struct {
	calls  int
	causes []error
}

func (r *rekeyRecorder) OnKeyFailure(ctx context.Context, km *domain.KeyMaterial, cause error) error {
	r.calls++
	r.causes = append(r.causes, cause)
	km.Destroy()
	return nil
}

func deriveKey(t *testing.T, secret string) domain.KeyMaterial {
	t.Helper()
	km, err := crypto.DeriveSecret([]byte(secret))
	require.NoError(t, err)
	return km
}

func TestSenderReceiver_RoundTrip(t *testing.T) {
	km := deriveKey(t, "correct-secret")
	ctx := context.Background()

	snd, err := session.NewSender(km, nil)
	require.NoError(t, err)
	require.Equal(t, km.Fingerprint, snd.Fingerprint())

	buf := &frameBuffer{}
	src := &chunkSource{
		chunks: [][]byte{[]byte("Hel"), []byte("lo "), []byte("world")},
		notes:  map[string]string{"finish": "stop"},
	}
	require.NoError(t, snd.Run(ctx, src, buf))
	require.Equal(t, domain.Completed, snd.Session().State)
	require.Equal(t, uint64(4), snd.Session().FramesSent)

	rkm := deriveKey(t, "correct-secret")
	rekey := &rekeyRecorder{}
	rcv, err := session.NewReceiver(&rkm, rekey, nil)
	require.NoError(t, err)
	require.Equal(t, domain.AwaitingKeyConfirmation, rcv.State())

	require.NoError(t, rcv.ConfirmKey(ctx, snd.Fingerprint()))
	require.Equal(t, domain.Streaming, rcv.State())

	var got []string
	meta, err := rcv.Consume(ctx, buf, func(chunk []byte) error {
		got = append(got, string(chunk))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Hel", "lo ", "world"}, got)
	require.Equal(t, snd.Session().ID, meta.ID)
	require.Equal(t, "stop", meta.Annotations["finish"])
	require.Equal(t, domain.Completed, rcv.State())
	require.Zero(t, rekey.calls)

	// Terminal states are final.
	require.ErrorIs(t, rcv.ConfirmKey(ctx, snd.Fingerprint()), domain.ErrSessionTerminal)
	_, err = rcv.Consume(ctx, buf, func([]byte) error { return nil })
	require.ErrorIs(t, err, domain.ErrSessionTerminal)
	require.ErrorIs(t, snd.Run(ctx, src, buf), domain.ErrSessionTerminal)
}

func TestReceiver_FingerprintMismatchRejects(t *testing.T) {
	km := deriveKey(t, "correct-secret")
	wrong := deriveKey(t, "wrong-secret")
	rekey := &rekeyRecorder{}
	ctx := context.Background()

	rcv, err := session.NewReceiver(&km, rekey, nil)
	require.NoError(t, err)

	err = rcv.ConfirmKey(ctx, wrong.Fingerprint)
	require.ErrorIs(t, err, domain.ErrFingerprintMismatch)
	require.Equal(t, domain.Rejected, rcv.State())
	require.Equal(t, 1, rekey.calls)
	require.True(t, km.Destroyed())

	// No frames may be processed out of Rejected.
	_, err = rcv.Consume(ctx, &frameBuffer{}, func([]byte) error { return nil })
	require.ErrorIs(t, err, domain.ErrSessionTerminal)
}

func TestReceiver_ConsumeRequiresConfirmation(t *testing.T) {
	km := deriveKey(t, "correct-secret")
	rcv, err := session.NewReceiver(&km, &rekeyRecorder{}, nil)
	require.NoError(t, err)

	_, err = rcv.Consume(context.Background(), &frameBuffer{}, func([]byte) error { return nil })
	require.ErrorIs(t, err, session.ErrKeyNotConfirmed)
	require.Equal(t, domain.AwaitingKeyConfirmation, rcv.State())
}

func TestReceiver_MidStreamTagFailure(t *testing.T) {
	sendKM := deriveKey(t, "correct-secret")
	ctx := context.Background()

	snd, err := session.NewSender(sendKM, nil)
	require.NoError(t, err)
	buf := &frameBuffer{}
	src := &chunkSource{chunks: [][]byte{[]byte("one"), []byte("two"), []byte("three")}}
	require.NoError(t, snd.Run(ctx, src, buf))

	// Corrupt the second chunk's tag.
	env, err := domain.EnvelopeFromBase64(buf.frames[1].EncryptedData)
	require.NoError(t, err)
	env[len(env)-1] ^= 0x80
	buf.frames[1].EncryptedData = env.Base64()

	recvKM := deriveKey(t, "correct-secret")
	rekey := &rekeyRecorder{}
	rcv, err := session.NewReceiver(&recvKM, rekey, nil)
	require.NoError(t, err)
	require.NoError(t, rcv.ConfirmKey(ctx, snd.Fingerprint()))

	var got []string
	_, err = rcv.Consume(ctx, buf, func(chunk []byte) error {
		got = append(got, string(chunk))
		return nil
	})
	require.ErrorIs(t, err, domain.ErrTagVerification)
	require.Equal(t, domain.Failed, rcv.State())

	// The chunk before the failure stays delivered; the handler ran once.
	require.Equal(t, []string{"one"}, got)
	require.Equal(t, 1, rekey.calls)
	require.True(t, recvKM.Destroyed())
}

func TestReceiver_RemoteErrorDoesNotRekey(t *testing.T) {
	km := deriveKey(t, "correct-secret")
	ctx := context.Background()

	buf := &frameBuffer{frames: []domain.StreamFrame{
		{Type: domain.FrameError, Code: "GENERATION_FAILED", Message: "upstream gave up"},
	}}

	rekey := &rekeyRecorder{}
	rcv, err := session.NewReceiver(&km, rekey, nil)
	require.NoError(t, err)
	require.NoError(t, rcv.ConfirmKey(ctx, km.Fingerprint))

	_, err = rcv.Consume(ctx, buf, func([]byte) error { return nil })
	var remote *domain.RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, domain.Failed, rcv.State())
	require.Zero(t, rekey.calls)
}

func TestReceiver_PeerRejection(t *testing.T) {
	km := deriveKey(t, "correct-secret")
	rekey := &rekeyRecorder{}

	rcv, err := session.NewReceiver(&km, rekey, nil)
	require.NoError(t, err)
	require.NoError(t, rcv.Reject(context.Background()))
	require.Equal(t, domain.Rejected, rcv.State())
	require.Equal(t, 1, rekey.calls)
	require.ErrorIs(t, rekey.causes[0], domain.ErrFingerprintMismatch)
}
