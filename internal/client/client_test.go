package client_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"sealchat/internal/client"
	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/server"
	"sealchat/internal/services/chat"
	"sealchat/internal/services/generate"
)

type rekeyRecorder struct {
	calls int
}

func (r *rekeyRecorder) OnKeyFailure(ctx context.Context, km *domain.KeyMaterial, cause error) error {
	r.calls++
	km.Destroy()
	return nil
}

func startServer(t *testing.T, secret string) *httptest.Server {
	t.Helper()
	km, err := crypto.DeriveSecret([]byte(secret))
	require.NoError(t, err)
	srv, err := server.New(km, chat.New(&generate.Echo{}, nil, nil), nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestChat_EndToEnd(t *testing.T) {
	ts := startServer(t, "correct-secret")

	km, err := crypto.DeriveSecret([]byte("correct-secret"))
	require.NoError(t, err)
	rekey := &rekeyRecorder{}
	c := client.New(ts.URL, rekey)
	c.HTTP = ts.Client()

	var chunks []string
	meta, err := c.Chat(context.Background(), &km, "Hello world", func(chunk []byte) error {
		chunks = append(chunks, string(chunk))
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, meta.ID)
	require.Equal(t, "echo", meta.Annotations["generator"])

	// Chunks arrive incrementally and reassemble in order.
	require.Greater(t, len(chunks), 1)
	var reply string
	for _, c := range chunks {
		reply += c
	}
	require.Equal(t, "You said: Hello world", reply)
	require.Zero(t, rekey.calls)
}

func TestChat_WrongSecretTriggersRekey(t *testing.T) {
	ts := startServer(t, "correct-secret")

	km, err := crypto.DeriveSecret([]byte("wrong-secret"))
	require.NoError(t, err)
	rekey := &rekeyRecorder{}
	c := client.New(ts.URL, rekey)
	c.HTTP = ts.Client()

	_, err = c.Chat(context.Background(), &km, "Hello", func([]byte) error { return nil })
	require.ErrorIs(t, err, domain.ErrFingerprintMismatch)
	require.Equal(t, 1, rekey.calls)
	require.True(t, km.Destroyed())
}

func TestValidate(t *testing.T) {
	ts := startServer(t, "correct-secret")
	c := client.New(ts.URL, &rekeyRecorder{})
	c.HTTP = ts.Client()

	km, err := crypto.DeriveSecret([]byte("correct-secret"))
	require.NoError(t, err)
	ok, err := c.Validate(context.Background(), km.Fingerprint)
	require.NoError(t, err)
	require.True(t, ok)

	wrong, err := crypto.DeriveSecret([]byte("wrong-secret"))
	require.NoError(t, err)
	ok, err = c.Validate(context.Background(), wrong.Fingerprint)
	require.NoError(t, err)
	require.False(t, ok)
}
