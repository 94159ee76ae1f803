package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sealchat/internal/domain"
	"sealchat/internal/store"
)

func TestKeyStore_RoundTrip(t *testing.T) {
	ks := store.NewKeyStore(t.TempDir())

	secret := []byte("the provisioned chat secret")
	require.NoError(t, ks.SaveSecret("local passphrase", secret))

	got, err := ks.LoadSecret("local passphrase")
	require.NoError(t, err)
	require.Equal(t, secret, got)
}

func TestKeyStore_WrongPassphrase(t *testing.T) {
	ks := store.NewKeyStore(t.TempDir())
	require.NoError(t, ks.SaveSecret("right", []byte("secret")))

	_, err := ks.LoadSecret("wrong")
	require.ErrorIs(t, err, store.ErrWrongPassphrase)
}

func TestKeyStore_Missing(t *testing.T) {
	ks := store.NewKeyStore(t.TempDir())
	_, err := ks.LoadSecret("any")
	require.Error(t, err)
}

func TestTranscriptStore(t *testing.T) {
	ts, err := store.OpenTranscripts(filepath.Join(t.TempDir(), "transcripts.db"))
	require.NoError(t, err)
	defer ts.Close()

	ctx := context.Background()
	ex := domain.Exchange{
		ID:          "abc",
		Prompt:      "Hello",
		Reply:       "You said: Hello",
		Annotations: map[string]string{"generator": "echo"},
		CreatedUTC:  1700000000,
	}
	require.NoError(t, ts.SaveExchange(ctx, ex))

	got, found, err := ts.LoadExchange(ctx, "abc")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, ex, got)

	_, found, err = ts.LoadExchange(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	all, err := ts.ListExchanges(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.Error(t, ts.SaveExchange(ctx, domain.Exchange{}))
}
