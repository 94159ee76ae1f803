package rekey_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"sealchat/internal/crypto"
	"sealchat/internal/domain"
	"sealchat/internal/services/rekey"
)

type scriptedPrompter struct {
	secret  []byte
	err     error
	reasons []string
}

func (p *scriptedPrompter) PromptSecret(ctx context.Context, reason string) ([]byte, error) {
	p.reasons = append(p.reasons, reason)
	if p.err != nil {
		return nil, p.err
	}
	return append([]byte(nil), p.secret...), nil
}

func TestHandler_WipesAndApplies(t *testing.T) {
	km, err := crypto.DeriveSecret([]byte("compromised"))
	require.NoError(t, err)

	prompter := &scriptedPrompter{secret: []byte("replacement")}
	var applied []byte
	h := rekey.New(prompter, func(secret []byte) error {
		applied = append([]byte(nil), secret...)
		return nil
	}, nil)

	err = h.OnKeyFailure(context.Background(), &km, domain.ErrTagVerification)
	require.NoError(t, err)
	require.True(t, km.Destroyed())
	require.Equal(t, "replacement", string(applied))

	// A key failure must read as a key problem, not a generic error.
	require.Len(t, prompter.reasons, 1)
	require.Contains(t, prompter.reasons[0], "invalid or has changed")
}

func TestHandler_PromptFailure(t *testing.T) {
	km, err := crypto.DeriveSecret([]byte("compromised"))
	require.NoError(t, err)

	h := rekey.New(&scriptedPrompter{err: errors.New("user cancelled")}, nil, nil)
	err = h.OnKeyFailure(context.Background(), &km, domain.ErrFingerprintMismatch)
	require.Error(t, err)
	// The key is gone regardless of whether a replacement arrived.
	require.True(t, km.Destroyed())
}
