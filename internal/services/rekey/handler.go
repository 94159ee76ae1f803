package rekey

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"sealchat/internal/domain"
	"sealchat/internal/util/memzero"
)

// Handler wipes rejected key material and obtains a replacement secret via
// the prompter. The accepted secret is handed to apply (for example, to store
// it for the next session); the handler itself never logs, persists, or
// transmits secrets or keys in any form.
type Handler struct {
	prompt domain.SecretPrompter
	apply  func(secret []byte) error
	log    *logrus.Entry
}

// New builds a handler. apply may be nil when nothing needs the new secret
// beyond the prompter's own side effects.
func New(prompt domain.SecretPrompter, apply func(secret []byte) error, log *logrus.Entry) *Handler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Handler{prompt: prompt, apply: apply, log: log}
}

// OnKeyFailure zeroes km, then prompts for a new secret. Only the failure
// kind is logged, never the material.
func (h *Handler) OnKeyFailure(ctx context.Context, km *domain.KeyMaterial, cause error) error {
	km.Destroy()
	h.log.WithField("cause", kind(cause)).Warn("key invalidated, new secret required")

	secret, err := h.prompt.PromptSecret(ctx, userMessage(cause))
	if err != nil {
		return fmt.Errorf("prompt for new secret: %w", err)
	}
	if h.apply == nil {
		memzero.Zero(secret)
		return nil
	}
	err = h.apply(secret)
	memzero.Zero(secret)
	if err != nil {
		return fmt.Errorf("apply new secret: %w", err)
	}
	return nil
}

// kind maps a cause to a loggable label.
func kind(cause error) string {
	switch {
	case errors.Is(cause, domain.ErrFingerprintMismatch):
		return "fingerprint-mismatch"
	case errors.Is(cause, domain.ErrTagVerification):
		return "tag-verification"
	default:
		return "other"
	}
}

// userMessage phrases the failure for re-entry. A key problem must present as
// "your key is invalid or has changed", never as a generic failure.
func userMessage(cause error) string {
	if domain.IsKeyFailure(cause) {
		return "your encryption key is invalid or has changed; enter the shared secret again"
	}
	return "the encrypted exchange failed; enter the shared secret again"
}

var _ domain.RekeyHandler = (*Handler)(nil)
