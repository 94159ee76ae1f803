package domain

import (
	"errors"
	"fmt"
)

// Failure taxonomy. All of these are message-scoped except
// ErrFingerprintMismatch, which is session-scoped (no frames processed yet).
var (
	// ErrKeyDerivation indicates malformed secret input (e.g. empty).
	ErrKeyDerivation = errors.New("key derivation: malformed secret")

	// ErrFingerprintMismatch indicates the peer's advertised fingerprint does
	// not match the locally derived key. Fatal for the session.
	ErrFingerprintMismatch = errors.New("key fingerprint mismatch")

	// ErrEnvelopeMalformed indicates corrupt transport data: truncated
	// envelope, bad encoding, or an unrecognized frame tag.
	ErrEnvelopeMalformed = errors.New("envelope malformed")

	// ErrTagVerification indicates an authentication tag failure. At this
	// layer it is indistinguishable from a wrong key, so it triggers re-key.
	ErrTagVerification = errors.New("authentication tag verification failed")

	// ErrMetadataParse indicates the terminal envelope decrypted but its
	// content did not parse as metadata. Surfaced distinctly from tag
	// failures for diagnostics.
	ErrMetadataParse = errors.New("terminal metadata unusable")

	// ErrSessionTerminal is returned for any operation on a session that has
	// already reached a terminal state.
	ErrSessionTerminal = errors.New("session already terminal")
)

// IsKeyFailure reports whether err is evidence the held key is wrong or
// compromised, i.e. whether the re-key handler must run.
func IsKeyFailure(err error) bool {
	return errors.Is(err, ErrFingerprintMismatch) || errors.Is(err, ErrTagVerification)
}

// RemoteError carries an error frame received from the peer. It is surfaced
// directly, without decryption, and never triggers re-key on its own.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %s: %s", e.Code, e.Message)
}
