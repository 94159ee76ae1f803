// Package session owns the key material for the lifetime of one streaming
// message exchange and drives the frame protocol through it.
//
// The sender side derives once, advertises its fingerprint, and pumps encoded
// frames into a sink. The receiver side confirms the peer's fingerprint
// before any frame is processed, then delivers decrypted chunks in arrival
// order and invokes the re-key handler synchronously when a failure is
// evidence of a key problem.
//
// Sessions are single-use: every state machine here has terminal states with
// no way out, and a new session must be created for the next message.
package session
