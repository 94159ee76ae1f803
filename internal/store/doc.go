// Package store persists the two things sealchat keeps on disk: the
// provisioned shared secret (sealed under a local passphrase) and the
// plaintext transcripts handed over by the chat service after a completed
// exchange.
package store
