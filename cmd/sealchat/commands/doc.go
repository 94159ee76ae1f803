// Package commands implements the sealchat CLI: an encrypted streaming chat
// server (serve), a matching client (chat), and key management helpers
// (keygen, fingerprint).
package commands
