// Package generate provides chunk sources standing in for the external
// text-completion provider. The echo generator powers the demo server; the
// scripted source exists for tests and deterministic replies.
package generate
