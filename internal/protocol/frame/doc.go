// Package frame converts a logical message into an ordered sequence of
// encrypted stream frames and back.
//
// The encode path pulls plaintext chunks from a domain.ChunkSource, seals
// each one independently, and yields Chunk frames followed by exactly one
// Terminal frame (or one Error frame on upstream failure). The decode path
// pulls frames from a domain.FrameSource, opens each envelope, and yields
// plaintext chunks in arrival order followed by the terminal metadata.
//
// Because every chunk carries its own authentication, a consumer may render
// chunk n before chunk n+1 exists, and a mid-stream failure never retracts
// chunks already delivered.
package frame
