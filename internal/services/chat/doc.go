// Package chat orchestrates the sender side of one exchange: it asks the
// reply generator for a chunk source, streams the encrypted frames through a
// fresh sender session, and persists the reassembled transcript once the
// terminal frame is out.
package chat
