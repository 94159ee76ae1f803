// Package sse carries stream frames over a text/event-stream connection.
//
// Each frame is one event: a single "data:" line holding the frame's JSON,
// followed by a blank line. The Writer flushes after every event so the
// receiver can render chunk n before chunk n+1 exists; the Reader yields
// events in arrival order and io.EOF when the stream closes.
package sse
