package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"sealchat/internal/domain"
)

// Headers returns the response headers for an event stream.
func Headers() map[string]string {
	return map[string]string{
		"Content-Type":  "text/event-stream",
		"Cache-Control": "no-cache",
		"Connection":    "keep-alive",
	}
}

// Writer emits stream frames as SSE events. It implements domain.FrameSink.
type Writer struct {
	w     http.ResponseWriter
	flush http.Flusher
}

// NewWriter prepares w for event streaming and sets the stream headers. The
// ResponseWriter must support flushing.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support streaming")
	}
	for k, v := range Headers() {
		w.Header().Set(k, v)
	}
	return &Writer{w: w, flush: flusher}, nil
}

// Write emits one frame immediately. No buffering beyond the transport's own.
func (w *Writer) Write(f domain.StreamFrame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if _, err := fmt.Fprintf(w.w, "data: %s\n\n", payload); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	w.flush.Flush()
	return nil
}

var _ domain.FrameSink = (*Writer)(nil)
