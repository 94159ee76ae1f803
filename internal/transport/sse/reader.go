package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sealchat/internal/domain"
)

// Reader parses SSE events back into stream frames. It implements
// domain.FrameSource. Next suspends only on transport read.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps the body of an event-stream response.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next frame in arrival order, or io.EOF once the stream
// closes cleanly. Event payloads that are not frame JSON are malformed
// transport data.
func (r *Reader) Next(ctx context.Context) (domain.StreamFrame, error) {
	var data strings.Builder
	sawData := false

	for {
		if err := ctx.Err(); err != nil {
			return domain.StreamFrame{}, err
		}
		line, err := r.r.ReadString('\n')
		if err != nil {
			if err == io.EOF && !sawData {
				return domain.StreamFrame{}, io.EOF
			}
			if err == io.EOF {
				// Stream cut mid-event.
				return domain.StreamFrame{}, fmt.Errorf("%w: truncated event", domain.ErrEnvelopeMalformed)
			}
			return domain.StreamFrame{}, err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "" && sawData:
			return parse(data.String())
		case line == "":
			// Keep-alive blank line between events.
		case strings.HasPrefix(line, "data:"):
			if sawData {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			sawData = true
		case strings.HasPrefix(line, ":"):
			// Comment line, ignored.
		default:
			// Unknown SSE fields (event:, id:, retry:) are ignored; the
			// protocol uses the data payload's type discriminator only.
		}
	}
}

func parse(payload string) (domain.StreamFrame, error) {
	var f domain.StreamFrame
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		return domain.StreamFrame{}, fmt.Errorf("%w: bad event payload", domain.ErrEnvelopeMalformed)
	}
	if f.Type == "" {
		return domain.StreamFrame{}, fmt.Errorf("%w: event without frame type", domain.ErrEnvelopeMalformed)
	}
	return f, nil
}

var _ domain.FrameSource = (*Reader)(nil)
