package sse_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"sealchat/internal/domain"
	"sealchat/internal/transport/sse"
)

func TestWriterReader_RoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := sse.NewWriter(rec)
	require.NoError(t, err)

	frames := []domain.StreamFrame{
		{Type: domain.FrameChunk, Seq: 0, EncryptedData: "AAAA"},
		{Type: domain.FrameChunk, Seq: 1, EncryptedData: "BBBB"},
		{Type: domain.FrameTerminal, EncryptedData: "CCCC"},
	}
	for _, f := range frames {
		require.NoError(t, w.Write(f))
	}
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	r := sse.NewReader(rec.Body)
	ctx := context.Background()
	for _, want := range frames {
		got, err := r.Next(ctx)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err = r.Next(ctx)
	require.Equal(t, io.EOF, err)
}

func TestReader_ErrorEvent(t *testing.T) {
	body := "data: {\"type\":\"error\",\"code\":\"GENERATION_FAILED\",\"message\":\"nope\"}\n\n"
	r := sse.NewReader(strings.NewReader(body))

	f, err := r.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.FrameError, f.Type)
	require.Equal(t, "GENERATION_FAILED", f.Code)
	require.Equal(t, "nope", f.Message)
}

func TestReader_IgnoresCommentsAndKeepAlives(t *testing.T) {
	body := ": ping\n\n\ndata: {\"type\":\"chunk\",\"seq\":3,\"encrypted_data\":\"DDDD\"}\n\n"
	r := sse.NewReader(strings.NewReader(body))

	f, err := r.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(3), f.Seq)
}

func TestReader_MalformedPayload(t *testing.T) {
	r := sse.NewReader(strings.NewReader("data: not json\n\n"))
	_, err := r.Next(context.Background())
	require.ErrorIs(t, err, domain.ErrEnvelopeMalformed)
}

func TestReader_TruncatedEvent(t *testing.T) {
	r := sse.NewReader(strings.NewReader("data: {\"type\":\"chunk\"}"))
	_, err := r.Next(context.Background())
	require.ErrorIs(t, err, domain.ErrEnvelopeMalformed)
}

func TestReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := sse.NewReader(strings.NewReader("data: {\"type\":\"chunk\"}\n\n"))
	_, err := r.Next(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
