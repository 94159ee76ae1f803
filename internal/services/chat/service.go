package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"sealchat/internal/domain"
	"sealchat/internal/services/session"
)

// Service drives encrypted streaming replies.
type Service struct {
	generator domain.ReplyGenerator
	store     domain.TranscriptStore
	log       *logrus.Entry
}

// New builds a chat service. store may be nil to disable persistence.
func New(generator domain.ReplyGenerator, store domain.TranscriptStore, log *logrus.Entry) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{generator: generator, store: store, log: log}
}

// recordingSource tees chunks off a ChunkSource so the full reply is known
// once the stream completes. The sender is the only reader, so no locking.
type recordingSource struct {
	domain.ChunkSource
	reply strings.Builder
}

func (r *recordingSource) Next(ctx context.Context) ([]byte, bool, error) {
	chunk, ok, err := r.ChunkSource.Next(ctx)
	if ok && err == nil {
		r.reply.Write(chunk)
	}
	return chunk, ok, err
}

// StreamReply generates and streams one encrypted reply to sink. On success
// the reassembled exchange is persisted and returned; the transcript is never
// written for a failed or error-terminated stream.
func (s *Service) StreamReply(ctx context.Context, km domain.KeyMaterial, prompt string, sink domain.FrameSink) (domain.Exchange, error) {
	src, err := s.generator.GenerateReply(ctx, prompt)
	if err != nil {
		return domain.Exchange{}, fmt.Errorf("generate reply: %w", err)
	}

	snd, err := session.NewSender(km, s.log)
	if err != nil {
		return domain.Exchange{}, err
	}
	rec := &recordingSource{ChunkSource: src}

	if err := snd.Run(ctx, rec, sink); err != nil {
		return domain.Exchange{}, err
	}
	sess := snd.Session()
	if sess.State != domain.Completed {
		// The error frame already went out; nothing to persist.
		return domain.Exchange{}, nil
	}

	ex := domain.Exchange{
		ID:          sess.ID,
		Prompt:      prompt,
		Reply:       rec.reply.String(),
		Annotations: src.Annotations(),
		CreatedUTC:  time.Now().UTC().Unix(),
	}
	if s.store != nil {
		if err := s.store.SaveExchange(ctx, ex); err != nil {
			// The peer already holds the message; surface but do not unsend.
			return ex, fmt.Errorf("persist exchange %s: %w", ex.ID, err)
		}
	}
	s.log.WithFields(logrus.Fields{"message": ex.ID, "frames": sess.FramesSent}).
		Info("exchange streamed")
	return ex, nil
}
