package domain

import "context"

// ChunkSource is the upstream "generate chunks" collaborator: a finite,
// non-restartable lazy sequence of plaintext chunks.
type ChunkSource interface {
	// Next returns the next plaintext chunk. ok=false signals normal
	// completion; a non-nil error signals unrecoverable mid-stream failure.
	Next(ctx context.Context) (chunk []byte, ok bool, err error)

	// Annotations returns auxiliary metadata for the terminal frame. Valid
	// once Next has reported completion.
	Annotations() map[string]string
}

// ReplyGenerator produces a chunk source for a prompt. It stands in for the
// external text-completion provider.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, prompt string) (ChunkSource, error)
}

// FrameSource yields stream frames in arrival order. Next blocks until a
// frame arrives and returns io.EOF when the transport is exhausted.
type FrameSource interface {
	Next(ctx context.Context) (StreamFrame, error)
}

// FrameSink accepts stream frames for immediate emission, in order.
type FrameSink interface {
	Write(frame StreamFrame) error
}

// RekeyHandler reacts to a Rejected or Failed session. Implementations must
// wipe km and obtain a replacement secret; they must never log, persist, or
// transmit the rejected secret or derived key.
type RekeyHandler interface {
	OnKeyFailure(ctx context.Context, km *KeyMaterial, cause error) error
}

// SecretPrompter asks the user for a new shared secret.
type SecretPrompter interface {
	PromptSecret(ctx context.Context, reason string) ([]byte, error)
}

// Exchange is one fully reassembled message exchange, handed to the
// transcript store only after the terminal frame's metadata is available.
type Exchange struct {
	ID          string            `json:"id"`
	Prompt      string            `json:"prompt"`
	Reply       string            `json:"reply"`
	Annotations map[string]string `json:"annotations,omitempty"`
	CreatedUTC  int64             `json:"created_utc"`
}

// TranscriptStore is the "persist exchange" collaborator.
type TranscriptStore interface {
	SaveExchange(ctx context.Context, ex Exchange) error
	LoadExchange(ctx context.Context, id string) (Exchange, bool, error)
	ListExchanges(ctx context.Context) ([]Exchange, error)
}
