package generate

import (
	"context"
	"errors"
	"strings"

	"sealchat/internal/domain"
)

// ErrScriptedFailure is the injected upstream failure of a Scripted source.
var ErrScriptedFailure = errors.New("scripted generation failure")

// Scripted is a fixed, finite chunk source. FailAt >= 0 makes Next report an
// unrecoverable failure at that index, for exercising the error-frame path.
type Scripted struct {
	Chunks [][]byte
	Notes  map[string]string
	FailAt int

	i int
}

// NewScripted builds a source that yields the given chunks then completes.
func NewScripted(chunks ...string) *Scripted {
	s := &Scripted{FailAt: -1}
	for _, c := range chunks {
		s.Chunks = append(s.Chunks, []byte(c))
	}
	return s
}

func (s *Scripted) Next(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if s.FailAt >= 0 && s.i == s.FailAt {
		return nil, false, ErrScriptedFailure
	}
	if s.i >= len(s.Chunks) {
		return nil, false, nil
	}
	c := s.Chunks[s.i]
	s.i++
	return c, true, nil
}

func (s *Scripted) Annotations() map[string]string { return s.Notes }

// Echo generates a deterministic reply by echoing the prompt word by word,
// one chunk per word. It keeps the demo server self-contained while a real
// completion provider is wired in deployments.
type Echo struct {
	Prefix string
}

func (e *Echo) GenerateReply(ctx context.Context, prompt string) (domain.ChunkSource, error) {
	prefix := e.Prefix
	if prefix == "" {
		prefix = "You said:"
	}
	words := strings.Fields(prefix + " " + prompt)
	src := &Scripted{FailAt: -1, Notes: map[string]string{"generator": "echo"}}
	for i, w := range words {
		if i < len(words)-1 {
			w += " "
		}
		src.Chunks = append(src.Chunks, []byte(w))
	}
	return src, nil
}

var (
	_ domain.ChunkSource    = (*Scripted)(nil)
	_ domain.ReplyGenerator = (*Echo)(nil)
)
