package llm

import (
	"context"
	"errors"
	"sync"
)

var ErrScriptExhausted = errors.New("scripted backend has no more replies")

type Reply struct {
	Text string
	Err  error
}

// Scripted replays canned replies in order and records every prompt it sees.
type Scripted struct {
	mu      sync.Mutex
	replies []Reply
	prompts []string
}

func NewScripted(replies ...Reply) *Scripted {
	return &Scripted{replies: replies}
}

// ScriptedText is NewScripted for replies that never fail.
func ScriptedText(texts ...string) *Scripted {
	replies := make([]Reply, 0, len(texts))
	for _, t := range texts {
		replies = append(replies, Reply{Text: t})
	}
	return NewScripted(replies...)
}

func (s *Scripted) GenerateStep(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.prompts)
	s.prompts = append(s.prompts, prompt)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if n >= len(s.replies) {
		return "", ErrScriptExhausted
	}
	r := s.replies[n]
	return r.Text, r.Err
}

func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.prompts))
	copy(out, s.prompts)
	return out
}
