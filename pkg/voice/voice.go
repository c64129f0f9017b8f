// Package voice handles yes/no prompts to the driver.
package voice

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Response is the driver's answer to a prompt.
type Response int

const (
	// ResponseTimeout means no answer arrived before the deadline.
	ResponseTimeout Response = iota
	ResponseNo
	ResponseYes
)

func (r Response) String() string {
	switch r {
	case ResponseYes:
		return "yes"
	case ResponseNo:
		return "no"
	default:
		return "timeout"
	}
}

// Interactor asks the driver a yes/no question and waits for the answer.
// Implementations must honor ctx and return ResponseTimeout when it expires.
type Interactor interface {
	Ask(ctx context.Context, prompt string, timeout time.Duration) (Response, error)
}

// PendingPrompt describes a prompt currently awaiting an answer.
type PendingPrompt struct {
	Prompt  string    `json:"prompt"`
	AskedAt time.Time `json:"asked_at"`
}

// Prompter is an Interactor fed by external answers, typically from the API
// layer where the driver taps a button. One question is pending at a time;
// an unanswered question resolves to timeout.
type Prompter struct {
	mu      sync.Mutex
	pending *PendingPrompt
	answers chan Response
}

// NewPrompter creates an idle Prompter.
func NewPrompter() *Prompter {
	return &Prompter{
		answers: make(chan Response, 1),
	}
}

// Ask publishes the prompt and blocks for an answer, the timeout, or ctx.
func (p *Prompter) Ask(ctx context.Context, prompt string, timeout time.Duration) (Response, error) {
	p.mu.Lock()
	// Drop any stale answer from an earlier abandoned question.
	select {
	case <-p.answers:
	default:
	}
	p.pending = &PendingPrompt{Prompt: prompt, AskedAt: time.Now()}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.pending = nil
		p.mu.Unlock()
	}()

	slog.Info("Voice: Asking", "prompt", prompt, "timeout", timeout)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-p.answers:
		slog.Info("Voice: Answered", "prompt", prompt, "response", r.String())
		return r, nil
	case <-timer.C:
		slog.Info("Voice: No answer", "prompt", prompt)
		return ResponseTimeout, nil
	case <-ctx.Done():
		return ResponseTimeout, ctx.Err()
	}
}

// Respond delivers the driver's answer. Returns false when no question is
// pending.
func (p *Prompter) Respond(r Response) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return false
	}
	select {
	case p.answers <- r:
		return true
	default:
		return false
	}
}

// Pending returns the currently open prompt, or nil.
func (p *Prompter) Pending() *PendingPrompt {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return nil
	}
	cp := *p.pending
	return &cp
}
