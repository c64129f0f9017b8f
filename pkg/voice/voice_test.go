package voice

import (
	"context"
	"testing"
	"time"
)

func TestAskAnswered(t *testing.T) {
	p := NewPrompter()

	go func() {
		// Wait until the prompt is visible, then answer.
		for p.Pending() == nil {
			time.Sleep(time.Millisecond)
		}
		if !p.Respond(ResponseYes) {
			t.Error("Respond should succeed while pending")
		}
	}()

	got, err := p.Ask(context.Background(), "Would you like to hear more?", time.Second)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != ResponseYes {
		t.Errorf("Ask = %s, want yes", got)
	}
	if p.Pending() != nil {
		t.Error("prompt should be cleared after answer")
	}
}

func TestAskTimeout(t *testing.T) {
	p := NewPrompter()

	got, err := p.Ask(context.Background(), "Anyone there?", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != ResponseTimeout {
		t.Errorf("Ask = %s, want timeout", got)
	}
}

func TestAskCancelled(t *testing.T) {
	p := NewPrompter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := p.Ask(ctx, "Cancelled?", time.Second)
	if err == nil {
		t.Error("expected context error")
	}
	if got != ResponseTimeout {
		t.Errorf("Ask = %s, want timeout", got)
	}
}

func TestRespondWithoutPending(t *testing.T) {
	p := NewPrompter()
	if p.Respond(ResponseNo) {
		t.Error("Respond should fail with no pending prompt")
	}
}

func TestStaleAnswerDropped(t *testing.T) {
	p := NewPrompter()

	// First question times out, then a late answer lands in the buffer.
	if _, err := p.Ask(context.Background(), "first", time.Millisecond); err != nil {
		t.Fatalf("Ask: %v", err)
	}

	// Second question must not consume a stale answer.
	got, err := p.Ask(context.Background(), "second", 10*time.Millisecond)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != ResponseTimeout {
		t.Errorf("Ask = %s, want timeout", got)
	}
}

func TestResponseString(t *testing.T) {
	if ResponseYes.String() != "yes" || ResponseNo.String() != "no" || ResponseTimeout.String() != "timeout" {
		t.Error("unexpected Response strings")
	}
}
