package probe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	boom := errors.New("boom")
	probes := []Probe{
		{Name: "ok", Check: func(ctx context.Context) error { return nil }},
		{Name: "fail", Check: func(ctx context.Context) error { return boom }, Critical: true},
	}

	results := Run(context.Background(), probes)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Err != nil {
		t.Errorf("ok probe: %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, boom) || !results[1].Critical {
		t.Errorf("fail probe = %+v", results[1])
	}
}

func TestRunTimeout(t *testing.T) {
	probes := []Probe{{
		Name:    "slow",
		Timeout: 20 * time.Millisecond,
		Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}}

	start := time.Now()
	results := Run(context.Background(), probes)
	if results[0].Err == nil {
		t.Error("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Error("probe did not respect its timeout")
	}
}

func TestAnalyzeResults(t *testing.T) {
	boom := errors.New("boom")

	if err := AnalyzeResults([]Result{{Name: "ok"}}); err != nil {
		t.Errorf("all-pass: %v", err)
	}
	if err := AnalyzeResults([]Result{{Name: "warn", Err: boom}}); err != nil {
		t.Errorf("non-critical failure should not abort: %v", err)
	}
	err := AnalyzeResults([]Result{{Name: "llm", Err: boom, Critical: true}})
	if err == nil || !errors.Is(err, boom) {
		t.Errorf("critical failure lost: %v", err)
	}
}
