// Package probe runs startup health checks before the server comes up.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const defaultTimeout = 5 * time.Second

// Probe is one startup check.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
	// Critical failures abort startup; others only log.
	Critical bool
	// Timeout bounds the check. Zero means the default.
	Timeout time.Duration
}

// Result is the outcome of one probe.
type Result struct {
	Name     string
	Critical bool
	Err      error
	Duration time.Duration
}

// Run executes the probes in order and returns one result per probe.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, 0, len(probes))
	for _, p := range probes {
		timeout := p.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		checkCtx, cancel := context.WithTimeout(ctx, timeout)

		start := time.Now()
		err := p.Check(checkCtx)
		cancel()

		results = append(results, Result{
			Name:     p.Name,
			Critical: p.Critical,
			Err:      err,
			Duration: time.Since(start),
		})
	}
	return results
}

// AnalyzeResults logs every result and returns a combined error if any
// critical probe failed.
func AnalyzeResults(results []Result) error {
	var critical []error

	slog.Info("Startup Checks Summary")
	for _, r := range results {
		if r.Err == nil {
			slog.Info(fmt.Sprintf("[PASS] %-20s (%v)", r.Name, r.Duration.Round(time.Millisecond)))
			continue
		}
		slog.Error(fmt.Sprintf("[FAIL] %-20s (%v)", r.Name, r.Duration.Round(time.Millisecond)), "error", r.Err)
		if r.Critical {
			critical = append(critical, fmt.Errorf("%s: %w", r.Name, r.Err))
		}
	}

	if len(critical) > 0 {
		return errors.Join(critical...)
	}
	return nil
}
