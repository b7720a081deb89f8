// Package runner executes scenarios one after another, each in a fresh
// browser session.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clinicflow/uiprobe/internal/driver"
	"github.com/clinicflow/uiprobe/internal/scenarios"
	"go.uber.org/zap"
)

// SessionFactory opens a new, isolated browser page.
type SessionFactory interface {
	NewPage(ctx context.Context) (driver.Page, error)
}

// Result is the outcome of a single scenario.
type Result struct {
	Scenario string
	Err      error
	Elapsed  time.Duration
}

// Passed reports whether the scenario succeeded.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Runner runs scenarios sequentially.
type Runner struct {
	driver   *driver.Driver
	sessions SessionFactory
	logger   *zap.Logger
}

// New creates a Runner.
func New(d *driver.Driver, sessions SessionFactory, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{driver: d, sessions: sessions, logger: logger.Named("runner")}
}

// Run executes list in order and returns one result per scenario started.
// The returned error joins every failure. Cancelling ctx stops the run
// before the next scenario begins.
func (r *Runner) Run(ctx context.Context, list []scenarios.Scenario) ([]Result, error) {
	results := make([]Result, 0, len(list))
	var failures []error

	for _, s := range list {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("run interrupted", zap.Int("remaining", len(list)-len(results)))
			failures = append(failures, fmt.Errorf("run interrupted before %s: %w", s.Name, err))
			break
		}

		res := r.runOne(ctx, s)
		results = append(results, res)
		if !res.Passed() {
			failures = append(failures, res.Err)
		}
	}

	passed := 0
	for _, res := range results {
		if res.Passed() {
			passed++
		}
	}
	r.logger.Info("run finished",
		zap.Int("passed", passed),
		zap.Int("failed", len(results)-passed),
		zap.Int("skipped", len(list)-len(results)),
	)

	return results, errors.Join(failures...)
}

func (r *Runner) runOne(ctx context.Context, s scenarios.Scenario) Result {
	log := r.logger.With(zap.String("scenario", s.Name))
	start := time.Now()
	res := Result{Scenario: s.Name}

	page, err := r.sessions.NewPage(ctx)
	if err != nil {
		res.Err = fmt.Errorf("%s: open session: %w", s.Name, err)
		res.Elapsed = time.Since(start)
		log.Error("scenario could not start", zap.Error(err))
		return res
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn("failed to close session", zap.Error(err))
		}
	}()

	log.Info("scenario started")
	res.Err = s.Run(ctx, r.driver, page)
	res.Elapsed = time.Since(start)

	if res.Err != nil {
		log.Error("scenario failed", zap.Duration("elapsed", res.Elapsed), zap.Error(res.Err))
		return res
	}
	log.Info("scenario passed", zap.Duration("elapsed", res.Elapsed))
	return res
}
