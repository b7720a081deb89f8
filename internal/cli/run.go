package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinicflow/uiprobe/internal/config"
	"github.com/clinicflow/uiprobe/internal/runner"
	"github.com/clinicflow/uiprobe/internal/scenarios"
	"go.uber.org/zap"
)

// SuiteRunner executes a list of scenarios.
type SuiteRunner interface {
	Run(ctx context.Context, list []scenarios.Scenario) ([]runner.Result, error)
}

// RunDependencies holds everything the run command needs
type RunDependencies struct {
	TargetConfig *config.TargetConfig
	Runner       SuiteRunner
	Scenarios    []scenarios.Scenario
	Logger       *zap.Logger
	Out          io.Writer
}

// ErrScenariosFailed is returned when at least one scenario did not pass.
var ErrScenariosFailed = errors.New("one or more scenarios failed")

// RunSuite runs the selected scenarios until done or interrupted by SIGINT/SIGTERM
func RunSuite(deps RunDependencies) error {
	return RunSuiteWithSignals(deps, nil)
}

// RunSuiteWithSignals is RunSuite with an injectable signal channel.
// If shutdown is nil, a new channel is created and registered with signal.Notify.
func RunSuiteWithSignals(deps RunDependencies, shutdown chan os.Signal) error {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}

	ctx, stop := CancelOnSignal(context.Background(), shutdown, logger)
	defer stop()

	logger.Info("starting run",
		zap.String("target", deps.TargetConfig.BaseURL),
		zap.String("driver", deps.TargetConfig.Driver),
		zap.Int("scenarios", len(deps.Scenarios)),
	)

	results, err := deps.Runner.Run(ctx, deps.Scenarios)
	for _, res := range results {
		if res.Passed() {
			fmt.Fprintf(out, "PASS %s (%s)\n", res.Scenario, res.Elapsed.Round(time.Millisecond))
			continue
		}
		fmt.Fprintf(out, "FAIL %s: %v\n", res.Scenario, res.Err)
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrScenariosFailed, err)
	}
	return nil
}

// CancelOnSignal returns a context that is cancelled when a signal arrives on
// shutdown. The returned stop function releases the signal registration.
func CancelOnSignal(parent context.Context, shutdown chan os.Signal, logger *zap.Logger) (context.Context, context.CancelFunc) {
	registered := false
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		registered = true
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case sig := <-shutdown:
			logger.Warn("received signal, stopping after the current scenario", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		cancel()
		<-done
		if registered {
			signal.Stop(shutdown)
		}
	}
}

// ListScenarios writes one scenario per line
func ListScenarios(w io.Writer, list []scenarios.Scenario) error {
	for _, s := range list {
		if _, err := fmt.Fprintf(w, "%-24s %s\n", s.Name, s.Description); err != nil {
			return err
		}
	}
	return nil
}
