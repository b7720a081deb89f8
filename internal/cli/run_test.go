package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/clinicflow/uiprobe/internal/config"
	"github.com/clinicflow/uiprobe/internal/runner"
	"github.com/clinicflow/uiprobe/internal/scenarios"
	"go.uber.org/zap"
)

// MockSuiteRunner is a mock implementation of SuiteRunner for testing
type MockSuiteRunner struct {
	RunFunc func(ctx context.Context, list []scenarios.Scenario) ([]runner.Result, error)
}

func (m *MockSuiteRunner) Run(ctx context.Context, list []scenarios.Scenario) ([]runner.Result, error) {
	return m.RunFunc(ctx, list)
}

// createTestDeps creates RunDependencies with the given runner for testing
func createTestDeps(r SuiteRunner, out *bytes.Buffer) RunDependencies {
	list, _ := scenarios.Select([]string{"patient-register", "patient-login"})
	return RunDependencies{
		TargetConfig: &config.TargetConfig{BaseURL: "http://localhost:5173", Driver: "playwright"},
		Runner:       r,
		Scenarios:    list,
		Logger:       zap.NewNop(),
		Out:          out,
	}
}

func TestRunSuite_AllPass(t *testing.T) {
	var out bytes.Buffer
	deps := createTestDeps(&MockSuiteRunner{
		RunFunc: func(ctx context.Context, list []scenarios.Scenario) ([]runner.Result, error) {
			results := make([]runner.Result, len(list))
			for i, s := range list {
				results[i] = runner.Result{Scenario: s.Name, Elapsed: 1500 * time.Millisecond}
			}
			return results, nil
		},
	}, &out)

	if err := RunSuiteWithSignals(deps, make(chan os.Signal, 1)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	want := "PASS patient-register (1.5s)\nPASS patient-login (1.5s)\n"
	if out.String() != want {
		t.Errorf("Expected output %q, got %q", want, out.String())
	}
}

func TestRunSuite_Failure(t *testing.T) {
	var out bytes.Buffer
	failure := errors.New("patient-login: No alert found [submitted]")
	deps := createTestDeps(&MockSuiteRunner{
		RunFunc: func(ctx context.Context, list []scenarios.Scenario) ([]runner.Result, error) {
			return []runner.Result{
				{Scenario: "patient-register"},
				{Scenario: "patient-login", Err: failure},
			}, failure
		},
	}, &out)

	err := RunSuiteWithSignals(deps, make(chan os.Signal, 1))
	if !errors.Is(err, ErrScenariosFailed) {
		t.Fatalf("Expected ErrScenariosFailed, got %v", err)
	}
	if !errors.Is(err, failure) {
		t.Errorf("Expected wrapped scenario failure, got %v", err)
	}
	if !strings.Contains(out.String(), "FAIL patient-login: patient-login: No alert found") {
		t.Errorf("Expected FAIL line, got %q", out.String())
	}
}

func TestRunSuite_SignalCancelsRun(t *testing.T) {
	var out bytes.Buffer
	shutdown := make(chan os.Signal, 1)

	deps := createTestDeps(&MockSuiteRunner{
		RunFunc: func(ctx context.Context, list []scenarios.Scenario) ([]runner.Result, error) {
			shutdown <- syscall.SIGTERM
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return nil, errors.New("context was not cancelled")
			}
		},
	}, &out)

	err := RunSuiteWithSignals(deps, shutdown)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestCancelOnSignal_StopWithoutSignal(t *testing.T) {
	ctx, stop := CancelOnSignal(context.Background(), make(chan os.Signal, 1), zap.NewNop())
	if ctx.Err() != nil {
		t.Fatal("Context should not be cancelled before stop")
	}
	stop()
	if !errors.Is(ctx.Err(), context.Canceled) {
		t.Errorf("Expected context to be cancelled after stop, got %v", ctx.Err())
	}
}

func TestCancelOnSignal_RegistersWhenChannelNil(t *testing.T) {
	ctx, stop := CancelOnSignal(context.Background(), nil, zap.NewNop())
	defer stop()

	p, err := os.FindProcess(os.Getpid())
	if err != nil {
		t.Fatalf("Failed to find process: %v", err)
	}
	if err := p.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("Failed to send signal: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Context was not cancelled by SIGINT")
	}
}

func TestListScenarios(t *testing.T) {
	var out bytes.Buffer
	if err := ListScenarios(&out, scenarios.Catalog()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != len(scenarios.Catalog()) {
		t.Fatalf("Expected %d lines, got %d", len(scenarios.Catalog()), len(lines))
	}
	if !strings.HasPrefix(lines[0], "patient-register ") {
		t.Errorf("Expected first line to name patient-register, got %q", lines[0])
	}
}
