package main

import (
	"context"
	"fmt"
	"log"
	"os"

	internalcli "github.com/clinicflow/uiprobe/internal/cli"
	"github.com/clinicflow/uiprobe/internal/config"
	"github.com/clinicflow/uiprobe/internal/driver"
	"github.com/clinicflow/uiprobe/internal/observability"
	"github.com/clinicflow/uiprobe/internal/runner"
	"github.com/clinicflow/uiprobe/internal/scenarios"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var version = "0.1.0"

// browserSession is a launched browser that hands out pages.
type browserSession interface {
	runner.SessionFactory
	Close() error
}

// launchBrowser starts the configured backend
func launchBrowser(ctx context.Context, cfg *config.TargetConfig) (browserSession, error) {
	switch cfg.Driver {
	case config.DriverChromedp:
		return driver.LaunchChromedp(ctx, cfg.Headless)
	default:
		return driver.LaunchPlaywright(cfg.Headless)
	}
}

// buildRunDependencies creates all dependencies needed for a run. The
// returned cleanup closes the browser.
func buildRunDependencies(c *cli.Context, logger *zap.Logger) (internalcli.RunDependencies, func(), error) {
	var deps internalcli.RunDependencies
	noop := func() {}

	// Load target configuration, then apply flag overrides
	targetConfig, err := config.LoadTargetConfig(os.Getenv)
	if err != nil {
		return deps, noop, fmt.Errorf("invalid target configuration: %w", err)
	}
	if c.IsSet("base-url") {
		targetConfig.BaseURL = c.String("base-url")
	}
	if c.IsSet("driver") {
		if err := config.ValidateDriver(c.String("driver")); err != nil {
			return deps, noop, err
		}
		targetConfig.Driver = c.String("driver")
	}
	if c.Bool("headed") {
		targetConfig.Headless = false
	}
	if c.IsSet("timeout") {
		targetConfig.DialogTimeout = c.Duration("timeout")
	}
	deps.TargetConfig = targetConfig

	// Resolve scenarios before paying for a browser launch
	selected, err := scenarios.Select(c.StringSlice("scenario"))
	if err != nil {
		return deps, noop, err
	}
	deps.Scenarios = selected

	browser, err := launchBrowser(c.Context, targetConfig)
	if err != nil {
		return deps, noop, err
	}
	cleanup := func() {
		if err := browser.Close(); err != nil {
			logger.Warn("failed to close browser", zap.Error(err))
		}
	}

	d := driver.New(targetConfig.BaseURL, targetConfig.DialogTimeout, logger)
	deps.Runner = runner.New(d, browser, logger)
	deps.Logger = logger
	deps.Out = c.App.Writer

	return deps, cleanup, nil
}

// RunCommand returns the run command
func RunCommand(logger *zap.Logger) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run scenarios against the clinic front end",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "scenario",
				Aliases: []string{"s"},
				Usage:   "scenario to run (repeatable; default all)",
			},
			&cli.StringFlag{
				Name:  "driver",
				Usage: "browser backend: playwright or chromedp",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "front-end base URL",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "how long to wait for the outcome alert",
			},
			&cli.BoolFlag{
				Name:  "headed",
				Usage: "show the browser window",
			},
		},
		Action: func(c *cli.Context) error {
			deps, cleanup, err := buildRunDependencies(c, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			return internalcli.RunSuite(deps)
		},
	}
}

// ListCommand returns the list command
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List available scenarios",
		Action: func(c *cli.Context) error {
			return internalcli.ListScenarios(c.App.Writer, scenarios.Catalog())
		},
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	loggerConfig, err := config.LoadLoggerConfig(os.Getenv)
	if err != nil {
		log.Fatalf("invalid logger configuration: %v", err)
	}
	logger := observability.NewLogger(*loggerConfig)
	defer logger.Sync()

	app := &cli.App{
		Name:    "uiprobe",
		Usage:   "Browser probe for the clinic registration, login, profile and prescription flows",
		Version: version,
		Commands: []*cli.Command{
			RunCommand(logger),
			ListCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Error("command failed", zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
