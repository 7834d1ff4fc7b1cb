package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/agbru/mfmprime/internal/calibration"
	"github.com/agbru/mfmprime/internal/cli"
	"github.com/agbru/mfmprime/internal/config"
	"github.com/agbru/mfmprime/internal/correction"
	apperrors "github.com/agbru/mfmprime/internal/errors"
	"github.com/agbru/mfmprime/internal/logging"
	"github.com/agbru/mfmprime/internal/orchestration"
	"github.com/agbru/mfmprime/internal/primality"
	"github.com/agbru/mfmprime/internal/progress"
	"github.com/agbru/mfmprime/internal/report"
	"github.com/agbru/mfmprime/internal/server"
	"github.com/agbru/mfmprime/internal/ui"
	"github.com/agbru/mfmprime/pkg/models"
)

// progressLogThreshold is the progress step between two structured progress
// events of the same K.
const progressLogThreshold = 0.25

// Application represents the mfmsweep application instance.
// It encapsulates the configuration and provides methods to run
// the application in its various modes (sweep, server, calibration).
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
}

// New creates a new Application instance by parsing command-line arguments.
// It validates the configuration and returns an error if parsing or validation fails.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	// args[0] is program name, args[1:] are the actual arguments
	programName := "mfmsweep"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, primality.List())
	if err != nil {
		return nil, err
	}

	// A cached calibration profile only replaces the default DCT threshold.
	if cfgWithProfile, loaded := calibration.LoadCachedCalibration(cfg, cfg.CalibrationProfile); loaded {
		cfg = cfgWithProfile
	} else if cfg.DCTThreshold == correction.DefaultDCTThreshold {
		cfg.DCTThreshold = calibration.EstimateDCTThreshold(cfg.NMax)
	}

	return &Application{
		Config:    cfg,
		ErrWriter: errWriter,
	}, nil
}

// Run executes the application based on the configured mode.
// It dispatches to the appropriate handler (completion, server, calibration
// or sweep).
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	// Handle completion script generation
	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	// Initialize CLI theme (respects --no-color flag and NO_COLOR env var)
	ui.InitTheme(a.Config.NoColor)

	if a.Config.ServerMode {
		return a.runServer(ctx)
	}

	if a.Config.Calibrate {
		return calibration.RunCalibration(ctx, a.Config, out)
	}

	return a.runSweep(ctx, out)
}

// errWriter returns the configured error writer, defaulting to os.Stderr.
func (a *Application) errWriter() io.Writer {
	if a.ErrWriter == nil {
		return os.Stderr
	}
	return a.ErrWriter
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	choices := cli.CompletionChoices{
		Policies: correction.Policies(),
		Bases:    correction.Bases(),
		Engines:  correction.Engines(),
		Testers:  primality.List(),
		Backends: report.Backends(),
	}
	if err := cli.GenerateCompletion(out, a.Config.Completion, choices); err != nil {
		fmt.Fprintf(a.errWriter(), "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runServer serves the HTTP API until ctx is done or a shutdown signal
// arrives.
func (a *Application) runServer(ctx context.Context) int {
	events, err := logging.NewZerolog(a.errWriter(), a.Config.LogLevel, false)
	if err != nil {
		fmt.Fprintf(a.errWriter(), "Server error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	srv := server.NewServer(a.Config, server.WithEventLogger(events))
	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(a.errWriter(), "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runSweep orchestrates the execution of the CLI sweep command.
func (a *Application) runSweep(ctx context.Context, out io.Writer) int {
	ctx, cancels := SetupLifecycle(ctx, a.Config.Timeout)
	defer cancels.Cleanup()

	if !a.Config.JSONOutput && !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(a.Config, out)
	}

	logger, err := logging.NewZerolog(a.errWriter(), a.Config.LogLevel, true)
	if err != nil {
		fmt.Fprintf(a.errWriter(), "Configuration error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	deps, err := orchestration.NewDependencies(a.Config, logger)
	if err != nil {
		fmt.Fprintf(a.errWriter(), "Configuration error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	gauge := progress.NewMetricsObserver(a.Config.KValues)
	gauge.ResetMetrics()
	deps.Observers = []progress.Observer{
		progress.NewLoggingObserver(logger, progressLogThreshold, a.Config.KValues),
		gauge,
	}

	start := time.Now()
	records, err := orchestration.ExecuteSweep(ctx, a.Config, deps, out)
	if err != nil {
		return apperrors.HandleSweepError(err, time.Since(start), out, cli.CLIColorProvider{})
	}

	// Keep stdout a single JSON document in JSON mode.
	reportOut := out
	if a.Config.JSONOutput {
		if err := cli.PrintRecordsJSON(out, records); err != nil {
			fmt.Fprintf(a.errWriter(), "Error encoding JSON: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		reportOut = a.errWriter()
	} else if !a.Config.Quiet {
		orchestration.PrintSummary(records, out)
	}

	if err := a.publish(records, reportOut); err != nil {
		return apperrors.HandleSweepError(err, time.Since(start), a.errWriter(), cli.CLIColorProvider{})
	}
	return apperrors.ExitSuccess
}

// publish writes the CSV and, unless plots are disabled, both plots.
func (a *Application) publish(records []models.SweepRecord, out io.Writer) error {
	var plotter report.Plotter
	if !a.Config.NoPlots {
		p, err := report.NewPlotter(a.Config.PlotBackend)
		if err != nil {
			return err
		}
		plotter = p
	}
	paths := report.Paths{
		CSV:          a.Config.CSVPath,
		TimePlot:     a.Config.TimePlotPath,
		FractionPlot: a.Config.FractionPlotPath,
	}
	return report.Publish(records, paths, plotter, out)
}

// IsHelpError checks if the error is a help flag error (--help was used).
// This is useful for determining if the application should exit with success
// after displaying help text.
//
// Parameters:
//   - err: The error to check.
//
// Returns:
//   - bool: True if the error indicates help was requested.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
