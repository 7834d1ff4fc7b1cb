// Package config provides the configuration management for the mfmsweep
// application. It defines the data structure for the configuration, handles the
// parsing of command-line arguments and environment variables, and performs
// validation on the configuration values.
package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/agbru/mfmprime/internal/correction"
	apperrors "github.com/agbru/mfmprime/internal/errors"
	"github.com/agbru/mfmprime/internal/logging"
	"github.com/agbru/mfmprime/internal/primality"
	"github.com/agbru/mfmprime/internal/report"
)

const (
	// EnvPrefix is the prefix for all environment variables used by mfmsweep.
	// Environment variables provide an alternative to CLI flags for configuration,
	// following the 12-Factor App methodology.
	EnvPrefix = "MFM_"
)

// Default configuration values. Running without arguments reproduces the
// reference experiment.
const (
	// DefaultNMax is the default length of the base sequence.
	DefaultNMax = 5000
	// DefaultKValues is the default sweep set.
	DefaultKValues = "5,10,15,20"
	// DefaultPolicy is the default coefficient policy.
	DefaultPolicy = correction.PolicyRandom
	// DefaultBasis is the default cosine basis.
	DefaultBasis = string(correction.BasisFourier)
	// DefaultEngine is the default correction engine.
	DefaultEngine = string(correction.EngineAuto)
	// DefaultTimeout is the default limit for the whole sweep.
	DefaultTimeout = 30 * time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultLogLevel keeps structured logs out of the way of the summary lines.
	DefaultLogLevel = "warn"
	// DefaultCSVPath is the default results table.
	DefaultCSVPath = "MFM_Prime_Analysis.csv"
	// DefaultTimePlotPath is the default Time_Sec vs K plot.
	DefaultTimePlotPath = "Time_vs_K.png"
	// DefaultFractionPlotPath is the default Prime_Fraction vs K plot.
	DefaultFractionPlotPath = "Prime_Fraction_vs_K.png"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// NMax is the length of the base sequence (n = 1..NMax).
	NMax int
	// KValues is the sweep set, sorted ascending without duplicates.
	KValues []int
	// Policy names the coefficient policy ("random", "seeded", "fixed").
	Policy string
	// Seed feeds the seeded policy.
	Seed uint64
	// Amplitude bounds the coefficients.
	Amplitude float64
	// Basis names the cosine basis ("fourier", "dct").
	Basis string
	// Engine names the correction engine ("auto", "direct", "transform").
	Engine string
	// DCTThreshold is the K from which the auto engine uses the transform.
	DCTThreshold int
	// PrimeTest names the primality tester ("big", or "gmp" with -tags gmp).
	PrimeTest string
	// PrimeRounds is the number of Miller-Rabin rounds.
	PrimeRounds int
	// CSVPath is the results table destination.
	CSVPath string
	// TimePlotPath is the Time_Sec vs K plot destination.
	TimePlotPath string
	// FractionPlotPath is the Prime_Fraction vs K plot destination.
	FractionPlotPath string
	// PlotBackend names the plot renderer ("gonum", "gochart").
	PlotBackend string
	// NoPlots skips plot rendering.
	NoPlots bool
	// Parallel runs the K iterations concurrently.
	Parallel bool
	// Timeout bounds the whole sweep.
	Timeout time.Duration
	// JSONOutput prints the records as JSON instead of summary lines.
	JSONOutput bool
	// Quiet suppresses the banner and progress display.
	Quiet bool
	// NoColor disables all color output in the CLI.
	// Also respects the NO_COLOR environment variable.
	NoColor bool
	// LogLevel is the zerolog level of structured logs.
	LogLevel string
	// ServerMode starts the HTTP API instead of a sweep.
	ServerMode bool
	// Port specifies the port to listen on in server mode.
	Port string
	// Calibrate runs the engine calibration instead of a sweep.
	Calibrate bool
	// CalibrationProfile is the path to a calibration profile file.
	// If empty, uses the default path (~/.mfm_calibration.json).
	CalibrationProfile string
	// Completion, if set, generates shell completion script for the specified shell.
	Completion string
}

// CorrectionOptions converts the configuration into correction.Options.
func (c AppConfig) CorrectionOptions() correction.Options {
	return correction.Options{
		Basis:        correction.Basis(c.Basis),
		Engine:       correction.Engine(c.Engine),
		DCTThreshold: c.DCTThreshold,
	}
}

// Validate checks the semantic consistency of the configuration parameters.
//
// Parameters:
//   - availableTesters: The registered primality testers (build-tag dependent).
//
// Returns:
//   - error: A ConfigError if the configuration is invalid, nil otherwise.
func (c AppConfig) Validate(availableTesters []string) error {
	if c.NMax < 2 {
		return apperrors.NewConfigError("sequence length must be at least 2: %d", c.NMax)
	}
	if len(c.KValues) == 0 {
		return apperrors.NewConfigError("at least one K value is required")
	}
	for _, k := range c.KValues {
		if k < 1 || k > c.NMax {
			return apperrors.NewConfigError("K=%d out of range [1, %d]", k, c.NMax)
		}
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if c.Amplitude < 0 || math.IsNaN(c.Amplitude) || math.IsInf(c.Amplitude, 0) {
		return apperrors.NewConfigError("amplitude must be a finite non-negative number: %v", c.Amplitude)
	}
	if c.DCTThreshold < 0 {
		return apperrors.NewConfigError("DCT threshold cannot be negative: %d", c.DCTThreshold)
	}
	if c.PrimeRounds < 0 {
		return apperrors.NewConfigError("prime rounds cannot be negative: %d", c.PrimeRounds)
	}
	if err := oneOf("policy", c.Policy, correction.Policies()); err != nil {
		return err
	}
	if err := oneOf("basis", c.Basis, correction.Bases()); err != nil {
		return err
	}
	if err := oneOf("engine", c.Engine, correction.Engines()); err != nil {
		return err
	}
	if c.Engine == string(correction.EngineTransform) && c.Basis != string(correction.BasisDCT) {
		return apperrors.NewConfigError("engine 'transform' requires basis 'dct'")
	}
	if err := oneOf("prime test", c.PrimeTest, availableTesters); err != nil {
		return err
	}
	if err := oneOf("plot backend", c.PlotBackend, report.Backends()); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if c.CSVPath == "" {
		return apperrors.NewConfigError("CSV path cannot be empty")
	}
	if !c.NoPlots && (c.TimePlotPath == "" || c.FractionPlotPath == "") {
		return apperrors.NewConfigError("plot paths cannot be empty (use -no-plots to skip plots)")
	}
	return nil
}

func oneOf(field, value string, valid []string) error {
	if slices.Contains(valid, value) {
		return nil
	}
	return apperrors.NewConfigError("unrecognized %s: '%s'. Valid values are: [%s]", field, value, strings.Join(valid, ", "))
}

// ParseConfig parses the command-line arguments and populates an AppConfig
// struct. It defines all the command-line flags, sets their default values,
// applies MFM_* environment overrides and validates the result.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage information are printed.
//   - availableTesters: The registered primality testers, for validation.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: flag.ErrHelp, a parse error, or a wrapped ConfigError.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableTesters []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{}
	kValues := IntList{}
	_ = kValues.Set(DefaultKValues)

	fs.IntVar(&config.NMax, "n", DefaultNMax, "Length N_MAX of the base sequence.")
	fs.Var(&kValues, "k", "Comma-separated K values to sweep (number of correction coefficients).")
	fs.StringVar(&config.Policy, "policy", DefaultPolicy, fmt.Sprintf("Coefficient policy, one of [%s].", strings.Join(correction.Policies(), ", ")))
	fs.Uint64Var(&config.Seed, "seed", 1, "Seed of the 'seeded' coefficient policy.")
	fs.Float64Var(&config.Amplitude, "amplitude", correction.DefaultAmplitude, "Coefficients are drawn from [-amplitude, amplitude].")
	fs.StringVar(&config.Basis, "basis", DefaultBasis, "Cosine basis: 'fourier' or 'dct'.")
	fs.StringVar(&config.Engine, "engine", DefaultEngine, "Correction engine: 'auto', 'direct' or 'transform' (dct basis only).")
	fs.IntVar(&config.DCTThreshold, "dct-threshold", correction.DefaultDCTThreshold, "K from which the auto engine uses the DCT transform.")
	fs.StringVar(&config.PrimeTest, "prime-test", primality.DefaultTester, fmt.Sprintf("Primality tester, one of [%s].", strings.Join(availableTesters, ", ")))
	fs.IntVar(&config.PrimeRounds, "prime-rounds", primality.DefaultRounds, "Miller-Rabin rounds of the primality test.")
	fs.StringVar(&config.CSVPath, "csv", DefaultCSVPath, "Output path of the results table.")
	fs.StringVar(&config.TimePlotPath, "time-plot", DefaultTimePlotPath, "Output path of the Time_Sec vs K plot.")
	fs.StringVar(&config.FractionPlotPath, "fraction-plot", DefaultFractionPlotPath, "Output path of the Prime_Fraction vs K plot.")
	fs.StringVar(&config.PlotBackend, "plot-backend", report.BackendGonum, fmt.Sprintf("Plot renderer, one of [%s].", strings.Join(report.Backends(), ", ")))
	fs.BoolVar(&config.NoPlots, "no-plots", false, "Skip plot rendering.")
	fs.BoolVar(&config.Parallel, "parallel", false, "Run the K iterations concurrently (timings become noisier).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time for the whole sweep.")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - no banner or progress display.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Structured log level: debug, info, warn, error, disabled.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Measure the direct/transform engine crossover and save it to the profile.")
	fs.StringVar(&config.CalibrationProfile, "calibration-profile", "", "Path to calibration profile file (default: ~/.mfm_calibration.json).")
	fs.StringVar(&config.Completion, "completion", "", "Generate shell completion script (bash, zsh, fish).")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}

	// Apply environment variable overrides for flags not explicitly set
	applyEnvOverrides(&config, &kValues, fs)

	config.KValues = kValues.Normalized()
	config.Policy = strings.ToLower(config.Policy)
	config.Basis = strings.ToLower(config.Basis)
	config.Engine = strings.ToLower(config.Engine)
	config.PrimeTest = strings.ToLower(config.PrimeTest)
	config.PlotBackend = strings.ToLower(config.PlotBackend)

	if err := config.Validate(availableTesters); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// setCustomUsage prints a short synopsis before the flag defaults.
func setCustomUsage(fs *flag.FlagSet) {
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "Usage: %s [flags]\n\n", fs.Name())
		fmt.Fprintf(out, "Sweeps K, perturbs floor(F(n)/n^1.5)+2 with K cosine terms and counts primes.\n")
		fmt.Fprintf(out, "Every flag can also be set with an %s* environment variable (e.g. %sN=10000).\n\n", EnvPrefix, EnvPrefix)
		fs.PrintDefaults()
	}
}
