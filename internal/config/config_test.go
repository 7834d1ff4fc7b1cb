package config

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/agbru/mfmprime/internal/correction"
	apperrors "github.com/agbru/mfmprime/internal/errors"
)

var testers = []string{"big"}

func validConfig() AppConfig {
	return AppConfig{
		NMax:             100,
		KValues:          []int{5, 10},
		Policy:           "fixed",
		Amplitude:        2,
		Basis:            "fourier",
		Engine:           "auto",
		DCTThreshold:     64,
		PrimeTest:        "big",
		PrimeRounds:      20,
		CSVPath:          "out.csv",
		TimePlotPath:     "t.png",
		FractionPlotPath: "f.png",
		PlotBackend:      "gonum",
		Timeout:          time.Minute,
		LogLevel:         "warn",
	}
}

func TestParseConfig(t *testing.T) {
	t.Run("DefaultValues", func(t *testing.T) {
		t.Parallel()
		cfg, err := ParseConfig("mfmsweep", []string{}, io.Discard, testers)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if cfg.NMax != 5000 {
			t.Errorf("Expected default N 5000, got %d", cfg.NMax)
		}
		if !slices.Equal(cfg.KValues, []int{5, 10, 15, 20}) {
			t.Errorf("Expected default K values [5 10 15 20], got %v", cfg.KValues)
		}
		if cfg.Policy != "random" {
			t.Errorf("Expected default policy 'random', got %s", cfg.Policy)
		}
		if cfg.CSVPath != "MFM_Prime_Analysis.csv" || cfg.TimePlotPath != "Time_vs_K.png" || cfg.FractionPlotPath != "Prime_Fraction_vs_K.png" {
			t.Errorf("Unexpected default paths: %s %s %s", cfg.CSVPath, cfg.TimePlotPath, cfg.FractionPlotPath)
		}
		if cfg.Timeout != DefaultTimeout {
			t.Errorf("Expected default Timeout %v, got %v", DefaultTimeout, cfg.Timeout)
		}
		if cfg.Parallel {
			t.Error("Sweep must be sequential by default")
		}
	})

	t.Run("ValidFlags", func(t *testing.T) {
		t.Parallel()
		args := []string{
			"-n", "1000",
			"-k", "20,5,10,5",
			"-policy", "SEEDED",
			"-seed", "99",
			"-basis", "dct",
			"-engine", "transform",
			"-plot-backend", "gochart",
			"-timeout", "10s",
			"-parallel",
			"-q",
		}
		cfg, err := ParseConfig("mfmsweep", args, io.Discard, testers)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.NMax != 1000 {
			t.Errorf("Expected N 1000, got %d", cfg.NMax)
		}
		if !slices.Equal(cfg.KValues, []int{5, 10, 20}) {
			t.Errorf("Expected sorted distinct K values, got %v", cfg.KValues)
		}
		if cfg.Policy != "seeded" || cfg.Seed != 99 {
			t.Errorf("Expected seeded policy with seed 99, got %s/%d", cfg.Policy, cfg.Seed)
		}
		if cfg.Basis != "dct" || cfg.Engine != "transform" || cfg.PlotBackend != "gochart" {
			t.Errorf("Unexpected basis/engine/backend: %s %s %s", cfg.Basis, cfg.Engine, cfg.PlotBackend)
		}
		if cfg.Timeout != 10*time.Second || !cfg.Parallel || !cfg.Quiet {
			t.Errorf("Unexpected timeout/parallel/quiet: %v %v %v", cfg.Timeout, cfg.Parallel, cfg.Quiet)
		}
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		env := map[string]string{
			"MFM_N":         "300",
			"MFM_K":         "7,3",
			"MFM_POLICY":    "fixed",
			"MFM_AMPLITUDE": "1.5",
			"MFM_TIMEOUT":   "2m",
			"MFM_NO_PLOTS":  "yes",
			"MFM_CSV":       "env.csv",
			"MFM_LOG_LEVEL": "debug",
		}
		for k, v := range env {
			t.Setenv(k, v)
		}

		cfg, err := ParseConfig("mfmsweep", []string{}, io.Discard, testers)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.NMax != 300 || !slices.Equal(cfg.KValues, []int{3, 7}) {
			t.Errorf("Expected N=300 K=[3 7], got N=%d K=%v", cfg.NMax, cfg.KValues)
		}
		if cfg.Policy != "fixed" || cfg.Amplitude != 1.5 {
			t.Errorf("Expected fixed policy, amplitude 1.5, got %s %v", cfg.Policy, cfg.Amplitude)
		}
		if cfg.Timeout != 2*time.Minute || !cfg.NoPlots || cfg.CSVPath != "env.csv" || cfg.LogLevel != "debug" {
			t.Errorf("Env overrides not applied: %+v", cfg)
		}
	})

	t.Run("FlagsBeatEnv", func(t *testing.T) {
		t.Setenv("MFM_N", "300")
		t.Setenv("MFM_K", "1,2")
		cfg, err := ParseConfig("mfmsweep", []string{"-n", "400", "-k", "9"}, io.Discard, testers)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.NMax != 400 || !slices.Equal(cfg.KValues, []int{9}) {
			t.Errorf("Expected flag values to win, got N=%d K=%v", cfg.NMax, cfg.KValues)
		}
	})

	t.Run("InvalidEnvIgnored", func(t *testing.T) {
		t.Setenv("MFM_N", "lots")
		t.Setenv("MFM_K", "5,x")
		cfg, err := ParseConfig("mfmsweep", []string{}, io.Discard, testers)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if cfg.NMax != DefaultNMax || !slices.Equal(cfg.KValues, []int{5, 10, 15, 20}) {
			t.Errorf("Invalid env values should be ignored, got N=%d K=%v", cfg.NMax, cfg.KValues)
		}
	})

	t.Run("InvalidFlag", func(t *testing.T) {
		t.Parallel()
		if _, err := ParseConfig("mfmsweep", []string{"-k", "five"}, io.Discard, testers); err == nil {
			t.Error("Expected a parse error for a non-numeric K")
		}
	})

	t.Run("Help", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		_, err := ParseConfig("mfmsweep", []string{"-h"}, &buf, testers)
		if !errors.Is(err, flag.ErrHelp) {
			t.Fatalf("Expected flag.ErrHelp, got %v", err)
		}
		if !strings.Contains(buf.String(), "Usage: mfmsweep") || !strings.Contains(buf.String(), "MFM_") {
			t.Errorf("Unexpected usage text: %s", buf.String())
		}
	})

	t.Run("ValidationFailure", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		_, err := ParseConfig("mfmsweep", []string{"-k", "6000"}, &buf, testers)
		var cfgErr apperrors.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("Expected a wrapped ConfigError, got %v", err)
		}
		if !strings.Contains(buf.String(), "Configuration error: K=6000 out of range [1, 5000]") {
			t.Errorf("Unexpected error output: %s", buf.String())
		}
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name        string
		mutate      func(*AppConfig)
		expectError bool
	}{
		{"Valid", func(*AppConfig) {}, false},
		{"NTooSmall", func(c *AppConfig) { c.NMax = 1 }, true},
		{"NoK", func(c *AppConfig) { c.KValues = nil }, true},
		{"KZero", func(c *AppConfig) { c.KValues = []int{0, 5} }, true},
		{"KEqualsN", func(c *AppConfig) { c.KValues = []int{100} }, false},
		{"KAboveN", func(c *AppConfig) { c.KValues = []int{101} }, true},
		{"ZeroTimeout", func(c *AppConfig) { c.Timeout = 0 }, true},
		{"NegativeAmplitude", func(c *AppConfig) { c.Amplitude = -1 }, true},
		{"ZeroAmplitude", func(c *AppConfig) { c.Amplitude = 0 }, false},
		{"NegativeThreshold", func(c *AppConfig) { c.DCTThreshold = -1 }, true},
		{"NegativeRounds", func(c *AppConfig) { c.PrimeRounds = -1 }, true},
		{"UnknownPolicy", func(c *AppConfig) { c.Policy = "exact" }, true},
		{"UnknownBasis", func(c *AppConfig) { c.Basis = "haar" }, true},
		{"UnknownEngine", func(c *AppConfig) { c.Engine = "gpu" }, true},
		{"TransformNeedsDCT", func(c *AppConfig) { c.Engine = "transform" }, true},
		{"TransformWithDCT", func(c *AppConfig) { c.Engine = "transform"; c.Basis = "dct" }, false},
		{"UnknownTester", func(c *AppConfig) { c.PrimeTest = "gmp" }, true},
		{"UnknownBackend", func(c *AppConfig) { c.PlotBackend = "svg" }, true},
		{"UnknownLogLevel", func(c *AppConfig) { c.LogLevel = "chatty" }, true},
		{"EmptyCSV", func(c *AppConfig) { c.CSVPath = "" }, true},
		{"EmptyPlotPath", func(c *AppConfig) { c.TimePlotPath = "" }, true},
		{"EmptyPlotPathNoPlots", func(c *AppConfig) { c.TimePlotPath = ""; c.NoPlots = true }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate(testers)
			if tc.expectError && err == nil {
				t.Error("Expected validation error but got nil")
			}
			if !tc.expectError && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
			if err != nil {
				var cfgErr apperrors.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("Expected ConfigError, got %T", err)
				}
			}
		})
	}
}

func TestCorrectionOptions(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.Basis, cfg.Engine, cfg.DCTThreshold = "dct", "direct", 12
	want := correction.Options{Basis: correction.BasisDCT, Engine: correction.EngineDirect, DCTThreshold: 12}
	if diff := cmp.Diff(want, cfg.CorrectionOptions()); diff != "" {
		t.Errorf("CorrectionOptions() mismatch (-want +got):\n%s", diff)
	}
}

// TestParseConfigDefaultsReproduceReference checks every field a bare
// invocation produces.
func TestParseConfigDefaultsReproduceReference(t *testing.T) {
	for _, key := range []string{"N", "K", "POLICY", "CSV", "TIMEOUT", "LOG_LEVEL", "PLOT_BACKEND"} {
		t.Setenv(EnvPrefix+key, "")
	}
	cfg, err := ParseConfig("mfmsweep", nil, io.Discard, testers)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	want := AppConfig{
		NMax:             5000,
		KValues:          []int{5, 10, 15, 20},
		Policy:           "random",
		Seed:             1,
		Amplitude:        2,
		Basis:            "fourier",
		Engine:           "auto",
		DCTThreshold:     correction.DefaultDCTThreshold,
		PrimeTest:        "big",
		PrimeRounds:      20,
		CSVPath:          "MFM_Prime_Analysis.csv",
		TimePlotPath:     "Time_vs_K.png",
		FractionPlotPath: "Prime_Fraction_vs_K.png",
		PlotBackend:      "gonum",
		Timeout:          DefaultTimeout,
		LogLevel:         "warn",
		Port:             DefaultPort,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestIntList(t *testing.T) {
	t.Parallel()
	var l IntList
	if err := l.Set(" 15, 5 ,,10,5"); err != nil {
		t.Fatal(err)
	}
	if l.String() != "15,5,10,5" {
		t.Errorf("String() = %q", l.String())
	}
	if got := l.Normalized(); !slices.Equal(got, []int{5, 10, 15}) {
		t.Errorf("Normalized() = %v", got)
	}
	if err := l.Set("1,a"); err == nil {
		t.Error("expected error for non-numeric entry")
	}
}
