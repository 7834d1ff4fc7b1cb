package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// envOverride copies MFM_<env> into dst unless one of flags was given on
// the command line. Unset, empty and unparsable values leave dst alone.
func envOverride[T any](set map[string]bool, env string, dst *T, parse func(string) (T, error), flags ...string) {
	for _, f := range flags {
		if set[f] {
			return
		}
	}
	raw := os.Getenv(EnvPrefix + env)
	if raw == "" {
		return
	}
	if v, err := parse(raw); err == nil {
		*dst = v
	}
}

func parseString(s string) (string, error) { return s, nil }

func parseUint64(s string) (uint64, error) { return strconv.ParseUint(s, 10, 64) }

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

// parseBool accepts true/1/yes and false/0/no, case-insensitively.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, strconv.ErrSyntax
}

func parseIntList(s string) (IntList, error) {
	var l IntList
	err := l.Set(s)
	return l, err
}

// setFlags returns the names of the flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// applyEnvOverrides gives MFM_* variables precedence over defaults but not
// over explicit flags. The variable name is the flag name upper-cased with
// dashes as underscores (MFM_N, MFM_K, MFM_DCT_THRESHOLD, MFM_TIMEOUT, ...);
// MFM_CSV, MFM_JSON and MFM_SERVER map to -csv, -json and -server.
func applyEnvOverrides(config *AppConfig, kValues *IntList, fs *flag.FlagSet) {
	set := setFlags(fs)

	envOverride(set, "N", &config.NMax, strconv.Atoi, "n")
	envOverride(set, "K", kValues, parseIntList, "k")
	envOverride(set, "SEED", &config.Seed, parseUint64, "seed")
	envOverride(set, "AMPLITUDE", &config.Amplitude, parseFloat, "amplitude")
	envOverride(set, "DCT_THRESHOLD", &config.DCTThreshold, strconv.Atoi, "dct-threshold")
	envOverride(set, "PRIME_ROUNDS", &config.PrimeRounds, strconv.Atoi, "prime-rounds")
	envOverride(set, "TIMEOUT", &config.Timeout, time.ParseDuration, "timeout")

	for _, o := range []struct {
		flag, env string
		dst       *string
	}{
		{"policy", "POLICY", &config.Policy},
		{"basis", "BASIS", &config.Basis},
		{"engine", "ENGINE", &config.Engine},
		{"prime-test", "PRIME_TEST", &config.PrimeTest},
		{"plot-backend", "PLOT_BACKEND", &config.PlotBackend},
		{"csv", "CSV", &config.CSVPath},
		{"time-plot", "TIME_PLOT", &config.TimePlotPath},
		{"fraction-plot", "FRACTION_PLOT", &config.FractionPlotPath},
		{"port", "PORT", &config.Port},
		{"log-level", "LOG_LEVEL", &config.LogLevel},
		{"calibration-profile", "CALIBRATION_PROFILE", &config.CalibrationProfile},
	} {
		envOverride(set, o.env, o.dst, parseString, o.flag)
	}

	for _, o := range []struct {
		env   string
		dst   *bool
		flags []string
	}{
		{"NO_PLOTS", &config.NoPlots, []string{"no-plots"}},
		{"PARALLEL", &config.Parallel, []string{"parallel"}},
		{"JSON", &config.JSONOutput, []string{"json"}},
		{"QUIET", &config.Quiet, []string{"quiet", "q"}},
		{"NO_COLOR", &config.NoColor, []string{"no-color"}},
		{"SERVER", &config.ServerMode, []string{"server"}},
		{"CALIBRATE", &config.Calibrate, []string{"calibrate"}},
	} {
		envOverride(set, o.env, o.dst, parseBool, o.flags...)
	}
}
