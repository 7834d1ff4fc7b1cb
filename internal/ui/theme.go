// Package ui holds the terminal color themes shared by the console output of
// the sweep, the calibration table and the error handlers.
package ui

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

// ThemeEnvVar selects the theme ("dark", "light", "none") when colors are
// enabled.
const ThemeEnvVar = "MFM_THEME"

// Theme maps the roles used by the console output to ANSI escape codes.
type Theme struct {
	Name string
	// Value highlights K values and other sweep parameters.
	Value string
	// Detail marks secondary information such as names and environment.
	Detail string
	// Success marks the best result of a sweep.
	Success string
	// Warning marks timings and non-fatal issues.
	Warning string
	// Error marks failures.
	Error string
	// Info marks counts and ranges in the banner.
	Info      string
	Underline string
	Reset     string
}

// palette builds a 256-color theme from the color indexes of the value,
// detail, success, warning, error and info roles.
func palette(name string, value, detail, success, warning, errColor, info int) Theme {
	c := func(i int) string { return fmt.Sprintf("\033[38;5;%dm", i) }
	return Theme{
		Name:      name,
		Value:     c(value),
		Detail:    c(detail),
		Success:   c(success),
		Warning:   c(warning),
		Error:     c(errColor),
		Info:      c(info),
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = palette("dark", 39, 245, 82, 220, 196, 141)
	// LightTheme suits light terminal backgrounds.
	LightTheme = palette("light", 27, 240, 28, 130, 124, 54)
	// NoColorTheme emits no escape codes.
	NoColorTheme = Theme{Name: "none"}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	current atomic.Pointer[Theme]
)

func init() {
	SetCurrentTheme(DarkTheme)
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	return *current.Load()
}

// SetCurrentTheme replaces the active theme.
func SetCurrentTheme(t Theme) {
	current.Store(&t)
}

// SetTheme activates the theme registered under name, or the dark theme for
// unknown names.
func SetTheme(name string) {
	t, ok := themes[strings.ToLower(name)]
	if !ok {
		t = DarkTheme
	}
	SetCurrentTheme(t)
}

// InitTheme picks the theme at startup. Colors are disabled by noColor or by
// the presence of NO_COLOR (https://no-color.org/); otherwise MFM_THEME names
// the palette.
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetTheme(os.Getenv(ThemeEnvVar))
}

// ColorReset returns the code that clears all formatting.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed returns the error color.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the success color.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning color.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the value color.
func ColorBlue() string { return GetCurrentTheme().Value }

// ColorMagenta returns the info color.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan returns the detail color.
func ColorCyan() string { return GetCurrentTheme().Detail }

// ColorUnderline returns the underline code.
func ColorUnderline() string { return GetCurrentTheme().Underline }
