// Package app wires the mfmsweep command: configuration, mode dispatch
// (sweep, server, calibration, completion), lifecycle and version reporting.
package app

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"slices"
)

// Set at build time, e.g.:
//
//	go build -ldflags="-X github.com/agbru/mfmprime/internal/app.Version=v1.2.3 -X github.com/agbru/mfmprime/internal/app.Commit=abc123 -X github.com/agbru/mfmprime/internal/app.BuildDate=2025-01-01T00:00:00Z" ./cmd/mfmsweep
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// versionFlags are recognized anywhere on the command line, before flag
// parsing, so that "mfmsweep -server --version" prints the version.
var versionFlags = []string{"--version", "-version", "-V"}

// HasVersionFlag reports whether args contain a version flag.
func HasVersionFlag(args []string) bool {
	return slices.ContainsFunc(args, func(arg string) bool {
		return slices.Contains(versionFlags, arg)
	})
}

// VersionData is the version report of the binary.
type VersionData struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetVersionInfo returns the version report. Without -ldflags, a binary
// installed with "go install module@version" reports its module version
// instead of "dev".
func GetVersionInfo() VersionData {
	v := Version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return VersionData{
		Version:   v,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// PrintVersion writes the version report to out.
func PrintVersion(out io.Writer) {
	info := GetVersionInfo()
	fmt.Fprintf(out, "mfmsweep %s\n", info.Version)
	fmt.Fprintf(out, "  Commit:     %s\n", info.Commit)
	fmt.Fprintf(out, "  Built:      %s\n", info.BuildDate)
	fmt.Fprintf(out, "  Go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", info.OS, info.Arch)
}
