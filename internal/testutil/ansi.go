// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"regexp"
	"strings"
)

// csiPattern matches CSI escape sequences (ESC [ params letter), which is
// all the ui package emits.
var csiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes terminal color sequences from s.
func StripAnsiCodes(s string) string {
	return csiPattern.ReplaceAllString(s, "")
}

// LinesWithPrefix returns, in order, the lines of s that start with prefix
// once color sequences and surrounding spaces are removed. Spinner frames
// separated by carriage returns count as separate lines.
func LinesWithPrefix(s, prefix string) []string {
	var lines []string
	for _, line := range strings.FieldsFunc(StripAnsiCodes(s), func(r rune) bool { return r == '\n' || r == '\r' }) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, prefix) {
			lines = append(lines, line)
		}
	}
	return lines
}
