package cli

import "github.com/agbru/mfmprime/internal/ui"

// CLIColorProvider feeds the current theme's colors to apperrors handlers.
type CLIColorProvider struct{}

func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }
