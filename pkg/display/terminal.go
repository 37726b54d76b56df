package display

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
)

// Format is the output encoding
type Format int

const (
	// FormatText renders human-readable output, styled when color is on
	FormatText Format = iota
	// FormatJSON renders machine-readable JSON output
	FormatJSON
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseFormat parses a string into a Format value
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("unknown output format: %s", s)
	}
}

// IsTerminal reports whether f is an interactive terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ColorEnabled resolves a color mode (auto, always, never) for output
func ColorEnabled(mode string, output *os.File) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !IsTerminal(output) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

// ConfigureColor applies the decision process-wide to lipgloss and pterm
func ConfigureColor(enabled bool) {
	if enabled {
		pterm.EnableStyling()
		pterm.EnableColor()
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
	pterm.DisableColor()
	pterm.DisableStyling()
}
