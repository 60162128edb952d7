// Package detector picks the log encoding from the environment.
package detector

import (
	"io"
	"os"

	"go.trai.ch/percolate/internal/core/domain"
	"golang.org/x/term"
)

type fder interface {
	Fd() uintptr
}

// IsTerminal reports whether w is a file descriptor attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(fder)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // Fd fits in int on supported platforms
}

// IsCI reports whether the CI environment variable marks a CI run.
func IsCI() bool {
	ci := os.Getenv("CI")
	return ci == "true" || ci == "1"
}

// DetectFormat returns pretty output for an interactive terminal and JSON for
// anything else, including CI runs.
func DetectFormat(w io.Writer) domain.LogFormat {
	if !IsTerminal(w) || IsCI() {
		return domain.LogFormatJSON
	}
	return domain.LogFormatPretty
}

// ResolveFormat applies the configured format to the detected one.
// Auto and empty defer to detection.
func ResolveFormat(detected, configured domain.LogFormat) domain.LogFormat {
	switch configured {
	case domain.LogFormatPretty, domain.LogFormatJSON:
		return configured
	default:
		return detected
	}
}
