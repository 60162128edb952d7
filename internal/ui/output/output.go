// Package output creates termenv outputs with a color profile chosen from the
// environment and the kind of writer.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
)

// ColorProfile returns the profile for a writer. NO_COLOR or a writer that is not
// a terminal yields plain ASCII. Otherwise the profile is detected from the environment.
func ColorProfile(tty bool) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" || !tty {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// New creates a termenv.Output for w. The tty flag is usually the result of
// detector.IsTerminal on the same writer.
func New(w io.Writer, tty bool, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(ColorProfile(tty)),
		termenv.WithTTY(tty),
	)

	return termenv.NewOutput(w, opts...)
}
