package domain

import (
	"path/filepath"
	"slices"
	"time"
)

// LogFormat selects the log output encoding.
type LogFormat string

const (
	// LogFormatAuto picks pretty output on a terminal and JSON otherwise.
	LogFormatAuto LogFormat = "auto"
	// LogFormatPretty forces human-readable output.
	LogFormatPretty LogFormat = "pretty"
	// LogFormatJSON forces JSON output.
	LogFormatJSON LogFormat = "json"
)

// Settings is the resolved configuration of the artifact cache.
// Roots are absolute once produced by the config loader.
type Settings struct {
	// SourceRoot is the directory source paths are resolved against.
	SourceRoot string
	// OutputRoot is the directory the cache directory lives in.
	OutputRoot string
	// CacheDir is the artifact directory relative to OutputRoot.
	CacheDir string
	// MtimeDelay is the debounce window between modification-time checks.
	MtimeDelay time.Duration
	// Compiler is the command line of the external compiler.
	Compiler []string
	// StaticURL is prepended to artifact paths by the rendering layer.
	StaticURL string
	// LogFormat selects the log encoding.
	LogFormat LogFormat
}

// DefaultSettings returns settings rooted at dir with every other field defaulted.
func DefaultSettings(dir string) *Settings {
	return &Settings{
		SourceRoot: dir,
		OutputRoot: dir,
		CacheDir:   DefaultCacheDir,
		MtimeDelay: DefaultMtimeDelay,
		Compiler:   DefaultCompiler(),
		LogFormat:  LogFormatAuto,
	}
}

// ArtifactRoot returns the absolute directory artifacts are written to.
func (s *Settings) ArtifactRoot() string {
	return filepath.Join(s.OutputRoot, s.CacheDir)
}

// Clone returns a deep copy of the settings.
func (s *Settings) Clone() *Settings {
	c := *s
	c.Compiler = slices.Clone(s.Compiler)
	return &c
}
