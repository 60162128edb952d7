package domain

import "go.trai.ch/zerr"

// Error kinds. Adapters join one of these into the returned chain so that
// callers can branch with errors.Is regardless of the concrete cause.
var (
	// ErrCompilationFailed is returned when the external compiler rejects the source.
	ErrCompilationFailed = zerr.New("coffeescript compilation failed")

	// ErrCacheIO is returned when the cache cannot read a source or write, remove or
	// list an artifact.
	ErrCacheIO = zerr.New("artifact cache i/o failed")
)

var (
	// ErrSourceNotFound is returned when a source file does not exist.
	ErrSourceNotFound = zerr.New("source file not found")

	// ErrSourceOutsideRoot is returned when a source path escapes the source root.
	ErrSourceOutsideRoot = zerr.New("source path is outside source root")

	// ErrSourceIsDirectory is returned when a source path names a directory.
	ErrSourceIsDirectory = zerr.New("source path is a directory")

	// ErrSourceReadFailed is returned when a source file cannot be read.
	ErrSourceReadFailed = zerr.New("failed to read source file")

	// ErrSourceStatFailed is returned when a source file cannot be stat'ed.
	ErrSourceStatFailed = zerr.New("failed to stat source file")

	// ErrArtifactDirCreateFailed is returned when the artifact directory cannot be created.
	ErrArtifactDirCreateFailed = zerr.New("failed to create artifact directory")

	// ErrArtifactWriteFailed is returned when a compiled artifact cannot be written.
	ErrArtifactWriteFailed = zerr.New("failed to write artifact")

	// ErrArtifactRemoveFailed is returned when a stale artifact cannot be removed.
	ErrArtifactRemoveFailed = zerr.New("failed to remove stale artifact")

	// ErrCacheCleanFailed is returned when the cache directory cannot be removed.
	ErrCacheCleanFailed = zerr.New("failed to clean artifact cache")

	// ErrCompilerNotFound is returned when the compiler executable cannot be located.
	ErrCompilerNotFound = zerr.New("compiler executable not found")

	// ErrCompilerNotConfigured is returned when the compiler command is empty.
	ErrCompilerNotConfigured = zerr.New("compiler command is empty")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidDelay is returned when the mtime delay is negative or malformed.
	ErrInvalidDelay = zerr.New("invalid mtime delay, expected a duration such as '10s' or a number of seconds")

	// ErrInvalidCacheDir is returned when the cache directory is absolute or escapes the output root.
	ErrInvalidCacheDir = zerr.New("cache directory must be relative to the output root")

	// ErrInvalidLogFormat is returned when the log format is not one of auto, pretty or json.
	ErrInvalidLogFormat = zerr.New("invalid log format, expected 'auto', 'pretty' or 'json'")

	// ErrTemplateReadFailed is returned when a template file cannot be read.
	ErrTemplateReadFailed = zerr.New("failed to read template")

	// ErrTemplateParseFailed is returned when a template cannot be parsed.
	ErrTemplateParseFailed = zerr.New("failed to parse template")

	// ErrTemplateRenderFailed is returned when template execution fails.
	ErrTemplateRenderFailed = zerr.New("failed to render template")

	// ErrNoSourcesSpecified is returned when resolve is invoked without sources.
	ErrNoSourcesSpecified = zerr.New("no sources specified")

	// ErrWatchFailed is returned when the source watcher cannot be started.
	ErrWatchFailed = zerr.New("failed to watch source root")
)
