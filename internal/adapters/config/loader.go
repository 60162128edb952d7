// Package config provides the configuration loader for percolate.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/percolate/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration file at configPath and returns validated settings.
// A missing file yields the defaults rooted at the file's directory.
func (l *Loader) Load(configPath string) (*domain.Settings, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}
	configDir := filepath.Dir(absPath)

	settings := domain.DefaultSettings(configDir)

	var file Percolatefile
	found, err := readAndUnmarshalYAML(absPath, &file)
	if err != nil {
		return nil, zerr.With(err, "path", absPath)
	}
	if !found {
		return settings, nil
	}

	apply(settings, &file, configDir)

	if file.MtimeDelay != nil && *file.MtimeDelay == 0 {
		l.Logger.Warn("mtime_delay is 0, every resolve will stat its source")
	}

	if err := Validate(settings); err != nil {
		return nil, zerr.With(err, "path", absPath)
	}

	return settings, nil
}

func apply(settings *domain.Settings, file *Percolatefile, configDir string) {
	if file.SourceRoot != "" {
		settings.SourceRoot = resolveRoot(configDir, file.SourceRoot)
	}
	if file.OutputRoot != "" {
		settings.OutputRoot = resolveRoot(configDir, file.OutputRoot)
	}
	if file.CacheDir != "" {
		settings.CacheDir = file.CacheDir
	}
	if file.MtimeDelay != nil {
		settings.MtimeDelay = time.Duration(*file.MtimeDelay)
	}
	if file.Compiler != nil {
		settings.Compiler = []string(file.Compiler)
	}
	if file.StaticURL != "" {
		settings.StaticURL = file.StaticURL
	}
	if file.LogFormat != "" {
		settings.LogFormat = domain.LogFormat(file.LogFormat)
	}
}

// Validate checks settings produced by the loader or modified by command line overrides.
func Validate(settings *domain.Settings) error {
	if settings.MtimeDelay < 0 {
		return zerr.With(domain.ErrInvalidDelay, "value", settings.MtimeDelay.String())
	}

	if len(settings.Compiler) == 0 || settings.Compiler[0] == "" {
		return domain.ErrCompilerNotConfigured
	}

	dir := settings.CacheDir
	clean := filepath.Clean(dir)
	if dir == "" || filepath.IsAbs(dir) || clean == "." || clean == ".." ||
		strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return zerr.With(domain.ErrInvalidCacheDir, "cache_dir", dir)
	}

	switch settings.LogFormat {
	case domain.LogFormatAuto, domain.LogFormatPretty, domain.LogFormatJSON:
	default:
		return zerr.With(domain.ErrInvalidLogFormat, "log_format", string(settings.LogFormat))
	}

	return nil
}

// ResolveRoot resolves a root given on the command line against the working directory.
func ResolveRoot(cwd, configured string) string {
	return resolveRoot(cwd, configured)
}

func resolveRoot(baseDir, configuredRoot string) string {
	if configuredRoot == "" {
		return filepath.Clean(baseDir)
	}
	if filepath.IsAbs(configuredRoot) {
		return filepath.Clean(configuredRoot)
	}
	return filepath.Clean(filepath.Join(baseDir, configuredRoot))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
// It reports false without error when the file does not exist.
func readAndUnmarshalYAML[T any](configPath string, target *T) (bool, error) {
	// #nosec G304 -- configPath is chosen by the user
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return false, zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return true, nil
}
