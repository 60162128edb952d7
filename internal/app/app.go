// Package app implements the application layer for percolate.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/percolate/internal/adapters/compiler"
	"go.trai.ch/percolate/internal/adapters/config"
	"go.trai.ch/percolate/internal/adapters/detector"
	"go.trai.ch/percolate/internal/adapters/fs"
	"go.trai.ch/percolate/internal/adapters/render"
	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/percolate/internal/core/ports"
	"go.trai.ch/percolate/internal/engine/cache"
	"go.trai.ch/zerr"
)

// CompilerFactory builds the compiler for a configured command line.
type CompilerFactory func(command []string, logger ports.Logger) ports.Compiler

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	hasher       ports.Hasher
	walker       *fs.Walker
	watcher      ports.Watcher
	provider     *sdktrace.TracerProvider

	newCompiler    CompilerFactory
	stdout         io.Writer
	debounceWindow time.Duration

	mu     sync.Mutex
	caches map[string]*cache.Cache
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	hasher ports.Hasher,
	walker *fs.Walker,
	watcher ports.Watcher,
	provider *sdktrace.TracerProvider,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		hasher:       hasher,
		walker:       walker,
		watcher:      watcher,
		provider:     provider,
		newCompiler: func(command []string, logger ports.Logger) ports.Compiler {
			return compiler.NewExecutor(command, logger)
		},
		stdout:         os.Stdout,
		debounceWindow: defaultDebounceWindow,
		caches:         make(map[string]*cache.Cache),
	}
}

// WithCompilerFactory replaces the subprocess compiler.
// This is primarily used for testing.
func (a *App) WithCompilerFactory(factory CompilerFactory) *App {
	a.newCompiler = factory
	return a
}

// WithStdout redirects command results, which go to os.Stdout by default.
func (a *App) WithStdout(w io.Writer) *App {
	a.stdout = w
	return a
}

// Options are the command line overrides applied on top of the configuration file.
type Options struct {
	// ConfigPath is the configuration file. Empty means percolate.yaml in the working directory.
	ConfigPath string
	// SourceRoot overrides source_root. Relative paths resolve against the working directory.
	SourceRoot string
	// OutputRoot overrides output_root. Relative paths resolve against the working directory.
	OutputRoot string
	// Delay overrides mtime_delay when set.
	Delay *time.Duration
	// LogFormat overrides log_format when non-empty.
	LogFormat domain.LogFormat
}

// Settings loads the configuration and applies opts.
func (a *App) Settings(opts Options) (*domain.Settings, error) {
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = domain.ConfigFileName
	}

	settings, err := a.configLoader.Load(configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	settings = settings.Clone()

	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to determine working directory")
	}

	if opts.SourceRoot != "" {
		settings.SourceRoot = config.ResolveRoot(cwd, opts.SourceRoot)
	}
	if opts.OutputRoot != "" {
		settings.OutputRoot = config.ResolveRoot(cwd, opts.OutputRoot)
	}
	if opts.Delay != nil {
		settings.MtimeDelay = *opts.Delay
	}
	if opts.LogFormat != "" {
		settings.LogFormat = opts.LogFormat
	}

	if err := config.Validate(settings); err != nil {
		return nil, err
	}

	a.applyLogFormat(settings.LogFormat)

	return settings, nil
}

type formatSetter interface {
	SetFormat(format domain.LogFormat)
}

func (a *App) applyLogFormat(configured domain.LogFormat) {
	setter, ok := a.logger.(formatSetter)
	if !ok {
		return
	}
	setter.SetFormat(detector.ResolveFormat(detector.DetectFormat(os.Stderr), configured))
}

// cacheFor returns the artifact cache for settings, building it and installing
// the tracer provider on first use. Calls with equal settings share one entry table.
func (a *App) cacheFor(settings *domain.Settings) *cache.Cache {
	key := cacheKey(settings)

	a.mu.Lock()
	defer a.mu.Unlock()

	if c, ok := a.caches[key]; ok {
		return c
	}

	c := cache.New(settings, a.newCompiler(settings.Compiler, a.logger), a.hasher).
		WithLogger(a.logger)

	if a.provider != nil {
		otel.SetTracerProvider(a.provider)
		c.WithTracer(a.provider.Tracer(cache.TracerName))
	}

	a.caches[key] = c
	return c
}

// cacheKey identifies the settings that shape a cache. The log format does not.
func cacheKey(settings *domain.Settings) string {
	s := *settings
	s.LogFormat = ""
	return fmt.Sprintf("%#v", s)
}

// Resolve compiles each source when needed and prints one artifact path per line.
// Source paths are relative to the source root or absolute.
func (a *App) Resolve(ctx context.Context, opts Options, sources []string) error {
	if len(sources) == 0 {
		return domain.ErrNoSourcesSpecified
	}

	settings, err := a.Settings(opts)
	if err != nil {
		return err
	}
	c := a.cacheFor(settings)

	for _, source := range sources {
		artifact, err := c.Resolve(ctx, source)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(a.stdout, artifact); err != nil {
			return zerr.Wrap(err, "failed to write output")
		}
	}
	return nil
}

// Inline compiles the CoffeeScript read from r and prints the JavaScript.
func (a *App) Inline(ctx context.Context, opts Options, r io.Reader) error {
	settings, err := a.Settings(opts)
	if err != nil {
		return err
	}

	source, err := io.ReadAll(r)
	if err != nil {
		return zerr.Wrap(err, "failed to read inline source")
	}

	compiled, err := a.cacheFor(settings).Inline(ctx, string(source))
	if err != nil {
		return err
	}

	if _, err := io.WriteString(a.stdout, compiled); err != nil {
		return zerr.Wrap(err, "failed to write output")
	}
	return nil
}

// Render executes the template at templatePath and writes the page to stdout.
func (a *App) Render(ctx context.Context, opts Options, templatePath string) error {
	settings, err := a.Settings(opts)
	if err != nil {
		return err
	}

	renderer := render.NewRenderer(a.cacheFor(settings), settings.StaticURL)
	return renderer.RenderFile(ctx, a.stdout, templatePath)
}

// Clean removes the artifact directory.
func (a *App) Clean(_ context.Context, opts Options) error {
	settings, err := a.Settings(opts)
	if err != nil {
		return err
	}

	dir := settings.ArtifactRoot()
	a.logger.Info(fmt.Sprintf("removing %s...", dir))
	if err := a.cacheFor(settings).Purge(); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("removed %s", dir))
	return nil
}
