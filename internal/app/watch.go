package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/percolate/internal/adapters/watcher"
	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/percolate/internal/engine/cache"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const defaultDebounceWindow = watcher.DefaultDebounceWindow

// WithDebounceWindow changes how long the watch loop coalesces file events.
func (a *App) WithDebounceWindow(window time.Duration) *App {
	a.debounceWindow = window
	return a
}

// Watch compiles every source below the source root, then recompiles sources as
// they change until ctx is cancelled. Compilation errors are logged and do not
// stop the loop.
func (a *App) Watch(ctx context.Context, opts Options) error {
	settings, err := a.Settings(opts)
	if err != nil {
		return err
	}
	c := a.cacheFor(settings)
	skip := artifactSkip(settings)

	count := 0
	for source := range a.walker.WalkSources(settings.SourceRoot, skip...) {
		a.refresh(ctx, c, source)
		count++
	}
	a.logger.Info(fmt.Sprintf("watching %d sources in %s", count, settings.SourceRoot))

	if err := a.watcher.Start(ctx, settings.SourceRoot, skip); err != nil {
		return err
	}

	batches := make(chan []string)
	debouncer := watcher.NewDebouncer(a.debounceWindow, func(paths []string) {
		select {
		case batches <- paths:
		case <-ctx.Done():
		}
	})

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for event := range a.watcher.Events() {
			if !isSource(event.Path) || isSkipped(event.Path, skip) {
				continue
			}
			debouncer.Add(event.Path)
		}
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case paths := <-batches:
				a.apply(ctx, c, settings.SourceRoot, paths)
			}
		}
	})

	g.Go(func() error {
		<-ctx.Done()
		debouncer.Stop()
		return a.watcher.Stop()
	})

	return g.Wait()
}

// apply brings the cache in line with a batch of changed absolute paths.
func (a *App) apply(ctx context.Context, c *cache.Cache, root string, paths []string) {
	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		source := filepath.ToSlash(rel)

		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if err := c.Forget(source); err != nil {
				a.logger.Error(err)
				continue
			}
			a.logger.Info(fmt.Sprintf("forgot %s", source))
			continue
		}

		c.Invalidate(source)
		a.refresh(ctx, c, source)
	}
}

func (a *App) refresh(ctx context.Context, c *cache.Cache, source string) {
	before, known := c.Entry(source)

	artifact, err := c.Resolve(ctx, source)
	if err != nil {
		a.logger.Error(zerr.With(zerr.Wrap(err, "failed to compile source"), "source", source))
		return
	}

	if !known || before.ArtifactPath != artifact {
		a.logger.Info(fmt.Sprintf("%s -> %s", source, artifact))
	}
}

func isSource(path string) bool {
	return strings.HasSuffix(path, domain.SourceExt)
}

func isSkipped(path string, skip []string) bool {
	for _, dir := range skip {
		if strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// artifactSkip returns the artifact directory when it lies inside the source root,
// so that walks and watches never descend into it.
func artifactSkip(settings *domain.Settings) []string {
	root := settings.ArtifactRoot()
	rel, err := filepath.Rel(settings.SourceRoot, root)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{root}
}
