// Package cache implements the compiled-artifact cache.
//
// Every source path maps to at most one artifact on disk. The artifact name
// carries a fingerprint of the source content and modification time. The
// modification time itself is only re-read once the configured delay has
// elapsed since it was last observed.
package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/percolate/internal/core/ports"
	"go.trai.ch/zerr"
)

// TracerName is the instrumentation name used for cache spans.
const TracerName = "go.trai.ch/percolate/cache"

// Span attribute keys.
const (
	AttrSource   = attribute.Key(domain.SpanAttrSource)
	AttrOutcome  = attribute.Key(domain.SpanAttrOutcome)
	AttrArtifact = attribute.Key(domain.SpanAttrArtifact)
	AttrDigest   = attribute.Key(domain.SpanAttrDigest)
	AttrBytesIn  = attribute.Key(domain.SpanAttrBytesIn)
	AttrBytesOut = attribute.Key(domain.SpanAttrBytesOut)
)

var _ ports.ArtifactResolver = (*Cache)(nil)

// Cache maps sources to compiled artifacts and keeps the artifact directory
// at one file per source.
type Cache struct {
	sourceRoot string
	outputRoot string
	cacheDir   string
	delay      time.Duration

	compiler ports.Compiler
	hasher   ports.Hasher
	logger   ports.Logger
	tracer   trace.Tracer

	mu      sync.Mutex
	entries map[string]*domain.CacheEntry
	inline  map[string]string
}

// New creates a Cache for the given settings.
func New(settings *domain.Settings, compiler ports.Compiler, hasher ports.Hasher) *Cache {
	return &Cache{
		sourceRoot: settings.SourceRoot,
		outputRoot: settings.OutputRoot,
		cacheDir:   filepath.ToSlash(filepath.Clean(settings.CacheDir)),
		delay:      settings.MtimeDelay,
		compiler:   compiler,
		hasher:     hasher,
		tracer:     otel.Tracer(TracerName),
		entries:    make(map[string]*domain.CacheEntry),
		inline:     make(map[string]string),
	}
}

// WithLogger sets the logger used for non-fatal warnings.
func (c *Cache) WithLogger(logger ports.Logger) *Cache {
	c.logger = logger
	return c
}

// WithTracer replaces the tracer obtained from the global provider.
func (c *Cache) WithTracer(tracer trace.Tracer) *Cache {
	c.tracer = tracer
	return c
}

// Resolve returns the artifact path for sourcePath, relative to the output root.
//
// A source seen for the first time is compiled, unless an artifact with its
// current fingerprint is already on disk from an earlier run. A known source is returned as is
// while the delay since its last mtime check has not elapsed. After that the mtime
// is read again, and a changed mtime replaces the artifact with a fresh compilation.
func (c *Cache) Resolve(ctx context.Context, sourcePath string) (string, error) {
	ctx, span := c.tracer.Start(ctx, domain.SpanResolve,
		trace.WithAttributes(AttrSource.String(sourcePath)))
	defer span.End()

	artifact, outcome, err := c.resolve(ctx, sourcePath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(AttrOutcome.String(string(outcome)), AttrArtifact.String(artifact))
	return artifact, nil
}

func (c *Cache) resolve(ctx context.Context, sourcePath string) (string, domain.CacheOutcome, error) {
	key, abs, err := c.locate(sourcePath)
	if err != nil {
		return "", "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()

	entry, ok := c.entries[key]
	if !ok {
		mtime, err := statSource(key, abs)
		if err != nil {
			return "", "", err
		}

		next, reused, err := c.build(ctx, key, abs, mtime, now)
		if err != nil {
			return "", "", err
		}
		c.pruneOrphans(next)
		c.entries[key] = next
		if reused {
			return next.ArtifactPath, domain.OutcomeReused, nil
		}
		return next.ArtifactPath, domain.OutcomeMiss, nil
	}

	if now.Sub(entry.ObservedAt) < c.delay {
		return entry.ArtifactPath, domain.OutcomeHit, nil
	}

	mtime, err := statSource(key, abs)
	if err != nil {
		return "", "", err
	}

	if mtime.Equal(entry.Mtime) {
		entry.ObservedAt = now
		return entry.ArtifactPath, domain.OutcomeFresh, nil
	}

	next, _, err := c.build(ctx, key, abs, mtime, now)
	if err != nil {
		return "", "", err
	}

	if next.ArtifactPath != entry.ArtifactPath {
		if err := c.removeArtifact(entry.ArtifactPath); err != nil {
			// Keep the old entry so the directory still holds a single artifact.
			_ = c.removeArtifact(next.ArtifactPath)
			return "", "", err
		}
	}

	c.entries[key] = next
	return next.ArtifactPath, domain.OutcomeStale, nil
}

// build returns the entry for the source at mtime. An artifact already on disk
// under the same fingerprint, written by an earlier process, is reused as is;
// otherwise the source is compiled and its artifact written. Nothing is recorded
// in the entry table here; the caller commits the returned entry.
func (c *Cache) build(
	ctx context.Context,
	key, abs string,
	mtime, now time.Time,
) (*domain.CacheEntry, bool, error) {
	//nolint:gosec // Path is confined to the source root by locate
	source, err := os.ReadFile(abs)
	if err != nil {
		return nil, false, ioFailure(domain.ErrSourceReadFailed, err, "source", key)
	}

	fingerprint := c.hasher.Fingerprint(source, mtime)
	artifact := path.Join(c.cacheDir, path.Dir(key), domain.ArtifactName(path.Base(key), fingerprint))
	entry := &domain.CacheEntry{
		SourcePath:   key,
		Mtime:        mtime,
		ObservedAt:   now,
		Fingerprint:  fingerprint,
		ArtifactPath: artifact,
	}

	if info, err := os.Stat(c.artifactFile(artifact)); err == nil && info.Mode().IsRegular() {
		return entry, true, nil
	}

	compiled, err := c.compile(ctx, key, source)
	if err != nil {
		return nil, false, err
	}

	if err := c.writeArtifact(artifact, compiled); err != nil {
		return nil, false, err
	}

	return entry, false, nil
}

func (c *Cache) compile(ctx context.Context, key string, source []byte) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, domain.SpanCompile,
		trace.WithAttributes(AttrSource.String(key), AttrBytesIn.Int(len(source))))
	defer span.End()

	compiled, err := c.compiler.Compile(ctx, source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(AttrBytesOut.Int(len(compiled)))
	return compiled, nil
}

// writeArtifact writes data through a temporary file in the target directory so
// a crashed write never leaves a truncated artifact under its final name.
func (c *Cache) writeArtifact(artifact string, data []byte) error {
	target := c.artifactFile(artifact)
	dir := filepath.Dir(target)

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return ioFailure(domain.ErrArtifactDirCreateFailed, err, "dir", dir)
	}

	tmp, err := os.CreateTemp(dir, ".percolate-*.tmp")
	if err != nil {
		return ioFailure(domain.ErrArtifactWriteFailed, err, "artifact", artifact)
	}
	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmpName)
		return ioFailure(domain.ErrArtifactWriteFailed, err, "artifact", artifact)
	}

	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		_ = os.Remove(tmpName)
		return ioFailure(domain.ErrArtifactWriteFailed, err, "artifact", artifact)
	}

	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return ioFailure(domain.ErrArtifactWriteFailed, err, "artifact", artifact)
	}

	return nil
}

func (c *Cache) removeArtifact(artifact string) error {
	err := os.Remove(c.artifactFile(artifact))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioFailure(domain.ErrArtifactRemoveFailed, err, "artifact", artifact)
	}
	return nil
}

// pruneOrphans removes artifacts of the same source left behind by an earlier
// process, whose in-memory table did not survive. Artifacts owned by tracked
// sources are kept. Failures are logged only.
func (c *Cache) pruneOrphans(entry *domain.CacheEntry) {
	dir := filepath.Dir(c.artifactFile(entry.ArtifactPath))
	keep := path.Base(entry.ArtifactPath)
	pattern := artifactPattern(path.Base(entry.SourcePath))

	files, err := os.ReadDir(dir)
	if err != nil {
		c.warn(zerr.With(zerr.Wrap(err, "failed to list artifact directory"), "dir", dir))
		return
	}

	live := c.liveArtifacts()

	for _, f := range files {
		name := f.Name()
		if f.IsDir() || name == keep || !pattern.MatchString(name) {
			continue
		}
		if live[path.Join(path.Dir(entry.ArtifactPath), name)] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			c.warn(zerr.With(zerr.Wrap(err, "failed to prune orphaned artifact"), "artifact", name))
		}
	}
}

// liveArtifacts returns the artifact paths owned by tracked sources.
// The caller must hold mu.
func (c *Cache) liveArtifacts() map[string]bool {
	live := make(map[string]bool, len(c.entries))
	for _, e := range c.entries {
		live[e.ArtifactPath] = true
	}
	return live
}

// artifactPattern matches every artifact name a source base name can produce.
func artifactPattern(sourceBase string) *regexp.Regexp {
	stem := strings.TrimSuffix(domain.ArtifactName(sourceBase, ""), "-"+domain.ArtifactExt)
	return regexp.MustCompile(`^` + regexp.QuoteMeta(stem) + `-[0-9a-f]{12}` + regexp.QuoteMeta(domain.ArtifactExt) + `$`)
}

func (c *Cache) warn(err error) {
	if c.logger != nil {
		c.logger.Warn(err.Error())
	}
}

func (c *Cache) artifactFile(artifact string) string {
	return filepath.Join(c.outputRoot, filepath.FromSlash(artifact))
}

// locate turns a caller supplied source path into the table key (slash separated,
// relative to the source root) and the absolute file path.
func (c *Cache) locate(sourcePath string) (string, string, error) {
	rel := filepath.Clean(filepath.FromSlash(sourcePath))
	if filepath.IsAbs(rel) {
		r, err := filepath.Rel(c.sourceRoot, rel)
		if err != nil {
			return "", "", zerr.With(domain.ErrSourceOutsideRoot, "source", sourcePath)
		}
		rel = r
	}

	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", zerr.With(domain.ErrSourceOutsideRoot, "source", sourcePath)
	}

	return filepath.ToSlash(rel), filepath.Join(c.sourceRoot, rel), nil
}

func statSource(key, abs string) (time.Time, error) {
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, ioFailure(domain.ErrSourceNotFound, err, "source", key)
		}
		return time.Time{}, ioFailure(domain.ErrSourceStatFailed, err, "source", key)
	}
	if info.IsDir() {
		return time.Time{}, zerr.With(domain.ErrSourceIsDirectory, "source", key)
	}
	return info.ModTime(), nil
}

// ioFailure wraps err with the sentinel's message and tags it as a cache I/O failure.
func ioFailure(sentinel, err error, key, value string) error {
	return errors.Join(domain.ErrCacheIO, zerr.With(zerr.Wrap(err, sentinel.Error()), key, value))
}
