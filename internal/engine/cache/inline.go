package cache

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/percolate/internal/core/domain"
)

// Inline compiles a source snippet embedded in a page. Results are memoized by
// content digest for the lifetime of the cache and never touch the disk.
func (c *Cache) Inline(ctx context.Context, source string) (string, error) {
	digest := c.hasher.Digest([]byte(source))

	ctx, span := c.tracer.Start(ctx, domain.SpanInline,
		trace.WithAttributes(AttrDigest.String(digest), AttrBytesIn.Int(len(source))))
	defer span.End()

	c.mu.Lock()
	compiled, ok := c.inline[digest]
	c.mu.Unlock()
	if ok {
		span.SetAttributes(AttrOutcome.String(string(domain.OutcomeHit)))
		return compiled, nil
	}

	out, err := c.compiler.Compile(ctx, []byte(source))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	compiled = string(out)

	c.mu.Lock()
	c.inline[digest] = compiled
	c.mu.Unlock()

	span.SetAttributes(AttrOutcome.String(string(domain.OutcomeMiss)), AttrBytesOut.Int(len(out)))
	return compiled, nil
}
