package cache_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/percolate/internal/engine/cache"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func TestCache_Inline_Memoizes(t *testing.T) {
	f := newFixture(t)
	f.compiler.EXPECT().Compile(gomock.Any(), []byte(testSource)).Return([]byte(testCompiled), nil).Times(1)
	f.compiler.EXPECT().Compile(gomock.Any(), []byte("alert 2")).Return([]byte("alert(2);\n"), nil).Times(1)

	ctx := context.Background()
	for range 3 {
		out, err := f.cache.Inline(ctx, testSource)
		require.NoError(t, err)
		assert.Equal(t, testCompiled, out)
	}

	out, err := f.cache.Inline(ctx, "alert 2")
	require.NoError(t, err)
	assert.Equal(t, "alert(2);\n", out)

	assert.Equal(t, 0, f.cache.Len(), "inline compilation does not create artifacts")
}

func TestCache_Inline_ErrorIsNotCached(t *testing.T) {
	f := newFixture(t)
	gomock.InOrder(
		f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).
			Return(nil, errors.Join(domain.ErrCompilationFailed, zerr.New("missing )"))),
		f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Return([]byte("ok"), nil),
	)

	ctx := context.Background()
	_, err := f.cache.Inline(ctx, "foo(")
	require.ErrorIs(t, err, domain.ErrCompilationFailed)

	out, err := f.cache.Inline(ctx, "foo(")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestCache_Spans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	f := newFixture(t)
	f.cache.WithTracer(provider.Tracer(cache.TracerName))
	f.writeSource(t, "scripts/test.coffee", testSource)

	gomock.InOrder(
		f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Return([]byte(testCompiled), nil),
		f.compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).
			Return(nil, errors.Join(domain.ErrCompilationFailed, zerr.New("bad"))),
	)

	ctx := context.Background()
	artifact, err := f.cache.Resolve(ctx, "scripts/test.coffee")
	require.NoError(t, err)
	_, err = f.cache.Resolve(ctx, "scripts/test.coffee")
	require.NoError(t, err)
	_, err = f.cache.Inline(ctx, "bad")
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 4)

	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{
		domain.SpanCompile,
		domain.SpanResolve,
		domain.SpanResolve,
		domain.SpanInline,
	}, names)

	attrs := func(s sdktrace.ReadOnlySpan) map[string]string {
		m := make(map[string]string)
		for _, kv := range s.Attributes() {
			m[string(kv.Key)] = kv.Value.Emit()
		}
		return m
	}

	compile := spans[0]
	first := spans[1]
	assert.Equal(t, first.SpanContext().SpanID(), compile.Parent().SpanID(), "compile is a child of resolve")
	assert.Equal(t, "miss", attrs(first)[string(cache.AttrOutcome)])
	assert.Equal(t, artifact, attrs(first)[string(cache.AttrArtifact)])
	assert.Equal(t, "hit", attrs(spans[2])[string(cache.AttrOutcome)])

	inline := spans[3]
	assert.Equal(t, codes.Error, inline.Status().Code)
	require.NotEmpty(t, inline.Events())
	assert.Equal(t, "exception", inline.Events()[0].Name)
}
