package telemetry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/percolate/internal/adapters/fs"
	"go.trai.ch/percolate/internal/adapters/telemetry"
	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/percolate/internal/core/ports/mocks"
	"go.trai.ch/percolate/internal/engine/cache"
	"go.uber.org/mock/gomock"
)

func TestBridge_ReportsCacheCompilations(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockCompiler := mocks.NewMockCompiler(ctrl)

	var logged []string
	mockLogger.EXPECT().Info(gomock.Any()).Do(func(msg string) { logged = append(logged, msg) }).AnyTimes()
	mockCompiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Return([]byte("var x = 1;\n"), nil).Times(2)

	tp := telemetry.NewProvider(mockLogger)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "scripts"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "scripts", "app.coffee"), []byte("x = 1"), 0o600))

	c := cache.New(domain.DefaultSettings(root), mockCompiler, fs.NewHasher()).
		WithTracer(tp.Tracer(cache.TracerName))

	_, err := c.Resolve(context.Background(), "scripts/app.coffee")
	require.NoError(t, err)
	_, err = c.Inline(context.Background(), "x = 1")
	require.NoError(t, err)

	require.Len(t, logged, 1)
	assert.Regexp(t, `^compiled scripts/app\.coffee in \S+$`, logged[0])
}
