package compiler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/percolate/internal/adapters/compiler"
	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/percolate/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestExecutor_Compile_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	// cat echoes stdin, which is enough to verify the stdin/stdout plumbing.
	executor := compiler.NewExecutor([]string{"cat"}, mockLogger)

	out, err := executor.Compile(context.Background(), []byte(`console.log "Hello, World!"`))

	require.NoError(t, err)
	assert.Equal(t, `console.log "Hello, World!"`, string(out))
}

func TestExecutor_Compile_WrapsOutput(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	script := `printf '(function() {\n  %s\n}).call(this);\n' "$(cat)"`
	executor := compiler.NewExecutor([]string{"sh", "-c", script}, mockLogger)

	out, err := executor.Compile(context.Background(), []byte(`console.log("Hello, World!");`))

	require.NoError(t, err)
	assert.Equal(t, "(function() {\n  console.log(\"Hello, World!\");\n}).call(this);\n", string(out))
}

func TestExecutor_Compile_LogsDiagnosticsAsWarnings(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	mockLogger.EXPECT().Warn("deprecated syntax").Times(1)
	mockLogger.EXPECT().Warn("second line").Times(1)

	executor := compiler.NewExecutor(
		[]string{"sh", "-c", "cat; printf 'deprecated syntax\\n\\nsecond line\\n' >&2"},
		mockLogger,
	)

	out, err := executor.Compile(context.Background(), []byte("x = 1"))

	require.NoError(t, err)
	assert.Equal(t, "x = 1", string(out))
}

func TestExecutor_Compile_Rejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	executor := compiler.NewExecutor(
		[]string{"sh", "-c", "echo '[stdin]:1:5: error: unexpected ->' >&2; exit 1"},
		mockLogger,
	)

	out, err := executor.Compile(context.Background(), []byte("a = ->->"))

	require.Error(t, err)
	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domain.ErrCompilationFailed))
	assert.False(t, errors.Is(err, domain.ErrCacheIO))
	assert.Contains(t, err.Error(), "unexpected ->")
	assert.Contains(t, err.Error(), "compiler rejected source")
}

func TestExecutor_Compile_RejectedWithoutDiagnostics(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	executor := compiler.NewExecutor([]string{"sh", "-c", "exit 3"}, mockLogger)

	_, err := executor.Compile(context.Background(), []byte("a = 1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCompilationFailed))
	assert.Contains(t, err.Error(), "exit status 3")
}

func TestExecutor_Compile_CompilerNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	executor := compiler.NewExecutor([]string{"percolate-no-such-compiler"}, mockLogger)

	_, err := executor.Compile(context.Background(), []byte("a = 1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCompilationFailed))
	assert.Contains(t, err.Error(), domain.ErrCompilerNotFound.Error())
}

func TestExecutor_Compile_EmptyCommand(t *testing.T) {
	executor := compiler.NewExecutor(nil, nil)

	_, err := executor.Compile(context.Background(), []byte("a = 1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCompilerNotConfigured))
}

func TestExecutor_Compile_ContextCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)

	executor := compiler.NewExecutor([]string{"sleep", "5"}, mockLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := executor.Compile(ctx, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, domain.ErrCompilationFailed))
}

func TestExecutor_Command_ReturnsCopy(t *testing.T) {
	cmd := []string{"coffee", "-c", "-s", "-p"}
	executor := compiler.NewExecutor(cmd, nil)

	got := executor.Command()
	got[0] = "mutated"

	assert.Equal(t, "coffee", executor.Command()[0])
	cmd[1] = "mutated"
	assert.Equal(t, "-c", executor.Command()[1])
}
