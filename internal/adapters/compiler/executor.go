// Package compiler runs the external CoffeeScript compiler as a subprocess.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/percolate/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Executor)(nil)

// Executor implements ports.Compiler by piping source through a command such as
// "coffee -c -s -p". The source is written to stdin and the JavaScript is read
// from stdout.
type Executor struct {
	command []string
	logger  ports.Logger
}

// NewExecutor creates a new Executor for the given command line.
func NewExecutor(command []string, logger ports.Logger) *Executor {
	return &Executor{
		command: append([]string(nil), command...),
		logger:  logger,
	}
}

// Command returns the command line the executor runs.
func (e *Executor) Command() []string {
	return append([]string(nil), e.command...)
}

// Compile runs the compiler on source and returns its standard output.
func (e *Executor) Compile(ctx context.Context, source []byte) ([]byte, error) {
	if len(e.command) == 0 {
		return nil, errors.Join(domain.ErrCompilationFailed, domain.ErrCompilerNotConfigured)
	}

	name := e.command[0]
	executable, err := exec.LookPath(name)
	if err != nil {
		return nil, errors.Join(
			domain.ErrCompilationFailed,
			zerr.With(zerr.Wrap(err, domain.ErrCompilerNotFound.Error()), "compiler", name),
		)
	}

	cmd := exec.CommandContext(ctx, executable, e.command[1:]...) //nolint:gosec // Command comes from trusted configuration
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(source)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, zerr.Wrap(ctxErr, "compilation cancelled")
		}
		return nil, errors.Join(domain.ErrCompilationFailed, rejection(name, err, stderr.String()))
	}

	e.logDiagnostics(stderr.String())

	return stdout.Bytes(), nil
}

// rejection builds the error for a failed compiler run with the compiler's
// diagnostics as the root cause.
func rejection(name string, runErr error, diagnostics string) error {
	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	detail := strings.TrimSpace(diagnostics)
	var cause error
	if detail == "" {
		cause = runErr
	} else {
		cause = zerr.New(detail)
	}

	err := zerr.Wrap(cause, "compiler rejected source")
	err = zerr.With(err, "compiler", name)
	return zerr.With(err, "exit_code", exitCode)
}

// logDiagnostics forwards stderr output of a successful run as warnings, one per line.
func (e *Executor) logDiagnostics(diagnostics string) {
	if e.logger == nil {
		return
	}
	for line := range strings.SplitSeq(diagnostics, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		e.logger.Warn(line)
	}
}
