package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/percolate/cmd/percolate/commands"
	"go.trai.ch/percolate/internal/app"
	"go.trai.ch/percolate/internal/build"
	"go.trai.ch/percolate/internal/core/domain"
)

type mockApp struct {
	opts    app.Options
	sources []string
	inline  string
	tmpl    string
	called  string
	err     error
}

func (m *mockApp) Resolve(_ context.Context, opts app.Options, sources []string) error {
	m.called, m.opts, m.sources = "resolve", opts, sources
	return m.err
}

func (m *mockApp) Inline(_ context.Context, opts app.Options, r io.Reader) error {
	m.called, m.opts = "inline", opts
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.inline = string(data)
	return m.err
}

func (m *mockApp) Render(_ context.Context, opts app.Options, templatePath string) error {
	m.called, m.opts, m.tmpl = "render", opts, templatePath
	return m.err
}

func (m *mockApp) Watch(_ context.Context, opts app.Options) error {
	m.called, m.opts = "watch", opts
	return m.err
}

func (m *mockApp) Clean(_ context.Context, opts app.Options) error {
	m.called, m.opts = "clean", opts
	return m.err
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Resolve(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m,
			"resolve", "scripts/a.coffee", "scripts/b.coffee",
			"--config", "site.yaml",
			"--source-root", "src",
			"--output-root", "public",
			"--delay", "2.5",
			"--log-format", "json",
		)
		require.NoError(t, err)

		assert.Equal(t, "resolve", m.called)
		assert.Equal(t, []string{"scripts/a.coffee", "scripts/b.coffee"}, m.sources)
		assert.Equal(t, "site.yaml", m.opts.ConfigPath)
		assert.Equal(t, "src", m.opts.SourceRoot)
		assert.Equal(t, "public", m.opts.OutputRoot)
		require.NotNil(t, m.opts.Delay)
		assert.Equal(t, 2500*time.Millisecond, *m.opts.Delay)
		assert.Equal(t, domain.LogFormatJSON, m.opts.LogFormat)
	})

	t.Run("leaves unset flags empty", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "resolve", "a.coffee")
		require.NoError(t, err)

		assert.Equal(t, app.Options{}, m.opts)
	})

	t.Run("rejects an invalid delay", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "resolve", "a.coffee", "--delay", "soon")
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrInvalidDelay.Error())
		assert.Empty(t, m.called)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		m := &mockApp{err: errors.New("simulated error")}
		_, err := execute(t, m, "resolve", "a.coffee")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("shows usage when no sources provided", func(t *testing.T) {
		m := &mockApp{}
		out, err := execute(t, m, "resolve")
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
		assert.Empty(t, m.called)
	})
}

func TestCommands_Inline(t *testing.T) {
	t.Run("reads stdin", func(t *testing.T) {
		m := &mockApp{}
		cli := commands.New(m)
		cli.SetOutput(io.Discard, io.Discard)
		cli.SetInput(bytes.NewBufferString("alert 'hi'"))
		cli.SetArgs([]string{"inline", "-"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "inline", m.called)
		assert.Equal(t, "alert 'hi'", m.inline)
	})

	t.Run("reads a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "snippet.coffee")
		require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o600))

		m := &mockApp{}
		_, err := execute(t, m, "inline", path)
		require.NoError(t, err)
		assert.Equal(t, "x = 1", m.inline)
	})

	t.Run("fails on a missing file", func(t *testing.T) {
		m := &mockApp{}
		_, err := execute(t, m, "inline", filepath.Join(t.TempDir(), "missing.coffee"))
		require.Error(t, err)
		assert.Empty(t, m.called)
	})
}

func TestCommands_Render(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "render", "page.html.tmpl")
	require.NoError(t, err)
	assert.Equal(t, "render", m.called)
	assert.Equal(t, "page.html.tmpl", m.tmpl)

	_, err = execute(t, &mockApp{}, "render")
	require.Error(t, err)
}

func TestCommands_WatchAndClean(t *testing.T) {
	m := &mockApp{}
	_, err := execute(t, m, "watch", "--source-root", "src")
	require.NoError(t, err)
	assert.Equal(t, "watch", m.called)
	assert.Equal(t, "src", m.opts.SourceRoot)

	m = &mockApp{}
	_, err = execute(t, m, "clean", "-c", "other.yaml")
	require.NoError(t, err)
	assert.Equal(t, "clean", m.called)
	assert.Equal(t, "other.yaml", m.opts.ConfigPath)

	_, err = execute(t, &mockApp{}, "clean", "extra")
	require.Error(t, err)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "percolate version "+build.Version)
}
