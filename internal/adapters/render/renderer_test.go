package render_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/percolate/internal/adapters/render"
	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/percolate/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

const page = `<html>
<head>
<script src="{{ coffeescript "scripts/test.coffee" }}"></script>
</head>
<body>
<script>{{ inlinecoffeescript "console.log \"Hello, World!\"" }}</script>
</body>
</html>
`

func TestRenderer_Render(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockArtifactResolver(ctrl)

	resolver.EXPECT().Resolve(gomock.Any(), "scripts/test.coffee").
		Return("COFFEESCRIPT_CACHE/scripts/test-0123456789ab.js", nil)
	resolver.EXPECT().Inline(gomock.Any(), `console.log "Hello, World!"`).
		Return("(function() {\n  console.log(\"Hello, World!\");\n}).call(this);\n", nil)

	r := render.NewRenderer(resolver, "/static/")

	var buf bytes.Buffer
	require.NoError(t, r.Render(context.Background(), &buf, "page", page))

	g := goldie.New(t)
	g.Assert(t, "page", buf.Bytes())
}

func TestRenderer_RenderFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	resolver := mocks.NewMockArtifactResolver(ctrl)
	resolver.EXPECT().Resolve(gomock.Any(), "app.coffee").Return("COFFEESCRIPT_CACHE/app-0123456789ab.js", nil)

	path := filepath.Join(t.TempDir(), "index.tmpl")
	require.NoError(t, os.WriteFile(path, []byte(`{{ coffeescript "app.coffee" }}`), 0o600))

	var buf bytes.Buffer
	require.NoError(t, render.NewRenderer(resolver, "").RenderFile(context.Background(), &buf, path))
	assert.Equal(t, "COFFEESCRIPT_CACHE/app-0123456789ab.js", buf.String())
}

func TestRenderer_URL(t *testing.T) {
	tests := []struct {
		staticURL string
		want      string
	}{
		{"", "COFFEESCRIPT_CACHE/a-0123456789ab.js"},
		{"/static/", "/static/COFFEESCRIPT_CACHE/a-0123456789ab.js"},
		{"/static", "/static/COFFEESCRIPT_CACHE/a-0123456789ab.js"},
		{"https://cdn.example.com/", "https://cdn.example.com/COFFEESCRIPT_CACHE/a-0123456789ab.js"},
	}

	for _, tt := range tests {
		t.Run(tt.staticURL, func(t *testing.T) {
			r := render.NewRenderer(nil, tt.staticURL)
			assert.Equal(t, tt.want, r.URL("COFFEESCRIPT_CACHE/a-0123456789ab.js"))
		})
	}
}

func TestRenderer_Errors(t *testing.T) {
	rejection := errors.Join(domain.ErrCompilationFailed, zerr.New("unexpected indentation"))

	t.Run("parse error", func(t *testing.T) {
		r := render.NewRenderer(mocks.NewMockArtifactResolver(gomock.NewController(t)), "")
		err := r.Render(context.Background(), &bytes.Buffer{}, "bad", `{{ coffeescript "x.coffee" `)
		require.ErrorContains(t, err, domain.ErrTemplateParseFailed.Error())
	})

	t.Run("unknown function", func(t *testing.T) {
		r := render.NewRenderer(mocks.NewMockArtifactResolver(gomock.NewController(t)), "")
		err := r.Render(context.Background(), &bytes.Buffer{}, "bad", `{{ sass "x.scss" }}`)
		require.ErrorContains(t, err, domain.ErrTemplateParseFailed.Error())
	})

	t.Run("resolve error", func(t *testing.T) {
		resolver := mocks.NewMockArtifactResolver(gomock.NewController(t))
		resolver.EXPECT().Resolve(gomock.Any(), "x.coffee").Return("", rejection)

		err := render.NewRenderer(resolver, "").
			Render(context.Background(), &bytes.Buffer{}, "page", `{{ coffeescript "x.coffee" }}`)
		require.ErrorContains(t, err, domain.ErrTemplateRenderFailed.Error())
		require.ErrorIs(t, err, domain.ErrCompilationFailed)
	})

	t.Run("inline error", func(t *testing.T) {
		resolver := mocks.NewMockArtifactResolver(gomock.NewController(t))
		resolver.EXPECT().Inline(gomock.Any(), "class").Return("", rejection)

		err := render.NewRenderer(resolver, "").
			Render(context.Background(), &bytes.Buffer{}, "page", `{{ inlinecoffeescript "class" }}`)
		require.ErrorIs(t, err, domain.ErrCompilationFailed)
	})

	t.Run("missing file", func(t *testing.T) {
		r := render.NewRenderer(nil, "")
		err := r.RenderFile(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), "none.tmpl"))
		require.ErrorContains(t, err, domain.ErrTemplateReadFailed.Error())
	})
}
