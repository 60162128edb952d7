// Package render exposes the artifact cache to page templates.
package render

import (
	"context"
	"io"
	"os"
	"strings"
	"text/template"

	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/percolate/internal/core/ports"
	"go.trai.ch/zerr"
)

// Renderer executes templates that reference CoffeeScript sources.
//
// Two template functions are available:
//
//	{{ coffeescript "scripts/app.coffee" }}     the URL of the compiled artifact
//	{{ inlinecoffeescript "alert 'hi'" }}       the compiled JavaScript itself
type Renderer struct {
	resolver  ports.ArtifactResolver
	staticURL string
}

// NewRenderer creates a Renderer that prefixes artifact paths with staticURL.
func NewRenderer(resolver ports.ArtifactResolver, staticURL string) *Renderer {
	return &Renderer{resolver: resolver, staticURL: staticURL}
}

// URL joins the static prefix and an artifact path.
func (r *Renderer) URL(artifact string) string {
	if r.staticURL == "" {
		return artifact
	}
	return strings.TrimSuffix(r.staticURL, "/") + "/" + strings.TrimPrefix(artifact, "/")
}

// Render parses text as a template named name and writes the result to w.
func (r *Renderer) Render(ctx context.Context, w io.Writer, name, text string) error {
	tmpl, err := template.New(name).Funcs(r.funcs(ctx)).Parse(text)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrTemplateParseFailed.Error()), "template", name)
	}

	if err := tmpl.Execute(w, nil); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrTemplateRenderFailed.Error()), "template", name)
	}
	return nil
}

// RenderFile renders the template stored at path.
func (r *Renderer) RenderFile(ctx context.Context, w io.Writer, path string) error {
	//nolint:gosec // Template path is chosen by the user
	text, err := os.ReadFile(path)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrTemplateReadFailed.Error()), "template", path)
	}
	return r.Render(ctx, w, path, string(text))
}

func (r *Renderer) funcs(ctx context.Context) template.FuncMap {
	return template.FuncMap{
		"coffeescript": func(source string) (string, error) {
			artifact, err := r.resolver.Resolve(ctx, source)
			if err != nil {
				return "", err
			}
			return r.URL(artifact), nil
		},
		"inlinecoffeescript": func(source string) (string, error) {
			compiled, err := r.resolver.Inline(ctx, source)
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(compiled), nil
		},
	}
}
