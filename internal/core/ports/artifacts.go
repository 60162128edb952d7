package ports

import "context"

// ArtifactResolver maps CoffeeScript sources to their compiled artifacts.
//
//go:generate go run go.uber.org/mock/mockgen -source=artifacts.go -destination=mocks/mock_artifacts.go -package=mocks
type ArtifactResolver interface {
	// Resolve returns the artifact path, relative to the output root, for a source
	// path relative to the source root. It compiles the source when needed.
	Resolve(ctx context.Context, sourcePath string) (string, error)

	// Inline compiles source text and returns the JavaScript.
	Inline(ctx context.Context, source string) (string, error)
}
