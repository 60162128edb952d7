// Package ports defines the core interfaces for the application.
package ports

import "context"

// Compiler turns CoffeeScript source into JavaScript.
//
//go:generate go run go.uber.org/mock/mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile returns the compiled JavaScript for source.
	//
	// A rejected source is reported as an error joined with domain.ErrCompilationFailed.
	Compile(ctx context.Context, source []byte) ([]byte, error)
}
