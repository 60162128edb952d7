package domain

import (
	"strings"
	"time"
)

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "percolate.yaml"

	// DefaultCacheDir is the artifact directory inside the output root.
	DefaultCacheDir = "COFFEESCRIPT_CACHE"

	// DefaultMtimeDelay is the minimum time between modification-time checks of a source.
	DefaultMtimeDelay = 10 * time.Second

	// SourceExt is the extension of CoffeeScript sources.
	SourceExt = ".coffee"

	// ArtifactExt is the extension of compiled artifacts.
	ArtifactExt = ".js"

	// FingerprintLen is the number of hex characters in an artifact name suffix.
	FingerprintLen = 12

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultCompiler returns the default compiler command line.
// It reads the source on stdin and prints the compiled JavaScript.
func DefaultCompiler() []string {
	return []string{"coffee", "-c", "-s", "-p"}
}

// ArtifactName returns the artifact file name for a source base name and fingerprint.
// Only SourceExt is stripped: "test.coffee" becomes "test-<fingerprint>.js" while
// "test.litcoffee" keeps its extension and becomes "test.litcoffee-<fingerprint>.js".
func ArtifactName(sourceBase, fingerprint string) string {
	stem := strings.TrimSuffix(sourceBase, SourceExt)
	if stem == "" {
		stem = sourceBase
	}
	return stem + "-" + fingerprint + ArtifactExt
}
