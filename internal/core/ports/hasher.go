package ports

import "time"

// Hasher defines the interface for computing artifact fingerprints.
//
//go:generate go run go.uber.org/mock/mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// Fingerprint returns the artifact name suffix for a source and its modification time.
	// The result is domain.FingerprintLen lowercase hex characters.
	Fingerprint(source []byte, mtime time.Time) string

	// Digest returns a content-only hash of data, used to key inline compilations.
	Digest(data []byte) string
}
