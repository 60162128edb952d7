package domain

import "time"

// CacheEntry records the live artifact of one source file.
type CacheEntry struct {
	// SourcePath is the cleaned source path relative to the source root.
	SourcePath string
	// Mtime is the source modification time seen when the entry was last checked.
	Mtime time.Time
	// ObservedAt is the wall-clock time Mtime was last read from disk.
	ObservedAt time.Time
	// Fingerprint is the hash suffix embedded in the artifact name.
	Fingerprint string
	// ArtifactPath is the artifact path relative to the output root, slash separated.
	ArtifactPath string
}

// CacheOutcome describes how a resolve request was served.
type CacheOutcome string

const (
	// OutcomeMiss means no entry existed and the source was compiled.
	OutcomeMiss CacheOutcome = "miss"
	// OutcomeHit means the entry was returned inside the debounce window.
	OutcomeHit CacheOutcome = "hit"
	// OutcomeFresh means the mtime was re-read and had not changed.
	OutcomeFresh CacheOutcome = "fresh"
	// OutcomeReused means no entry existed but an artifact with the current
	// fingerprint was already on disk, so nothing was compiled.
	OutcomeReused CacheOutcome = "reused"
	// OutcomeStale means the mtime changed and the source was recompiled.
	OutcomeStale CacheOutcome = "stale"
)
