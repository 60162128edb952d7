package fs

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/percolate/internal/core/domain"
	"go.trai.ch/percolate/internal/core/ports"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes artifact fingerprints using XXHash.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint hashes the source content together with its modification time.
// A touched file gets a new fingerprint even when its content is unchanged.
func (h *Hasher) Fingerprint(source []byte, mtime time.Time) string {
	hasher := xxhash.New()

	_, _ = hasher.Write(source)
	_, _ = hasher.Write([]byte{0}) // Separator

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(mtime.UnixNano())) //nolint:gosec // Sign is irrelevant for hashing
	_, _ = hasher.Write(buf[:])

	return truncate(hasher.Sum64())
}

// Digest hashes data alone.
func (h *Hasher) Digest(data []byte) string {
	return truncate(xxhash.Sum64(data))
}

func truncate(sum uint64) string {
	return fmt.Sprintf("%016x", sum)[:domain.FingerprintLen]
}
