package cache

import (
	"os"
	"time"

	"go.trai.ch/percolate/internal/core/domain"
)

// Invalidate forces the next Resolve of sourcePath to re-read the modification
// time, regardless of the delay.
func (c *Cache) Invalidate(sourcePath string) {
	key, _, err := c.locate(sourcePath)
	if err != nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		entry.ObservedAt = time.Time{}
	}
}

// Entry returns a snapshot of the entry recorded for sourcePath.
func (c *Cache) Entry(sourcePath string) (domain.CacheEntry, bool) {
	key, _, err := c.locate(sourcePath)
	if err != nil {
		return domain.CacheEntry{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return domain.CacheEntry{}, false
	}
	return *entry, true
}

// Len reports the number of tracked sources.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Forget drops the entry for a removed source and deletes its artifact.
func (c *Cache) Forget(sourcePath string) error {
	key, _, err := c.locate(sourcePath)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}

	if err := c.removeArtifact(entry.ArtifactPath); err != nil {
		return err
	}
	delete(c.entries, key)
	return nil
}

// Purge removes the artifact directory and empties every table.
func (c *Cache) Purge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	root := c.artifactFile(c.cacheDir)
	if err := os.RemoveAll(root); err != nil {
		return ioFailure(domain.ErrCacheCleanFailed, err, "dir", root)
	}

	clear(c.entries)
	clear(c.inline)
	return nil
}
