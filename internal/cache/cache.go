// Package cache persists generated messages keyed by payload fingerprint.
// Entries live under the repository's git directory in a namespaced
// subtree and are never evicted automatically; `lazycommit cache clear`
// removes them.
package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chmouel/lazycommit/internal/log"
	"github.com/chmouel/lazycommit/internal/models"
	"github.com/chmouel/lazycommit/internal/utils"
)

// ContentCache stores one JSON file per payload fingerprint. Lookups open,
// read and close per call; there is no long-lived handle or lock.
type ContentCache struct {
	dir string
}

// New returns a cache rooted under the repository's git directory.
func New(gitDir string) *ContentCache {
	return &ContentCache{
		dir: filepath.Join(gitDir, models.MetadataDirname, models.CacheDirname),
	}
}

// Fingerprint returns the cache key for a payload: the hex SHA-256 of its
// exact text.
func Fingerprint(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return fmt.Sprintf("%x", sum)
}

// Dir returns the cache directory path.
func (c *ContentCache) Dir() string {
	return c.dir
}

func (c *ContentCache) entryPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get returns the cached message for key, or nil when the entry is absent
// or unreadable. Corrupt entries are misses, never errors.
func (c *ContentCache) Get(key string) *models.CachedMessage {
	data, err := os.ReadFile(c.entryPath(key)) // #nosec G304 -- path is derived from a hex digest
	if err != nil {
		return nil
	}

	var msg models.CachedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("cache: discarding corrupt entry %s: %v", key, err)
		return nil
	}
	if msg.Subject == "" {
		return nil
	}
	log.Printf("cache: hit %s", key)
	return &msg
}

// Put stores a message under key, stamping the current time. The caller is
// expected to treat a failure as "no cache" and move on.
func (c *ContentCache) Put(key string, msg models.PipelineMessage) error {
	if err := os.MkdirAll(c.dir, utils.DefaultDirPerms); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	record := models.CachedMessage{
		Subject:   msg.Subject,
		Body:      msg.Body,
		Timestamp: time.Now(),
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(c.entryPath(key), data, utils.DefaultFilePerms); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	log.Printf("cache: stored %s", key)
	return nil
}

// Clear removes every cache entry and the directory itself, returning the
// number of entries removed.
func (c *ContentCache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			count++
		}
	}
	if err := os.RemoveAll(c.dir); err != nil {
		return 0, err
	}
	return count, nil
}
