// Package cache stores analysis results keyed by source content.
package cache

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/panbanda/codepulse/pkg/models"
)

// Cache provides file-based caching for analysis results.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	now     func() time.Time
}

// Entry is the on-disk form of a cached result.
type Entry struct {
	Hash      string                `json:"hash"`
	Timestamp time.Time             `json:"timestamp"`
	Result    models.AnalysisResult `json:"result"`
}

// New creates a new cache instance. A disabled cache misses every lookup
// and drops every write.
func New(dir string, ttlHours int, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false, now: time.Now}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlHours) * time.Hour,
		enabled: true,
		now:     time.Now,
	}, nil
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Get retrieves a cached result if it exists, matches key and has not expired.
func (c *Cache) Get(key string) (models.AnalysisResult, bool) {
	if !c.enabled {
		return models.AnalysisResult{}, false
	}

	hash := HashBytes([]byte(key))
	path := c.hashPath(hash)
	data, err := os.ReadFile(path)
	if err != nil {
		return models.AnalysisResult{}, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil || entry.Hash != hash {
		return models.AnalysisResult{}, false
	}

	if c.ttl > 0 && c.now().Sub(entry.Timestamp) > c.ttl {
		_ = os.Remove(path)
		return models.AnalysisResult{}, false
	}

	return entry.Result, true
}

// Put stores a result in the cache.
func (c *Cache) Put(key string, result models.AnalysisResult) error {
	if !c.enabled {
		return nil
	}

	hash := HashBytes([]byte(key))
	data, err := json.Marshal(Entry{
		Hash:      hash,
		Timestamp: c.now(),
		Result:    result,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	return os.WriteFile(c.hashPath(hash), data, 0600)
}

// Invalidate removes a cache entry.
func (c *Cache) Invalidate(key string) error {
	if !c.enabled {
		return nil
	}
	err := os.Remove(c.hashPath(HashBytes([]byte(key))))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

func (c *Cache) hashPath(hash string) string {
	return filepath.Join(c.dir, hash+".json")
}

// Stats returns cache statistics.
type Stats struct {
	Entries   int           `json:"entries"`
	TotalSize int64         `json:"total_size"`
	OldestAge time.Duration `json:"oldest_age"`
	NewestAge time.Duration `json:"newest_age"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{}
	var oldest, newest time.Time

	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := c.now()
	if !oldest.IsZero() {
		stats.OldestAge = now.Sub(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = now.Sub(newest)
	}

	return stats, nil
}
