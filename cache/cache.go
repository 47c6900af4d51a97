// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/jongio/npmkit/fileutil"
)

// Options configures a cache Manager.
type Options struct {
	Dir     string        // Directory to store cache files
	TTL     time.Duration // Time-to-live for cache entries; zero never expires
	Version string        // Cache version (entries with different version are invalidated)
}

// Stats tracks cache hit/miss statistics.
type Stats struct {
	Hits   int `json:"hits"`
	Misses int `json:"misses"`
	Errors int `json:"errors"`
}

// Metadata is stored alongside every cached value.
type Metadata struct {
	Key      string    `json:"key"`
	CachedAt time.Time `json:"cachedAt"`
	Version  string    `json:"version,omitempty"`
}

// envelope is the on-disk format wrapping cached data with metadata.
type envelope struct {
	Metadata Metadata        `json:"_cache"`
	Data     json.RawMessage `json:"data"`
}

var keySanitizer = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)

// Manager provides thread-safe file-based caching with TTL and version support.
type Manager struct {
	dir     string
	ttl     time.Duration
	version string
	now     func() time.Time
	mu      sync.RWMutex
	statsMu sync.Mutex
	stats   Stats
}

// NewManager creates a new cache manager.
func NewManager(opts Options) *Manager {
	return &Manager{
		dir:     opts.Dir,
		ttl:     opts.TTL,
		version: opts.Version,
		now:     time.Now,
	}
}

// Dir returns the directory holding cache files.
func (m *Manager) Dir() string {
	return m.dir
}

// Get loads a cached value by key into target, a pointer. It reports false
// for missing, expired and stale-version entries.
func (m *Manager) Get(key string, target any) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := os.ReadFile(m.keyPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.record(&m.stats.Misses)
			return false, nil
		}
		m.record(&m.stats.Errors)
		return false, fmt.Errorf("failed to read cache file: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		m.record(&m.stats.Errors)
		return false, fmt.Errorf("failed to parse cache file: %w", err)
	}

	// A different key hashing to the same file name is a miss.
	if env.Metadata.Key != key {
		m.record(&m.stats.Misses)
		return false, nil
	}
	if m.version != "" && env.Metadata.Version != m.version {
		m.record(&m.stats.Misses)
		return false, nil
	}
	if m.ttl > 0 && m.now().Sub(env.Metadata.CachedAt) > m.ttl {
		m.record(&m.stats.Misses)
		return false, nil
	}

	if err := json.Unmarshal(env.Data, target); err != nil {
		m.record(&m.stats.Errors)
		return false, fmt.Errorf("failed to unmarshal cached data: %w", err)
	}

	m.record(&m.stats.Hits)
	return true, nil
}

// Set stores a value in the cache.
func (m *Manager) Set(key string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := fileutil.EnsureDir(m.dir); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	env := envelope{
		Metadata: Metadata{Key: key, CachedAt: m.now(), Version: m.version},
		Data:     raw,
	}
	return fileutil.AtomicWriteJSON(m.keyPath(key), env)
}

// Invalidate removes a specific cache entry.
func (m *Manager) Invalidate(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(m.keyPath(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}

// Clear removes all cache entries in the cache directory.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(m.dir, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove cache file %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// GetStats returns cache hit/miss statistics.
func (m *Manager) GetStats() Stats {
	m.statsMu.Lock()
	defer m.statsMu.Unlock()
	return m.stats
}

// keyPath returns the file path for a cache key. Sanitizing alone maps
// "a@b" and "a_b" to the same name, so a short digest of the raw key is
// appended.
func (m *Manager) keyPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := keySanitizer.ReplaceAllString(key, "_") + "-" + hex.EncodeToString(sum[:4])
	return filepath.Join(m.dir, name+".json")
}

func (m *Manager) record(counter *int) {
	m.statsMu.Lock()
	*counter++
	m.statsMu.Unlock()
}
