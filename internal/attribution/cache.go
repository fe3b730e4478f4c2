// Package attribution resolves and caches the human identity behind each
// proposal file.
package attribution

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hack4good/ideadex/internal/models"
)

// Cache is the persisted mapping of source path → resolved attribution plus
// run metadata (seen set, last run timestamp).
//
// Lifecycle: load at run start, mutate in memory, save at run end. There is
// no implicit global; callers pass the cache explicitly.
type Cache struct {
	path    string
	attrs   map[string]*models.Attribution
	seen    map[string]bool
	lastRun time.Time
}

// cacheFile is the current on-disk wrapper shape.
type cacheFile struct {
	Attrs map[string]*models.Attribution `json:"attrs"`
	Meta  cacheMeta                      `json:"meta"`
}

type cacheMeta struct {
	Seen    []string  `json:"seen"`
	LastRun time.Time `json:"last_run"`
}

// Load reads the cache file at path. It never fails the run: a missing,
// empty, or malformed file degrades to an empty cache (malformed content is
// logged as a warning). Two on-disk shapes are accepted: the current wrapper
// with attrs/meta keys, and the legacy shape where the top-level object is
// the attribution mapping itself. Both normalize to one in-memory form here;
// nothing downstream branches on shape again.
func Load(path string, logger *slog.Logger) *Cache {
	c := &Cache{
		path:  path,
		attrs: make(map[string]*models.Attribution),
		seen:  make(map[string]bool),
	}

	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return c
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		logger.Warn("attribution: cache file is malformed, starting empty",
			slog.String("path", path), slog.String("error", err.Error()))
		return c
	}

	_, hasAttrs := probe["attrs"]
	_, hasMeta := probe["meta"]
	if hasAttrs || hasMeta {
		var file cacheFile
		if err := json.Unmarshal(data, &file); err != nil {
			logger.Warn("attribution: cache wrapper is malformed, starting empty",
				slog.String("path", path), slog.String("error", err.Error()))
			return c
		}
		if file.Attrs != nil {
			c.attrs = file.Attrs
		}
		for _, p := range file.Meta.Seen {
			c.seen[p] = true
		}
		c.lastRun = file.Meta.LastRun
		return c
	}

	// Legacy shape: the whole object is the mapping, metadata starts empty.
	var legacy map[string]*models.Attribution
	if err := json.Unmarshal(data, &legacy); err != nil {
		logger.Warn("attribution: legacy cache is malformed, starting empty",
			slog.String("path", path), slog.String("error", err.Error()))
		return c
	}
	c.attrs = legacy
	return c
}

// Save writes the cache in the current wrapper shape, replacing any legacy
// layout permanently. The write is atomic (tmp file then rename).
func (c *Cache) Save() error {
	seen := make([]string, 0, len(c.seen))
	for p := range c.seen {
		seen = append(seen, p)
	}
	sort.Strings(seen)

	file := cacheFile{
		Attrs: c.attrs,
		Meta:  cacheMeta{Seen: seen, LastRun: time.Now().UTC()},
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("attribution: marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("attribution: mkdir cache dir: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("attribution: write cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("attribution: rename cache: %w", err)
	}
	return nil
}

// Get returns the cached attribution for a source path, or nil.
func (c *Cache) Get(sourcePath string) *models.Attribution {
	return c.attrs[sourcePath]
}

// Put stores the attribution for a source path.
func (c *Cache) Put(sourcePath string, attr *models.Attribution) {
	if attr == nil {
		attr = &models.Attribution{}
	}
	c.attrs[sourcePath] = attr
}

// MarkSeen records that sourcePath has been reported, returning true when
// the path was new this run. Once seen, a path is never new again.
func (c *Cache) MarkSeen(sourcePath string) bool {
	if c.seen[sourcePath] {
		return false
	}
	c.seen[sourcePath] = true
	return true
}

// Seen reports whether sourcePath was already reported in an earlier run.
func (c *Cache) Seen(sourcePath string) bool { return c.seen[sourcePath] }

// LastRun returns the timestamp recorded by the previous Save, zero on a
// fresh cache.
func (c *Cache) LastRun() time.Time { return c.lastRun }

// Len returns the number of cached attributions.
func (c *Cache) Len() int { return len(c.attrs) }
