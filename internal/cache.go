package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Cache tag types
const (
	TagAuth     = "Auth"
	TagTask     = "Task"
	TagCategory = "Category"

	// ListID marks the tag provided by list queries
	ListID = "LIST"
)

const cacheVersion = "1.0"

// Tag labels a cached response. A tag with an empty ID matches every tag of its type.
type Tag struct {
	Type string `yaml:"type"`
	ID   string `yaml:"id,omitempty"`
}

// ListTag is the tag provided by list queries of typ.
func ListTag(typ string) Tag { return Tag{Type: typ, ID: ListID} }

// IDTag is the tag provided for a single resource.
func IDTag(typ string, id ID) Tag { return Tag{Type: typ, ID: id.String()} }

// TypeTag matches every tag of typ.
func TypeTag(typ string) Tag { return Tag{Type: typ} }

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

func (t Tag) matches(other Tag) bool {
	if t.Type != other.Type {
		return false
	}
	return t.ID == "" || t.ID == other.ID
}

// CacheMetadata stores metadata about the cache
type CacheMetadata struct {
	BaseURL      string    `yaml:"base_url"`
	UserID       string    `yaml:"user_id"`
	CacheVersion string    `yaml:"cache_version"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// CacheEntry represents a cached response in the index
type CacheEntry struct {
	Key      string    `yaml:"key"`
	File     string    `yaml:"file"`
	Tags     []Tag     `yaml:"tags"`
	StoredAt time.Time `yaml:"stored_at"`
}

// CacheIndex represents the YAML index of all cached responses
type CacheIndex struct {
	Entries  []CacheEntry  `yaml:"entries"`
	Metadata CacheMetadata `yaml:"metadata"`
}

// ResponseCache keeps GET response bodies on disk, indexed by request key and tags
type ResponseCache struct {
	mu       sync.Mutex
	cacheDir string
}

// NewResponseCache creates a cache rooted at cacheDir
func NewResponseCache(cacheDir string) *ResponseCache {
	return &ResponseCache{
		cacheDir: cacheDir,
	}
}

// EnsureCacheDir ensures the cache directory exists
func (rc *ResponseCache) EnsureCacheDir() error {
	return os.MkdirAll(rc.cacheDir, 0755)
}

// GetCacheDir returns the cache directory path
func (rc *ResponseCache) GetCacheDir() string {
	return rc.cacheDir
}

// GetIndexPath returns the path to the index YAML file
func (rc *ResponseCache) GetIndexPath() string {
	return filepath.Join(rc.cacheDir, "index.yaml")
}

// GetEntryPath returns the path of the body file for key. File names are
// derived from the key so the same request always maps to the same file.
func (rc *ResponseCache) GetEntryPath(key string) string {
	return filepath.Join(rc.cacheDir, entryFileName(key))
}

func entryFileName(key string) string {
	return fmt.Sprintf("entry_%s.json", uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)))
}

// LoadIndex loads the cache index
func (rc *ResponseCache) LoadIndex() (*CacheIndex, error) {
	data, err := os.ReadFile(rc.GetIndexPath())
	if err != nil {
		return nil, err
	}

	var index CacheIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}

	return &index, nil
}

// SaveIndex saves the cache index
func (rc *ResponseCache) SaveIndex(index *CacheIndex) error {
	if err := rc.EnsureCacheDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	return os.WriteFile(rc.GetIndexPath(), data, 0644)
}

// Bind ties the cache to an API base URL and user. Entries cached for a
// different API or user are discarded.
func (rc *ResponseCache) Bind(baseURL, userID string) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	index, err := rc.LoadIndex()
	if err == nil && index.Metadata.BaseURL == baseURL && index.Metadata.UserID == userID &&
		index.Metadata.CacheVersion == cacheVersion {
		return nil
	}

	if err := rc.clearLocked(); err != nil {
		return err
	}

	now := time.Now()
	return rc.SaveIndex(&CacheIndex{
		Entries: make([]CacheEntry, 0),
		Metadata: CacheMetadata{
			BaseURL:      baseURL,
			UserID:       userID,
			CacheVersion: cacheVersion,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	})
}

// Lookup decodes the cached body for key into v. It reports false on a miss.
func (rc *ResponseCache) Lookup(key string, v interface{}) (bool, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	index, err := rc.LoadIndex()
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	for _, entry := range index.Entries {
		if entry.Key != key {
			continue
		}
		data, err := os.ReadFile(filepath.Join(rc.cacheDir, entry.File))
		if err != nil {
			// stale index entry
			return false, nil
		}
		if err := json.Unmarshal(data, v); err != nil {
			return false, fmt.Errorf("failed to unmarshal cached %s: %w", key, err)
		}
		return true, nil
	}

	return false, nil
}

// Store writes v as the cached body for key, labelled with tags.
func (rc *ResponseCache) Store(key string, v interface{}, tags ...Tag) error {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if err := rc.EnsureCacheDir(); err != nil {
		return err
	}

	index, err := rc.LoadIndex()
	if err != nil {
		now := time.Now()
		index = &CacheIndex{
			Entries:  make([]CacheEntry, 0),
			Metadata: CacheMetadata{CacheVersion: cacheVersion, CreatedAt: now},
		}
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	file := entryFileName(key)
	if err := os.WriteFile(rc.GetEntryPath(key), data, 0644); err != nil {
		return err
	}

	entry := CacheEntry{Key: key, File: file, Tags: tags, StoredAt: time.Now()}

	// Update or add entry in index
	found := false
	for i := range index.Entries {
		if index.Entries[i].Key == key {
			index.Entries[i] = entry
			found = true
			break
		}
	}
	if !found {
		index.Entries = append(index.Entries, entry)
	}

	index.Metadata.UpdatedAt = time.Now()
	return rc.SaveIndex(index)
}

// Invalidate removes every entry carrying a tag matched by tags and
// returns how many entries were removed.
func (rc *ResponseCache) Invalidate(tags ...Tag) (int, error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	index, err := rc.LoadIndex()
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	kept := index.Entries[:0]
	removed := 0
	for _, entry := range index.Entries {
		if entryMatches(entry, tags) {
			_ = os.Remove(filepath.Join(rc.cacheDir, entry.File))
			removed++
			continue
		}
		kept = append(kept, entry)
	}

	if removed == 0 {
		return 0, nil
	}

	index.Entries = kept
	index.Metadata.UpdatedAt = time.Now()
	if err := rc.SaveIndex(index); err != nil {
		return removed, err
	}
	LogDebug("Invalidated %d cached responses for %v", removed, tags)
	return removed, nil
}

func entryMatches(entry CacheEntry, tags []Tag) bool {
	for _, want := range tags {
		for _, have := range entry.Tags {
			if want.matches(have) {
				return true
			}
		}
	}
	return false
}

// Len returns the number of cached entries.
func (rc *ResponseCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	index, err := rc.LoadIndex()
	if err != nil {
		return 0
	}
	return len(index.Entries)
}

// Clear clears the cache
func (rc *ResponseCache) Clear() error {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.clearLocked()
}

func (rc *ResponseCache) clearLocked() error {
	index, err := rc.LoadIndex()
	if err == nil {
		for _, entry := range index.Entries {
			_ = os.Remove(filepath.Join(rc.cacheDir, entry.File))
		}
	}

	// Delete index
	if err := os.Remove(rc.GetIndexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
