package openmeteo

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache keeps raw archive responses on disk, one .json per request URL plus
// a .meta sidecar. Windows ending within refreshRecent of now are revalidated
// with a conditional GET since the archive still fills in recent hours
type Cache struct {
	dir           string
	refreshRecent time.Duration
	now           func() time.Time
}

type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Size         int64     `json:"size"`
	FetchedAt    time.Time `json:"fetched_at"`
	LastChecked  time.Time `json:"last_checked"`
}

// NewCache creates dir when missing
func NewCache(dir string, refreshRecent time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("openmeteo cache dir: %w", err)
	}
	return &Cache{dir: dir, refreshRecent: refreshRecent, now: time.Now}, nil
}

func (c *Cache) paths(url string) (body, meta string) {
	sum := sha256.Sum256([]byte(url))
	base := filepath.Join(c.dir, hex.EncodeToString(sum[:]))
	return base + ".json", base + ".json.meta"
}

// Load returns the cached body for url. A missing meta sidecar is not a miss
func (c *Cache) Load(url string) ([]byte, *cacheMeta, bool) {
	bodyPath, metaPath := c.paths(url)
	b, err := os.ReadFile(bodyPath)
	if err != nil {
		return nil, nil, false
	}
	m, _ := loadMeta(metaPath)
	return b, m, true
}

// Stale reports whether a window ending on end needs revalidation
func (c *Cache) Stale(end time.Time) bool {
	if c.refreshRecent <= 0 {
		return false
	}
	return c.now().Sub(end) <= c.refreshRecent
}

// Store writes body and its meta atomically
func (c *Cache) Store(url string, body []byte, h http.Header) error {
	bodyPath, metaPath := c.paths(url)
	if err := writeAtomic(bodyPath, body); err != nil {
		return err
	}
	now := c.now().UTC()
	return saveMeta(metaPath, &cacheMeta{
		URL:          url,
		ETag:         strings.TrimSpace(h.Get("ETag")),
		LastModified: strings.TrimSpace(h.Get("Last-Modified")),
		Size:         int64(len(body)),
		FetchedAt:    now,
		LastChecked:  now,
	})
}

// Touch records a 304 revalidation
func (c *Cache) Touch(url string, m *cacheMeta) {
	if m == nil {
		m = &cacheMeta{URL: url}
	}
	m.LastChecked = c.now().UTC()
	_, metaPath := c.paths(url)
	_ = saveMeta(metaPath, m)
}

func loadMeta(path string) (*cacheMeta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m cacheMeta
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func saveMeta(path string, m *cacheMeta) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return writeAtomic(path, b)
}

func writeAtomic(path string, b []byte) error {
	tmp := path + ".part"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
