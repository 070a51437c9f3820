package manifest

import (
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache memoizes parsed manifests across repeated runs of the same
// process, keyed by path plus mtime plus size. Watch mode re-audits on
// every change event; unchanged manifests should not be re-parsed each
// time. Nothing is ever written to disk.
type Cache struct {
	entries *lru.Cache[string, *Manifest]
}

// NewCache creates a cache bounded to size parsed manifests.
func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[string, *Manifest](size)
	if err != nil {
		return nil, fmt.Errorf("create manifest cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

// Load returns the parsed manifest at path, from cache when the file
// is unchanged since it was last parsed.
func (c *Cache) Load(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat manifest %s: %w", path, err)
	}

	key := fmt.Sprintf("%s|%d|%d", path, info.ModTime().UnixNano(), info.Size())
	if m, ok := c.entries.Get(key); ok {
		return m, nil
	}

	m, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, m)
	return m, nil
}
