package source

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"merchantconsole/internal/domain"
	"merchantconsole/internal/model"
	"merchantconsole/internal/util/logx"
)

// Cache keeps the last successful load of each collection on disk.
type Cache struct {
	dir string
}

// NewCache stores entries under dir, or under the OS temp dir when dir is empty.
func NewCache(dir string) *Cache {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "merchantconsole-cache")
	}
	return &Cache{dir: dir}
}

func (c *Cache) Dir() string { return c.dir }

// cacheKey derives a stable key from the loader identity and domain.
func cacheKey(loader string, n domain.Name) string {
	h := sha1.Sum([]byte(loader + "\x00" + string(n)))
	return hex.EncodeToString(h[:])
}

func (c *Cache) path(loader string, n domain.Name) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.json", n, cacheKey(loader, n)))
}

type cacheEntry struct {
	Loader  string         `json:"loader"`
	Domain  domain.Name    `json:"domain"`
	Records []model.Record `json:"records"`
}

func (c *Cache) Load(loader string, n domain.Name) ([]model.Record, bool) {
	f, err := os.Open(c.path(loader, n))
	if err != nil {
		return nil, false
	}
	defer f.Close()
	var e cacheEntry
	if err := json.NewDecoder(f).Decode(&e); err != nil {
		logx.Warnf("source: cache %s unreadable: %v", f.Name(), err)
		return nil, false
	}
	if e.Loader != loader || e.Domain != n {
		return nil, false
	}
	return e.Records, true
}

func (c *Cache) Save(loader string, n domain.Name, recs []model.Record) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	p := c.path(loader, n)
	tmp := p + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	if err := enc.Encode(cacheEntry{Loader: loader, Domain: n, Records: recs}); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		return err
	}
	logx.Debugf("source: cached %d %s records to %s", len(recs), n, p)
	return nil
}
