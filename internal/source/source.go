// Package source owns the in-memory collection of every domain and keeps
// them in sync with a loader.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"merchantconsole/internal/domain"
	"merchantconsole/internal/ingest"
	"merchantconsole/internal/model"
	"merchantconsole/internal/util/logx"
)

// Loader fetches whole collections. remote.Backend satisfies it.
type Loader interface {
	Name() string
	List(ctx context.Context, d *domain.Domain) ([]model.Record, error)
}

type Hub struct {
	loader  Loader
	cache   *Cache
	domains []*domain.Domain
	stores  map[domain.Name]*model.Store

	group singleflight.Group

	mu       sync.Mutex
	loadedAt time.Time
	gen      uint64 // bumped by Clear
}

// ErrCleared reports a load whose result was dropped because Clear ran
// while it was in flight.
var ErrCleared = errors.New("collections cleared during reload")

func (h *Hub) generation() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gen
}

// NewHub creates empty stores for names (all domains when none are given).
// cache may be nil.
func NewHub(loader Loader, cache *Cache, names ...domain.Name) *Hub {
	if len(names) == 0 {
		names = domain.All
	}
	h := &Hub{loader: loader, cache: cache, stores: map[domain.Name]*model.Store{}}
	for _, n := range names {
		h.domains = append(h.domains, domain.MustLookup(n))
		h.stores[n] = model.NewStore()
	}
	return h
}

func (h *Hub) Loader() Loader { return h.loader }

func (h *Hub) Domains() []*domain.Domain { return h.domains }

// Store returns the store of n, nil for domains the hub does not hold.
func (h *Hub) Store(n domain.Name) *model.Store { return h.stores[n] }

func (h *Hub) LoadedAt() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loadedAt
}

// Reload fetches every domain in parallel. If any fetch fails no store is
// touched. Concurrent calls share one fetch.
func (h *Hub) Reload(ctx context.Context) (map[domain.Name]int, error) {
	v, err, shared := h.group.Do("all", func() (any, error) {
		return h.reloadAll(ctx)
	})
	if shared {
		logx.Debugf("source: reload joined an in-flight fetch")
	}
	if err != nil {
		return nil, err
	}
	return v.(map[domain.Name]int), nil
}

func (h *Hub) reloadAll(ctx context.Context) (map[domain.Name]int, error) {
	start := time.Now()
	gen := h.generation()
	results := make([][]model.Record, len(h.domains))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range h.domains {
		i, d := i, d
		g.Go(func() error {
			recs, err := h.loader.List(gctx, d)
			if err != nil {
				return fmt.Errorf("load %s: %w", d.Name, err)
			}
			results[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logx.Errorf("source: reload from %s failed (%s): %v", h.loader.Name(), model.Classify(err), err)
		return nil, err
	}
	h.mu.Lock()
	if h.gen != gen {
		h.mu.Unlock()
		logx.Infof("source: reload from %s dropped, collections were cleared", h.loader.Name())
		return nil, ErrCleared
	}
	counts := make(map[domain.Name]int, len(h.domains))
	for i, d := range h.domains {
		h.stores[d.Name].Replace(results[i])
		counts[d.Name] = h.stores[d.Name].Len()
	}
	h.loadedAt = time.Now()
	h.mu.Unlock()
	for i, d := range h.domains {
		h.save(d.Name, results[i])
	}
	logx.Infof("source: reloaded %d domains from %s in %s", len(h.domains), h.loader.Name(), time.Since(start).Round(time.Millisecond))
	return counts, nil
}

// ReloadDomain refreshes a single collection.
func (h *Hub) ReloadDomain(ctx context.Context, n domain.Name) (int, error) {
	st := h.stores[n]
	if st == nil {
		return 0, fmt.Errorf("%s: %w", n, model.ErrNotFound)
	}
	v, err, _ := h.group.Do("domain:"+string(n), func() (any, error) {
		gen := h.generation()
		recs, err := h.loader.List(ctx, domain.MustLookup(n))
		if err != nil {
			return 0, fmt.Errorf("load %s: %w", n, err)
		}
		h.mu.Lock()
		if h.gen != gen {
			h.mu.Unlock()
			return 0, fmt.Errorf("load %s: %w", n, ErrCleared)
		}
		st.Replace(recs)
		count := st.Len()
		h.mu.Unlock()
		h.save(n, recs)
		return count, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (h *Hub) save(n domain.Name, recs []model.Record) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Save(h.loader.Name(), n, recs); err != nil {
		logx.Warnf("source: cache save %s: %v", n, err)
	}
}

// Warm seeds empty stores from the cache and reports how many were seeded.
func (h *Hub) Warm() int {
	if h.cache == nil {
		return 0
	}
	seeded := 0
	for _, d := range h.domains {
		st := h.stores[d.Name]
		if st.Len() > 0 {
			continue
		}
		if recs, ok := h.cache.Load(h.loader.Name(), d.Name); ok {
			st.Replace(recs)
			seeded++
		}
	}
	if seeded > 0 {
		logx.Infof("source: warmed %d domains from cache", seeded)
	}
	return seeded
}

// Clear empties every store, e.g. on sign-out. Loads already in flight
// finish with ErrCleared and leave the stores empty.
func (h *Hub) Clear() {
	h.mu.Lock()
	h.gen++
	for _, st := range h.stores {
		st.Clear()
	}
	h.loadedAt = time.Time{}
	h.mu.Unlock()
	h.group.Forget("all")
	for _, d := range h.domains {
		h.group.Forget("domain:" + string(d.Name))
	}
}

// FileLoader reads <Dir>/<domain>.ndjson. A missing file is an empty collection.
type FileLoader struct {
	Dir    string
	MaxBuf int
}

func (l FileLoader) Name() string {
	abs, err := filepath.Abs(l.Dir)
	if err != nil {
		abs = l.Dir
	}
	return "file:" + abs
}

func (l FileLoader) Path(n domain.Name) string {
	return filepath.Join(l.Dir, string(n)+".ndjson")
}

func (l FileLoader) List(ctx context.Context, d *domain.Domain) ([]model.Record, error) {
	recs, err := ingest.ReadFile(ctx, l.Path(d.Name), l.MaxBuf)
	if errors.Is(err, fs.ErrNotExist) {
		logx.Warnf("source: %s missing, treating as empty", l.Path(d.Name))
		return nil, nil
	}
	return recs, err
}

// Watch follows the NDJSON file of every domain that exists in dir and
// emits the domain name for each appended line. The channel is closed once
// ctx is done.
func Watch(ctx context.Context, l FileLoader, names []domain.Name) <-chan domain.Name {
	out := make(chan domain.Name, 16)
	g, gctx := errgroup.WithContext(ctx)
	for _, n := range names {
		n := n
		p := l.Path(n)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		g.Go(func() error {
			lines, errs := ingest.Follow(gctx, p)
			for {
				select {
				case _, ok := <-lines:
					if !ok {
						return nil
					}
					select {
					case out <- n:
					case <-gctx.Done():
						return nil
					}
				case err, ok := <-errs:
					if ok && err != nil {
						logx.Warnf("source: watch %s: %v", p, err)
					}
					if !ok {
						errs = nil
					}
				}
			}
		})
	}
	go func() {
		_ = g.Wait()
		close(out)
	}()
	return out
}
