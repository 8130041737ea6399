// Package astcache serves parsed documents from a memory tier backed by a
// persistent store, re-parsing a file only when its content changes.
package astcache

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

var _ ports.ASTCache = (*Cache)(nil)

// access tracks how often and how recently a path was served.
type access struct {
	count atomic.Int64
	last  atomic.Int64
}

func (a *access) touch(now time.Time) {
	a.count.Add(1)
	a.last.Store(now.UnixNano())
}

// Cache is a two-tier AST cache. The memory tier maps cache keys to
// immutable entries; the disk tier is optional. All maps are sync.Maps so
// background maintenance never holds a lock across a parse.
type Cache struct {
	sources ports.SourceLoader
	parser  ports.Parser
	store   ports.ASTStore
	meta    ports.MetadataStore
	logger  ports.Logger
	opts    domain.Options

	memory sync.Map // uint64 -> *domain.CacheEntry
	byPath sync.Map // string -> uint64
	hashes sync.Map // string -> domain.ContentHash
	stats  sync.Map // string -> *access
	graph  *domain.DependencyGraph
	group  singleflight.Group

	memoryHits    atomic.Int64
	diskHits      atomic.Int64
	misses        atomic.Int64
	evictions     atomic.Int64
	invalidations atomic.Int64

	closed atomic.Bool
	stop   context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a cache and restores the persisted sidecar. store and meta may
// be nil for a memory-only cache.
func New(
	sources ports.SourceLoader,
	parser ports.Parser,
	store ports.ASTStore,
	meta ports.MetadataStore,
	logger ports.Logger,
	opts domain.Options,
) (*Cache, error) {
	c := &Cache{
		sources: sources,
		parser:  parser,
		store:   store,
		meta:    meta,
		logger:  logger,
		opts:    opts,
		graph:   domain.NewDependencyGraph(),
	}
	if meta == nil {
		return c, nil
	}

	md, err := meta.Load()
	if err != nil {
		// A damaged sidecar only costs warm starts.
		logger.Warn("ignoring unreadable cache metadata: " + err.Error())
		return c, nil
	}
	for path, pm := range md.Paths {
		if !pm.ContentHash.IsZero() {
			c.hashes.Store(path, pm.ContentHash)
		}
		if len(pm.Dependencies) > 0 {
			c.graph.SetDependencies(path, pm.Dependencies)
		}
		for _, d := range pm.Dependents {
			c.graph.AddDependent(path, d)
		}
		if pm.AccessCount > 0 {
			a := c.accessFor(path)
			a.count.Store(pm.AccessCount)
			a.last.Store(pm.LastAccessedAt.UnixNano())
		}
	}
	return c, nil
}

func (c *Cache) accessFor(path string) *access {
	if a, ok := c.stats.Load(path); ok {
		return a.(*access)
	}
	a, _ := c.stats.LoadOrStore(path, new(access))
	return a.(*access)
}

// Get returns the entry for the current content of path.
func (c *Cache) Get(ctx context.Context, path string) (*domain.CacheEntry, error) {
	if c.closed.Load() {
		return nil, closedError(path)
	}
	path = filepath.Clean(path)

	src, err := c.sources.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	key := domain.CacheKey(path, src.Unit.ContentHash)
	c.accessFor(path).touch(time.Now())

	if e, ok := c.memory.Load(key); ok {
		c.memoryHits.Add(1)
		return served(e.(*domain.CacheEntry), domain.TierMemory), nil
	}

	v, err, _ := c.group.Do(strconv.FormatUint(key, 16), func() (any, error) {
		if e, ok := c.memory.Load(key); ok {
			c.memoryHits.Add(1)
			return served(e.(*domain.CacheEntry), domain.TierMemory), nil
		}
		if e := c.fromDisk(key); e != nil {
			c.diskHits.Add(1)
			c.install(e)
			return served(e, domain.TierDisk), nil
		}

		doc, diags := c.parser.ParseText(path, src.Data)
		if diags.HasErrors() {
			return nil, domain.NewParseError(path, diags)
		}
		e := &domain.CacheEntry{
			Key:          key,
			Path:         path,
			ContentHash:  src.Unit.ContentHash,
			Document:     doc,
			Dependencies: resolveImports(path, doc.Imports()),
			CreatedAt:    time.Now(),
		}
		c.misses.Add(1)
		if c.store != nil {
			if err := c.store.Put(e); err != nil {
				c.logger.Warn("failed to persist parsed document: " + err.Error())
			}
		}
		c.install(e)
		return served(e, domain.TierParsed), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.CacheEntry), nil
}

func closedError(path string) error {
	return zerr.With(zerr.Wrap(domain.ErrCacheClosed, path), "path", path)
}

func (c *Cache) fromDisk(key uint64) *domain.CacheEntry {
	if c.store == nil {
		return nil
	}
	e, err := c.store.Get(key)
	if err != nil {
		c.logger.Warn("disk tier lookup failed: " + err.Error())
		return nil
	}
	return e
}

// install makes e the current memory-tier entry of its path.
func (c *Cache) install(e *domain.CacheEntry) {
	c.memory.Store(e.Key, e)
	if old, loaded := c.byPath.Swap(e.Path, e.Key); loaded && old.(uint64) != e.Key {
		c.memory.Delete(old)
	}
	c.hashes.Store(e.Path, e.ContentHash)
	c.graph.SetDependencies(e.Path, e.Dependencies)
}

// served returns a view of e tagged with the tier that produced it.
func served(e *domain.CacheEntry, tier domain.Tier) *domain.CacheEntry {
	cp := *e
	cp.Tier = tier
	return &cp
}

// resolveImports makes import paths relative to the importing file.
func resolveImports(path string, imports []string) []string {
	if len(imports) == 0 {
		return nil
	}
	dir := filepath.Dir(path)
	out := make([]string, 0, len(imports))
	for _, imp := range imports {
		if !filepath.IsAbs(imp) {
			imp = filepath.Join(dir, imp)
		}
		out = append(out, filepath.Clean(imp))
	}
	return out
}

// evict drops path from both tiers. It reports whether anything was held.
func (c *Cache) evict(path string) bool {
	held := false
	if key, ok := c.byPath.LoadAndDelete(path); ok {
		c.memory.Delete(key)
		held = true
	}
	if c.store != nil {
		if err := c.store.DeletePath(path); err != nil {
			c.logger.Warn("failed to evict " + path + " from disk tier: " + err.Error())
		}
	}
	return held
}

// Invalidate evicts path and every file that transitively imports it. Cycles
// form a single group. The stored hash of path is dropped so that the next
// Get re-reads it.
func (c *Cache) Invalidate(path string) []string {
	path = filepath.Clean(path)
	var evicted []string
	for p := range c.graph.Closure(path) {
		c.evict(p)
		evicted = append(evicted, p)
	}
	c.hashes.Delete(path)
	c.invalidations.Add(int64(len(evicted)))
	return evicted
}

// Dependents returns the files that directly import path.
func (c *Cache) Dependents(path string) []string {
	return c.graph.Dependents(filepath.Clean(path))
}

// Dependencies returns the files path directly imports.
func (c *Cache) Dependencies(path string) []string {
	return c.graph.Dependencies(filepath.Clean(path))
}

// Hash returns the last content hash seen for path.
func (c *Cache) Hash(path string) (domain.ContentHash, bool) {
	h, ok := c.hashes.Load(filepath.Clean(path))
	if !ok {
		return domain.ContentHash{}, false
	}
	return h.(domain.ContentHash), true
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() domain.CacheStats {
	entries := 0
	c.byPath.Range(func(_, _ any) bool {
		entries++
		return true
	})
	return domain.CacheStats{
		MemoryHits:    c.memoryHits.Load(),
		DiskHits:      c.diskHits.Load(),
		Misses:        c.misses.Load(),
		Evictions:     c.evictions.Load(),
		Invalidations: c.invalidations.Load(),
		Entries:       entries,
	}
}

// Purge drops both tiers, the dependency graph and the persisted metadata.
func (c *Cache) Purge() error {
	c.memory.Clear()
	c.byPath.Clear()
	c.hashes.Clear()
	c.stats.Clear()
	for _, p := range c.graph.Paths() {
		c.graph.Remove(p)
	}
	if c.store != nil {
		if err := c.store.Purge(); err != nil {
			return err
		}
	}
	if c.meta != nil {
		return c.meta.Remove()
	}
	return nil
}

// Close stops background work, persists metadata and releases the store.
func (c *Cache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if c.stop != nil {
		c.stop()
	}
	c.wg.Wait()

	var errs error
	if c.meta != nil {
		if err := c.meta.Save(c.snapshot()); err != nil {
			errs = err
		}
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil && errs == nil {
			errs = domain.PathError(domain.ErrIO, "ast store", err)
		}
	}
	return errs
}

// snapshot builds the sidecar from the known hashes, edges and access stats.
func (c *Cache) snapshot() domain.CacheMetadata {
	md := domain.CacheMetadata{Version: domain.MetadataVersion, Paths: make(map[string]domain.PathMetadata)}
	record := func(path string) {
		if _, ok := md.Paths[path]; ok {
			return
		}
		pm := domain.PathMetadata{
			Dependencies: c.graph.Dependencies(path),
			Dependents:   c.graph.Dependents(path),
		}
		if h, ok := c.hashes.Load(path); ok {
			pm.ContentHash = h.(domain.ContentHash)
		}
		if a, ok := c.stats.Load(path); ok {
			pm.AccessCount = a.(*access).count.Load()
			pm.LastAccessedAt = time.Unix(0, a.(*access).last.Load()).UTC()
		}
		md.Paths[path] = pm
	}
	c.hashes.Range(func(k, _ any) bool {
		record(k.(string))
		return true
	})
	for _, p := range c.graph.Paths() {
		record(p)
	}
	return md
}
