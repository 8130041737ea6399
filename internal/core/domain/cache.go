package domain

import (
	"time"

	"github.com/cespare/xxhash/v2"
)

// CacheKey derives the cache key for one (path, content) pair.
func CacheKey(path string, hash ContentHash) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(path)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(hash[:])
	return d.Sum64()
}

// Tier names the cache level that served a lookup.
type Tier uint8

const (
	// TierMemory is the in-process map.
	TierMemory Tier = iota
	// TierDisk is the persistent store.
	TierDisk
	// TierParsed means the lookup missed both tiers and ran the parser.
	TierParsed
)

func (t Tier) String() string {
	switch t {
	case TierMemory:
		return "memory"
	case TierDisk:
		return "disk"
	default:
		return "parsed"
	}
}

// CacheEntry is an immutable parsed document for one version of one file.
// Entries are replaced, never mutated; access statistics are tracked beside them.
type CacheEntry struct {
	Key          uint64      `cbor:"key"`
	Path         string      `cbor:"path"`
	ContentHash  ContentHash `cbor:"hash"`
	Document     *Document   `cbor:"doc"`
	Dependencies []string    `cbor:"deps,omitempty"`
	CreatedAt    time.Time   `cbor:"created"`

	// Tier reports where this lookup was served from. It is not persisted.
	Tier Tier `cbor:"-"`
}

// CacheStats is a snapshot of AST cache counters.
type CacheStats struct {
	MemoryHits    int64
	DiskHits      int64
	Misses        int64
	Evictions     int64
	Invalidations int64
	Entries       int
}

// Lookups returns the total number of Get calls that produced an entry.
func (s CacheStats) Lookups() int64 {
	return s.MemoryHits + s.DiskHits + s.Misses
}

// HitRate returns the share of lookups served without parsing.
func (s CacheStats) HitRate() float64 {
	total := s.Lookups()
	if total == 0 {
		return 0
	}
	return float64(s.MemoryHits+s.DiskHits) / float64(total)
}

// PathMetadata is the persisted per-path record of the cache sidecar.
type PathMetadata struct {
	ContentHash    ContentHash `cbor:"hash"`
	Dependencies   []string    `cbor:"deps,omitempty"`
	Dependents     []string    `cbor:"rdeps,omitempty"`
	AccessCount    int64       `cbor:"hits"`
	LastAccessedAt time.Time   `cbor:"atime"`
}

// CacheMetadata is the whole sidecar: path to record.
type CacheMetadata struct {
	Version int                     `cbor:"v"`
	Paths   map[string]PathMetadata `cbor:"paths"`
}

// MetadataVersion is the sidecar schema version.
const MetadataVersion = 1
