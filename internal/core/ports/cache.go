package ports

import (
	"context"

	"go.trai.ch/tusk/internal/core/domain"
)

// ASTCache returns parsed documents keyed by content, re-parsing only when a
// file's content changes.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type ASTCache interface {
	// Get returns the entry for the current content of path.
	Get(ctx context.Context, path string) (*domain.CacheEntry, error)
	// Invalidate evicts path and everything that transitively imports it.
	// It returns the evicted paths, starting with path.
	Invalidate(path string) []string
	// Dependents returns the files that directly import path.
	Dependents(path string) []string
	// Dependencies returns the files path directly imports.
	Dependencies(path string) []string
	// Stats returns a snapshot of the cache counters.
	Stats() domain.CacheStats
	// Purge drops every tier and the persisted metadata.
	Purge() error
	// Close stops background work and persists metadata.
	Close() error
}

// ASTStore is the persistent tier of the AST cache.
type ASTStore interface {
	// Get returns the entry stored under key, or nil when absent.
	Get(key uint64) (*domain.CacheEntry, error)
	// Put stores entry under entry.Key.
	Put(entry *domain.CacheEntry) error
	// DeletePath removes every entry stored for path.
	DeletePath(path string) error
	// Purge removes every entry.
	Purge() error
	// Close releases the store.
	Close() error
}

// MetadataStore persists the cache sidecar.
type MetadataStore interface {
	// Load returns the stored metadata, or an empty value when none exists.
	Load() (domain.CacheMetadata, error)
	// Save replaces the stored metadata.
	Save(meta domain.CacheMetadata) error
	// Remove deletes the stored metadata.
	Remove() error
}
