package ports

import (
	"context"

	"go.trai.ch/tusk/internal/core/domain"
)

// SourceLoader is the ingestion layer: it reads and normalizes a source file,
// choosing between memory mapping and buffered reads by size.
//
//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks
type SourceLoader interface {
	// Load reads path, normalizes it and fills in its SourceUnit.
	Load(ctx context.Context, path string) (*domain.Source, error)
	// RouteFor reports the route a file of the given size would take.
	RouteFor(size int64) domain.Route
	// Stats returns the route counters accumulated so far.
	Stats() domain.IngestStats
}

// Hasher computes content hashes of raw source bytes.
type Hasher interface {
	// Sum returns the content hash of data.
	Sum(data []byte) domain.ContentHash
}
