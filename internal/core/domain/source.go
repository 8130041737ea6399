package domain

import (
	"encoding/hex"
	"time"
)

// ContentHash is the BLAKE3-256 digest of normalized source bytes.
type ContentHash [32]byte

func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}

// Short returns the first 12 hex characters for display.
func (h ContentHash) Short() string {
	return h.String()[:12]
}

// IsZero reports whether the hash is unset.
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}

// SourceUnit identifies one version of a source file.
type SourceUnit struct {
	Path        string
	ContentHash ContentHash
	ModTime     time.Time
	Size        int64
}

// Route is the ingestion strategy chosen for a file.
type Route uint8

const (
	// RouteBuffered reads the file into a pooled buffer.
	RouteBuffered Route = iota
	// RouteMapped memory-maps the file and normalizes it in parallel chunks.
	RouteMapped
)

func (r Route) String() string {
	if r == RouteMapped {
		return "mmap"
	}
	return "buffered"
}

// Variant is the normalization kernel selected by the CPU feature check.
type Variant uint8

const (
	// VariantScalar processes one byte per step.
	VariantScalar Variant = iota
	// VariantWide processes eight bytes per step.
	VariantWide
)

func (v Variant) String() string {
	if v == VariantWide {
		return "wide"
	}
	return "scalar"
}

// Source is the normalized content of a file produced by the ingestion layer.
type Source struct {
	Unit    SourceUnit
	Data    []byte
	Route   Route
	Variant Variant
}

// IngestStats counts ingestion routes taken since startup.
type IngestStats struct {
	Mapped   int64
	Buffered int64
	Bytes    int64
}
