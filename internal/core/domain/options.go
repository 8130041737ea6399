package domain

import (
	"runtime"
	"time"

	"go.trai.ch/zerr"
)

// Options are the tunables shared by every component.
type Options struct {
	MmapThreshold   int64
	ChunkSize       int
	MaxParallelism  int
	CacheTTL        time.Duration
	CleanupInterval time.Duration
	WarmInterval    time.Duration
	WarmTopN        int
	Compression     Codec
	CacheDir        string
	ArtifactExt     string
}

const (
	// DefaultMmapThreshold is the size above which sources are memory-mapped.
	DefaultMmapThreshold = 100 << 20
	// DefaultChunkSize is the ingestion chunk size for mapped sources.
	DefaultChunkSize = 1 << 20
)

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		MmapThreshold:   DefaultMmapThreshold,
		ChunkSize:       DefaultChunkSize,
		MaxParallelism:  runtime.NumCPU(),
		CacheTTL:        time.Hour,
		CleanupInterval: 5 * time.Minute,
		WarmInterval:    time.Minute,
		WarmTopN:        16,
		Compression:     CodecNone,
		CacheDir:        DefaultCachePath(),
		ArtifactExt:     ArtifactExt,
	}
}

// Validate rejects values no component can work with.
func (o Options) Validate() error {
	switch {
	case o.MmapThreshold <= 0:
		return invalidOption("mmap_threshold", o.MmapThreshold)
	case o.ChunkSize <= 0:
		return invalidOption("chunk_size", o.ChunkSize)
	case o.MaxParallelism <= 0:
		return invalidOption("max_parallelism", o.MaxParallelism)
	case o.CacheTTL < 0 || o.CleanupInterval < 0 || o.WarmInterval < 0:
		return invalidOption("durations", "must not be negative")
	case o.WarmTopN < 0:
		return invalidOption("warm_top_n", o.WarmTopN)
	}
	return nil
}

func invalidOption(key string, value any) error {
	return zerr.With(zerr.Wrap(ErrInvalidConfig, key), "value", value)
}
