package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Tuskfile represents the structure of the tusk.yaml configuration file.
// Unset fields keep the built-in defaults.
type Tuskfile struct {
	Version         string    `yaml:"version"`
	MmapThreshold   *Size     `yaml:"mmap_threshold"`
	ChunkSize       *Size     `yaml:"chunk_size"`
	MaxParallelism  *int      `yaml:"max_parallelism"`
	CacheTTL        *Duration `yaml:"cache_ttl"`
	CleanupInterval *Duration `yaml:"cleanup_interval"`
	WarmInterval    *Duration `yaml:"warm_interval"`
	WarmTopN        *int      `yaml:"warm_top_n"`
	Compression     *string   `yaml:"compression"`
	CacheDir        *string   `yaml:"cache_dir"`
	ArtifactExt     *string   `yaml:"artifact_ext"`
}

// Size is a byte count written either as an integer or as a humanized
// string such as "100MiB".
type Size int64

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Size) UnmarshalYAML(node *yaml.Node) error {
	n, err := ParseSize(node.Value)
	if err != nil {
		return zerr.With(err, "line", node.Line)
	}
	*s = Size(n)
	return nil
}

// ParseSize parses an integer byte count or a humanized size.
func ParseSize(text string) (int64, error) {
	text = strings.TrimSpace(text)
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, nil
	}
	n, err := humanize.ParseBytes(text)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid size"), "value", text)
	}
	return int64(n), nil //nolint:gosec // sizes beyond int64 are rejected by Validate
}

// Duration is a time.Duration written in Go syntax ("90s", "1h").
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	v, err := time.ParseDuration(strings.TrimSpace(node.Value))
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid duration"), "value", node.Value)
	}
	*d = Duration(v)
	return nil
}
