// Package config provides the configuration loader for tusk.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TUSK_CHUNK_SIZE.
const EnvPrefix = "TUSK_"

// Loader implements ports.ConfigLoader using a YAML file and the
// environment.
type Loader struct {
	Logger ports.Logger
	Lookup domain.EnvLookup
}

// NewLoader creates a new Loader reading overrides from the process
// environment.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, Lookup: os.LookupEnv}
}

// Load resolves the options for cwd. A missing tusk.yaml is not an error:
// the defaults apply and the cache lives under cwd.
func (l *Loader) Load(cwd string) (domain.Options, error) {
	opts := domain.DefaultOptions()
	root := cwd

	path, found := findConfiguration(cwd)
	if found {
		var file Tuskfile
		if err := readAndUnmarshalYAML(path, &file); err != nil {
			return opts, err
		}
		if file.Version != "" && file.Version != "1" {
			l.Logger.Warn("unknown " + domain.ConfigFileName + " version " + strconv.Quote(file.Version))
		}
		if err := apply(&opts, &file); err != nil {
			return opts, zerr.With(err, "file", path)
		}
		root = filepath.Dir(path)
	}

	if err := l.overlayEnv(&opts); err != nil {
		return opts, err
	}
	if !filepath.IsAbs(opts.CacheDir) {
		opts.CacheDir = filepath.Join(root, opts.CacheDir)
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// findConfiguration walks up from cwd to the filesystem root looking for
// tusk.yaml.
func findConfiguration(cwd string) (string, bool) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func readAndUnmarshalYAML(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is discovered from cwd
	if err != nil {
		return domain.PathError(domain.ErrConfigReadFailed, path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		if errors.Is(err, domain.ErrInvalidConfig) {
			return err
		}
		return domain.PathError(domain.ErrConfigParseFailed, path, err)
	}
	return nil
}

func apply(opts *domain.Options, f *Tuskfile) error {
	if f.MmapThreshold != nil {
		opts.MmapThreshold = int64(*f.MmapThreshold)
	}
	if f.ChunkSize != nil {
		opts.ChunkSize = int(*f.ChunkSize)
	}
	if f.MaxParallelism != nil {
		opts.MaxParallelism = *f.MaxParallelism
	}
	if f.CacheTTL != nil {
		opts.CacheTTL = time.Duration(*f.CacheTTL)
	}
	if f.CleanupInterval != nil {
		opts.CleanupInterval = time.Duration(*f.CleanupInterval)
	}
	if f.WarmInterval != nil {
		opts.WarmInterval = time.Duration(*f.WarmInterval)
	}
	if f.WarmTopN != nil {
		opts.WarmTopN = *f.WarmTopN
	}
	if f.Compression != nil {
		c, err := domain.ParseCodec(*f.Compression)
		if err != nil {
			return err
		}
		opts.Compression = c
	}
	if f.CacheDir != nil && *f.CacheDir != "" {
		opts.CacheDir = *f.CacheDir
	}
	if f.ArtifactExt != nil && *f.ArtifactExt != "" {
		opts.ArtifactExt = *f.ArtifactExt
	}
	return nil
}

// overlayEnv applies TUSK_* variables on top of the file values.
func (l *Loader) overlayEnv(opts *domain.Options) error {
	lookup := l.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		return v, ok && v != ""
	}

	if v, ok := get("MMAP_THRESHOLD"); ok {
		n, err := ParseSize(v)
		if err != nil {
			return zerr.With(err, "env", EnvPrefix+"MMAP_THRESHOLD")
		}
		opts.MmapThreshold = n
	}
	if v, ok := get("CHUNK_SIZE"); ok {
		n, err := ParseSize(v)
		if err != nil {
			return zerr.With(err, "env", EnvPrefix+"CHUNK_SIZE")
		}
		opts.ChunkSize = int(n)
	}
	for key, dst := range map[string]*int{"MAX_PARALLELISM": &opts.MaxParallelism, "WARM_TOP_N": &opts.WarmTopN} {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid integer"), "env", EnvPrefix+key)
			}
			*dst = n
		}
	}
	durations := map[string]*time.Duration{
		"CACHE_TTL":        &opts.CacheTTL,
		"CLEANUP_INTERVAL": &opts.CleanupInterval,
		"WARM_INTERVAL":    &opts.WarmInterval,
	}
	for key, dst := range durations {
		if v, ok := get(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid duration"), "env", EnvPrefix+key)
			}
			*dst = d
		}
	}
	if v, ok := get("COMPRESSION"); ok {
		c, err := domain.ParseCodec(v)
		if err != nil {
			return zerr.With(err, "env", EnvPrefix+"COMPRESSION")
		}
		opts.Compression = c
	}
	if v, ok := get("CACHE_DIR"); ok {
		opts.CacheDir = v
	}
	if v, ok := get("ARTIFACT_EXT"); ok {
		opts.ArtifactExt = v
	}
	return nil
}
