// Package app implements the application layer for tusk.
package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"go.trai.ch/tusk/internal/adapters/cas"
	"go.trai.ch/tusk/internal/adapters/fs"
	"go.trai.ch/tusk/internal/adapters/simd"
	"go.trai.ch/tusk/internal/adapters/telemetry"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"go.trai.ch/tusk/internal/engine/astcache"
	"go.trai.ch/tusk/internal/engine/compiler"
	"go.trai.ch/tusk/internal/engine/loader"
	"go.trai.ch/tusk/internal/engine/orchestrator"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	parser       ports.Parser
	codecs       ports.CodecSet
	hasher       ports.Hasher
	mapper       ports.FileMapper
	writer       ports.ArtifactWriter
	finder       ports.SourceFinder
	watcher      ports.Watcher
	tracer       ports.Tracer
	dir          string
	lookup       domain.EnvLookup
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	parser ports.Parser,
	codecs ports.CodecSet,
	hasher ports.Hasher,
	mapper ports.FileMapper,
	writer ports.ArtifactWriter,
	finder ports.SourceFinder,
	watcher ports.Watcher,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		parser:       parser,
		codecs:       codecs,
		hasher:       hasher,
		mapper:       mapper,
		writer:       writer,
		finder:       finder,
		watcher:      watcher,
		tracer:       tracer,
		dir:          ".",
	}
}

// WithDir sets the directory configuration discovery starts from.
func (a *App) WithDir(dir string) *App {
	a.dir = dir
	return a
}

// WithEnv replaces the environment used by @env expressions at load time.
// This is primarily used for testing.
func (a *App) WithEnv(lookup domain.EnvLookup) *App {
	a.lookup = lookup
	return a
}

// RunOptions adjust the configured options for a single command.
type RunOptions struct {
	// Compression overrides the configured codec when set.
	Compression string
	// Parallel overrides max_parallelism when positive.
	Parallel int
	// MemoryOnly skips the persistent AST cache tier.
	MemoryOnly bool
	// Timings records per-span durations for the report.
	Timings bool
}

// Report is the outcome of a batch command.
type Report struct {
	Batch   *domain.BatchReport
	Cache   domain.CacheStats
	Ingest  domain.IngestStats
	Timings []telemetry.Timing
}

// session is the engine stack built for one command from the resolved
// options.
type session struct {
	opts     domain.Options
	sources  *fs.Ingestor
	cache    *astcache.Cache
	orch     *orchestrator.Orchestrator
	timings  *telemetry.Timings
	shutdown func(context.Context) error
}

func (a *App) open(ctx context.Context, run RunOptions) (*session, error) {
	opts, err := a.configLoader.Load(a.dir)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	if run.Compression != "" {
		if opts.Compression, err = domain.ParseCodec(run.Compression); err != nil {
			return nil, err
		}
	}
	if run.Parallel > 0 {
		opts.MaxParallelism = run.Parallel
	}

	kernel := simd.Detect()
	ingestor := fs.NewIngestor(opts, kernel, a.hasher, a.mapper)

	var (
		store ports.ASTStore
		meta  ports.MetadataStore
	)
	if !run.MemoryOnly {
		s, err := cas.OpenStore(filepath.Join(opts.CacheDir, domain.ASTStoreFile))
		if err != nil {
			return nil, err
		}
		store = s
		meta = cas.NewMetadata(filepath.Join(opts.CacheDir, domain.MetadataFile), a.writer)
	}
	cache, err := astcache.New(ingestor, a.parser, store, meta, a.logger, opts)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}
	cache.Start(ctx)

	s := &session{opts: opts, sources: ingestor, cache: cache}
	tracer := a.tracer
	if run.Timings {
		s.timings = telemetry.NewTimings()
		t := telemetry.NewProviderTracer("tusk", s.timings)
		s.shutdown = t.Shutdown
		tracer = t
	}

	comp := compiler.New(cache, ingestor, a.codecs, a.writer, tracer, opts, kernel.Variant())
	load := loader.New(a.mapper, a.codecs, a.lookup)
	s.orch = orchestrator.New(ingestor, cache, comp, load, tracer, a.logger, opts)
	return s, nil
}

// close persists the cache sidecar and flushes timing spans.
func (s *session) close(ctx context.Context) error {
	err := s.cache.Close()
	if s.shutdown != nil {
		err = errors.Join(err, s.shutdown(ctx))
	}
	return err
}

func (s *session) report(batch *domain.BatchReport) *Report {
	r := &Report{Batch: batch, Cache: s.cache.Stats(), Ingest: s.sources.Stats()}
	if s.timings != nil {
		r.Timings = s.timings.Summary()
	}
	return r
}

// Compile brings the artifacts of every source named by args up to date.
// Directories are searched recursively and globs are expanded. With force set
// every source is recompiled. Per-file failures are reported in the result;
// the returned error is reserved for failures before the batch starts.
func (a *App) Compile(ctx context.Context, args []string, force bool, run RunOptions) (rep *Report, err error) {
	paths, err := a.finder.Expand(args)
	if err != nil {
		return nil, err
	}

	s, err := a.open(ctx, run)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, s.close(context.WithoutCancel(ctx)))
	}()

	return s.report(s.orch.Batch(ctx, paths, force)), nil
}

// Loaded is a configuration read back from its artifacts.
type Loaded struct {
	// Records holds one record per loaded file, outermost level first.
	Records []*domain.CompilationRecord
	Keys    []string
	Values  map[string]domain.Value
	// Origins maps each key to the level file that set it. It is only
	// filled for directory loads.
	Origins map[string]string
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Load opens the configuration of source, compiling it first when needed,
// and evaluates every key. A directory source loads the cascade of level
// files above it.
func (a *App) Load(ctx context.Context, source string, run RunOptions) (out *Loaded, err error) {
	s, err := a.open(ctx, run)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, s.close(context.WithoutCancel(ctx)))
	}()

	if isDir(source) {
		c, err := s.orch.Cascade(ctx, source)
		if err != nil {
			return nil, err
		}
		return &Loaded{Records: c.Records, Keys: c.Keys, Values: c.Values, Origins: c.Origins}, nil
	}

	cfg, rec, err := s.orch.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	defer cfg.Close()

	keys, err := cfg.Keys()
	if err != nil {
		return nil, err
	}
	values, err := cfg.All()
	if err != nil {
		return nil, err
	}
	return &Loaded{Records: []*domain.CompilationRecord{rec}, Keys: keys, Values: values}, nil
}

// Get evaluates a single key of source. A directory source answers from the
// deepest level file that assigns key. When no file assigns key, fallback is
// returned if set and ErrKeyNotFound otherwise.
func (a *App) Get(ctx context.Context, source, key string, fallback *domain.Value, run RunOptions) (v domain.Value, err error) {
	s, err := a.open(ctx, run)
	if err != nil {
		return domain.Value{}, err
	}
	defer func() {
		err = errors.Join(err, s.close(context.WithoutCancel(ctx)))
	}()

	var ok bool
	if isDir(source) {
		var from string
		v, from, err = s.orch.Lookup(ctx, source, key)
		ok = from != ""
	} else {
		v, ok, err = s.lookup(ctx, source, key)
	}
	switch {
	case err != nil:
		return domain.Value{}, err
	case ok:
		return v, nil
	case fallback != nil:
		return *fallback, nil
	default:
		return domain.Value{}, zerr.With(zerr.Wrap(domain.ErrKeyNotFound, key), "key", key)
	}
}

func (s *session) lookup(ctx context.Context, source, key string) (domain.Value, bool, error) {
	cfg, _, err := s.orch.Load(ctx, source)
	if err != nil {
		return domain.Value{}, false, err
	}
	defer cfg.Close()
	return cfg.Lookup(key)
}

// CleanCache removes the persistent AST cache and its metadata.
func (a *App) CleanCache(ctx context.Context) error {
	s, err := a.open(ctx, RunOptions{})
	if err != nil {
		return err
	}
	a.logger.Info("removing ast cache in " + s.opts.CacheDir)
	err = errors.Join(s.cache.Purge(), s.close(ctx))
	if err != nil {
		return err
	}
	// Close writes an empty sidecar back.
	meta := cas.NewMetadata(filepath.Join(s.opts.CacheDir, domain.MetadataFile), a.writer)
	if err := meta.Remove(); err != nil {
		return err
	}
	a.logger.Info("removed ast cache")
	return nil
}
