// Package orchestrator decides per source file whether to compile or load
// its artifact and runs batches of such decisions.
package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"go.trai.ch/tusk/internal/engine/compiler"
	"go.trai.ch/tusk/internal/engine/loader"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Orchestrator ties the AST cache, the compiler and the loader together.
type Orchestrator struct {
	sources  ports.SourceLoader
	cache    ports.ASTCache
	compiler *compiler.Compiler
	loader   *loader.Loader
	tracer   ports.Tracer
	logger   ports.Logger
	opts     domain.Options
	group    singleflight.Group
}

// New creates an Orchestrator.
func New(
	sources ports.SourceLoader,
	cache ports.ASTCache,
	comp *compiler.Compiler,
	load *loader.Loader,
	tracer ports.Tracer,
	logger ports.Logger,
	opts domain.Options,
) *Orchestrator {
	return &Orchestrator{
		sources:  sources,
		cache:    cache,
		compiler: comp,
		loader:   load,
		tracer:   tracer,
		logger:   logger,
		opts:     opts,
	}
}

// ArtifactPath returns where the artifact of source lives.
func (o *Orchestrator) ArtifactPath(source string) string {
	return domain.ArtifactPathFor(filepath.Clean(source), o.opts.ArtifactExt)
}

// Decide reports whether source must be compiled or its artifact can be
// loaded as is.
func (o *Orchestrator) Decide(ctx context.Context, source string) (domain.Decision, error) {
	source = filepath.Clean(source)
	d := domain.Decision{SourcePath: source, ArtifactPath: o.ArtifactPath(source), Action: domain.ActionCompiled}

	srcInfo, err := os.Stat(source)
	if err != nil {
		return d, statError(source, err)
	}
	artInfo, err := os.Stat(d.ArtifactPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		d.Reason = domain.ReasonMissing
		return d, nil
	case err != nil:
		d.Reason = domain.ReasonUnreadable
		return d, nil
	case srcInfo.ModTime().After(artInfo.ModTime()):
		d.Reason = domain.ReasonSourceNewer
		return d, nil
	}

	cfg, err := o.loader.Open(d.ArtifactPath)
	if err != nil {
		d.Reason = domain.ReasonUnreadable
		return d, nil
	}
	header := cfg.Header()
	_ = cfg.Close()

	src, err := o.sources.Load(ctx, source)
	if err != nil {
		return d, err
	}
	if src.Unit.ContentHash != header.SourceHash {
		d.Reason = domain.ReasonHashChanged
		return d, nil
	}
	d.Action = domain.ActionLoaded
	d.Reason = domain.ReasonCurrent
	return d, nil
}

func statError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return domain.PathError(domain.ErrNotFound, path, err)
	}
	return domain.PathError(domain.ErrIO, path, err)
}

// Compile rebuilds the artifact of source unconditionally. Concurrent
// compiles of the same artifact share one run.
func (o *Orchestrator) Compile(ctx context.Context, source string) (*domain.CompilationRecord, error) {
	return o.compile(ctx, filepath.Clean(source), domain.ReasonForced)
}

func (o *Orchestrator) compile(ctx context.Context, source string, reason domain.Reason) (*domain.CompilationRecord, error) {
	artifactPath := o.ArtifactPath(source)
	v, err, _ := o.group.Do(artifactPath, func() (any, error) {
		return o.compiler.CompileFile(ctx, source, artifactPath)
	})
	if err != nil {
		return nil, err
	}
	rec := *v.(*domain.CompilationRecord)
	rec.Reason = reason
	return &rec, nil
}

// Load returns the opened configuration of source, compiling it first when
// its artifact is missing, stale or unreadable. The caller owns the returned
// Config and must close it.
func (o *Orchestrator) Load(ctx context.Context, source string) (*loader.Config, *domain.CompilationRecord, error) {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "load")
	defer span.End()
	span.SetAttribute("source", source)

	cfg, rec, err := o.load(ctx, filepath.Clean(source), start)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	span.SetAttribute("action", rec.Action.String())
	span.SetAttribute("reason", rec.Reason.String())
	span.SetAttribute("artifact.bytes", rec.ArtifactSize)
	return cfg, rec, nil
}

func (o *Orchestrator) load(ctx context.Context, source string, start time.Time) (*loader.Config, *domain.CompilationRecord, error) {
	d, err := o.Decide(ctx, source)
	if err != nil {
		return nil, nil, err
	}

	var compiled *domain.CompilationRecord
	if d.Action == domain.ActionCompiled {
		if compiled, err = o.compile(ctx, source, d.Reason); err != nil {
			return nil, nil, err
		}
	}

	cfg, err := o.loader.Open(d.ArtifactPath)
	if err != nil && compiled == nil && isUnreadable(err) {
		// The artifact went bad between the decision and the open.
		o.logger.Warn("recompiling unreadable artifact " + d.ArtifactPath)
		if compiled, err = o.compile(ctx, source, domain.ReasonUnreadable); err != nil {
			return nil, nil, err
		}
		cfg, err = o.loader.Open(d.ArtifactPath)
	}
	if err != nil {
		return nil, nil, err
	}

	if compiled != nil {
		return cfg, compiled, nil
	}
	rec, err := o.loadRecord(ctx, cfg, d, start)
	if err != nil {
		_ = cfg.Close()
		return nil, nil, err
	}
	return cfg, rec, nil
}

func isUnreadable(err error) bool {
	return errors.Is(err, domain.ErrCorruptArtifact) || errors.Is(err, domain.ErrVersionMismatch)
}

func (o *Orchestrator) loadRecord(ctx context.Context, cfg *loader.Config, d domain.Decision, start time.Time) (*domain.CompilationRecord, error) {
	srcInfo, err := os.Stat(d.SourcePath)
	if err != nil {
		return nil, statError(d.SourcePath, err)
	}
	artInfo, err := os.Stat(d.ArtifactPath)
	if err != nil {
		return nil, statError(d.ArtifactPath, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.PathError(domain.ErrCancelled, d.SourcePath, err)
	}
	h := cfg.Header()
	ratio := 1.0
	if h.StoredSize > 0 {
		ratio = float64(h.RawSize) / float64(h.StoredSize)
	}
	return &domain.CompilationRecord{
		SourcePath:       d.SourcePath,
		ArtifactPath:     d.ArtifactPath,
		SourceHash:       h.SourceHash,
		SourceSize:       srcInfo.Size(),
		ArtifactSize:     artInfo.Size(),
		PayloadSize:      int64(h.RawSize),
		CompressionRatio: ratio,
		Codec:            h.Codec,
		Route:            o.sources.RouteFor(srcInfo.Size()),
		Action:           domain.ActionLoaded,
		Reason:           d.Reason,
		Elapsed:          time.Since(start),
		CompiledAt:       h.Created(),
	}, nil
}

// Process brings the artifact of source up to date and verifies that it
// loads.
func (o *Orchestrator) Process(ctx context.Context, source string) (*domain.CompilationRecord, error) {
	cfg, rec, err := o.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	return rec, cfg.Close()
}

// Batch processes every source with at most MaxParallelism in flight. With
// force set every source is recompiled. One failure does not stop the
// others; results keep the order of sources.
func (o *Orchestrator) Batch(ctx context.Context, sources []string, force bool) *domain.BatchReport {
	start := time.Now()
	ctx, span := o.tracer.Start(ctx, "batch")
	defer span.End()
	span.SetAttribute("files", len(sources))

	results := make([]domain.BatchResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxParallelism)
	for i, src := range sources {
		g.Go(func() error {
			results[i].Path = src
			if err := gctx.Err(); err != nil {
				results[i].Err = domain.PathError(domain.ErrCancelled, src, err)
				return nil
			}
			if force {
				results[i].Record, results[i].Err = o.Compile(gctx, src)
			} else {
				results[i].Record, results[i].Err = o.Process(gctx, src)
			}
			return nil
		})
	}
	_ = g.Wait()

	report := &domain.BatchReport{Results: results, Stats: Summarize(results, time.Since(start))}
	span.SetAttribute("succeeded", report.Stats.Succeeded)
	span.SetAttribute("failed", report.Stats.Failed)
	if err := report.Err(); err != nil {
		span.RecordError(err)
	}
	return report
}

// Refresh invalidates every changed path in the AST cache and recompiles
// each affected source that still exists, once.
func (o *Orchestrator) Refresh(ctx context.Context, changed ...string) *domain.BatchReport {
	seen := make(map[string]bool)
	var sources []string
	for _, c := range changed {
		for _, p := range o.cache.Invalidate(c) {
			if seen[p] {
				continue
			}
			seen[p] = true
			if _, err := os.Stat(p); err == nil {
				sources = append(sources, p)
			}
		}
	}
	return o.Batch(ctx, sources, true)
}

// Summarize aggregates batch results.
func Summarize(results []domain.BatchResult, elapsed time.Duration) domain.BatchStats {
	var s domain.BatchStats
	hits := 0
	for _, r := range results {
		if r.Err != nil || r.Record == nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.TotalSourceBytes += r.Record.SourceSize
		s.TotalArtifactBytes += r.Record.ArtifactSize
		if r.Record.Action == domain.ActionLoaded {
			s.Loaded++
			hits++
		} else {
			s.Compiled++
			if r.Record.CacheHit {
				hits++
			}
		}
	}
	s.Elapsed = elapsed
	if s.Succeeded > 0 {
		s.AvgArtifactSize = float64(s.TotalArtifactBytes) / float64(s.Succeeded)
		s.CacheHitRate = float64(hits) / float64(s.Succeeded)
	}
	if secs := elapsed.Seconds(); secs > 0 {
		s.Throughput = float64(s.TotalSourceBytes) / secs
	}
	return s
}
