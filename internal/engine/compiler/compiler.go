// Package compiler turns parsed documents into .tskb artifacts.
package compiler

import (
	"context"
	"os"
	"time"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"go.trai.ch/tusk/internal/engine/artifact"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Compiler builds artifacts from the documents served by the AST cache.
type Compiler struct {
	cache   ports.ASTCache
	sources ports.SourceLoader
	codecs  ports.CodecSet
	writer  ports.ArtifactWriter
	tracer  ports.Tracer
	opts    domain.Options
	variant domain.Variant
	now     func() time.Time
}

// New creates a Compiler.
func New(
	cache ports.ASTCache,
	sources ports.SourceLoader,
	codecs ports.CodecSet,
	writer ports.ArtifactWriter,
	tracer ports.Tracer,
	opts domain.Options,
	variant domain.Variant,
) *Compiler {
	return &Compiler{
		cache:   cache,
		sources: sources,
		codecs:  codecs,
		writer:  writer,
		tracer:  tracer,
		opts:    opts,
		variant: variant,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for the artifact creation time.
func (c *Compiler) WithClock(now func() time.Time) *Compiler {
	c.now = now
	return c
}

// Build compiles doc into a complete artifact without touching the disk.
func (c *Compiler) Build(doc *domain.Document, hash domain.ContentHash) (*artifact.Assembled, error) {
	b, err := lower(doc)
	if err != nil {
		return nil, err
	}
	codec, err := c.codecs.For(c.opts.Compression)
	if err != nil {
		return nil, err
	}
	return b.Assemble(artifact.Options{
		CreatedAt:  c.now(),
		SourceHash: hash,
		Codec:      codec,
		Vectorized: c.variant == domain.VariantWide,
	})
}

// CompileFile compiles source and atomically replaces artifactPath. On any
// failure the previous artifact is left untouched.
func (c *Compiler) CompileFile(ctx context.Context, source, artifactPath string) (*domain.CompilationRecord, error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "compile")
	defer span.End()
	span.SetAttribute("source", source)

	record, err := c.compileFile(ctx, source, artifactPath, start)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("artifact.bytes", record.ArtifactSize)
	span.SetAttribute("payload.bytes", record.PayloadSize)
	span.SetAttribute("compression.ratio", record.CompressionRatio)
	span.SetAttribute("codec", record.Codec)
	span.SetAttribute("cache.hit", record.CacheHit)
	return record, nil
}

func (c *Compiler) compileFile(ctx context.Context, source, artifactPath string, start time.Time) (*domain.CompilationRecord, error) {
	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.PathError(domain.ErrNotFound, source, err)
		}
		return nil, domain.PathError(domain.ErrIO, source, err)
	}

	entry, err := c.cache.Get(ctx, source)
	if err != nil {
		return nil, err
	}
	parsed := time.Now()

	out, err := c.Build(entry.Document, entry.ContentHash)
	if err != nil {
		return nil, zerr.With(err, "source", source)
	}
	built := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, domain.PathError(domain.ErrCancelled, source, err)
	}
	if err := c.writer.WriteAtomic(artifactPath, out.Bytes); err != nil {
		return nil, err
	}
	written := time.Now()

	h := out.Header
	ratio := 1.0
	if h.StoredSize > 0 {
		ratio = float64(h.RawSize) / float64(h.StoredSize)
	}
	return &domain.CompilationRecord{
		SourcePath:       source,
		ArtifactPath:     artifactPath,
		SourceHash:       entry.ContentHash,
		SourceSize:       info.Size(),
		ArtifactSize:     int64(len(out.Bytes)),
		PayloadSize:      int64(h.RawSize),
		CompressionRatio: ratio,
		Codec:            h.Codec,
		Route:            c.sources.RouteFor(info.Size()),
		Action:           domain.ActionCompiled,
		CacheHit:         entry.Tier != domain.TierParsed,
		ParseDuration:    parsed.Sub(start),
		CompileDuration:  built.Sub(parsed),
		WriteDuration:    written.Sub(built),
		Elapsed:          written.Sub(start),
		CompiledAt:       h.Created(),
	}, nil
}

// Job names one source and the artifact it compiles to.
type Job struct {
	Source   string
	Artifact string
}

// CompileBatch compiles every job with at most MaxParallelism in flight.
// Results keep the order of jobs; one failure does not stop the others.
func (c *Compiler) CompileBatch(ctx context.Context, jobs []Job) []domain.BatchResult {
	results := make([]domain.BatchResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.MaxParallelism)
	for i, job := range jobs {
		g.Go(func() error {
			results[i].Path = job.Source
			if err := gctx.Err(); err != nil {
				results[i].Err = domain.PathError(domain.ErrCancelled, job.Source, err)
				return nil
			}
			results[i].Record, results[i].Err = c.CompileFile(gctx, job.Source, job.Artifact)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
