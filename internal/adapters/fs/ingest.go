package fs

import (
	"bytes"
	"context"
	"os"
	"sync"
	"sync/atomic"

	"go.trai.ch/tusk/internal/adapters/simd"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

var _ ports.SourceLoader = (*Ingestor)(nil)

// maxPooledBuffer caps the capacity of buffers returned to the pool.
const maxPooledBuffer = 4 << 20

// Ingestor reads and normalizes source files. Files larger than the mmap
// threshold are mapped and normalized in parallel chunks; smaller files are
// read into pooled buffers.
type Ingestor struct {
	threshold   int64
	chunkSize   int
	parallelism int
	kernel      simd.Kernel
	hasher      ports.Hasher
	mapper      ports.FileMapper

	buffers sync.Pool

	mapped   atomic.Int64
	buffered atomic.Int64
	total    atomic.Int64
}

// NewIngestor creates an Ingestor with the thresholds from opts.
func NewIngestor(opts domain.Options, kernel simd.Kernel, hasher ports.Hasher, mapper ports.FileMapper) *Ingestor {
	return &Ingestor{
		threshold:   opts.MmapThreshold,
		chunkSize:   opts.ChunkSize,
		parallelism: opts.MaxParallelism,
		kernel:      kernel,
		hasher:      hasher,
		mapper:      mapper,
		buffers: sync.Pool{
			New: func() any { return new(bytes.Buffer) },
		},
	}
}

// RouteFor reports the route a file of the given size takes.
func (in *Ingestor) RouteFor(size int64) domain.Route {
	if size > in.threshold {
		return domain.RouteMapped
	}
	return domain.RouteBuffered
}

// Stats returns the route counters accumulated so far.
func (in *Ingestor) Stats() domain.IngestStats {
	return domain.IngestStats{
		Mapped:   in.mapped.Load(),
		Buffered: in.buffered.Load(),
		Bytes:    in.total.Load(),
	}
}

// Load reads path, normalizes it and fills in its SourceUnit. The content
// hash covers the bytes on disk, so an edit that only changes line endings
// or the BOM still yields a new hash.
func (in *Ingestor) Load(ctx context.Context, path string) (*domain.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, openError(path, err)
	}
	if info.IsDir() {
		return nil, domain.PathError(domain.ErrIO, path, os.ErrInvalid)
	}

	route := in.RouteFor(info.Size())
	var (
		data []byte
		sum  domain.ContentHash
	)
	if route == domain.RouteMapped {
		in.mapped.Add(1)
		data, sum, err = in.loadMapped(ctx, path)
	} else {
		in.buffered.Add(1)
		data, sum, err = in.loadBuffered(ctx, path)
	}
	if err != nil {
		return nil, err
	}
	in.total.Add(info.Size())

	return &domain.Source{
		Unit: domain.SourceUnit{
			Path:        path,
			ContentHash: sum,
			ModTime:     info.ModTime(),
			Size:        info.Size(),
		},
		Data:    data,
		Route:   route,
		Variant: in.kernel.Variant(),
	}, nil
}

func (in *Ingestor) loadBuffered(ctx context.Context, path string) ([]byte, domain.ContentHash, error) {
	var sum domain.ContentHash
	if err := ctx.Err(); err != nil {
		return nil, sum, domain.PathError(domain.ErrCancelled, path, err)
	}

	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return nil, sum, openError(path, err)
	}
	defer f.Close() //nolint:errcheck // Read-only file

	buf, _ := in.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		if buf.Cap() <= maxPooledBuffer {
			in.buffers.Put(buf)
		}
	}()

	if _, err := buf.ReadFrom(f); err != nil {
		return nil, sum, domain.PathError(domain.ErrIO, path, err)
	}

	sum = in.hasher.Sum(buf.Bytes())
	src := simd.StripBOM(buf.Bytes())
	return in.kernel.Normalize(make([]byte, 0, len(src)), src), sum, nil
}

func (in *Ingestor) loadMapped(ctx context.Context, path string) ([]byte, domain.ContentHash, error) {
	var sum domain.ContentHash
	m, err := in.mapper.Map(path)
	if err != nil {
		return nil, sum, err
	}
	defer m.Close() //nolint:errcheck // Unmap failure leaves nothing to recover

	raw := m.Bytes()
	src := simd.StripBOM(raw)
	ends := simd.Boundaries(src, in.chunkSize)
	chunks := make([][]byte, len(ends))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.parallelism)

	g.Go(func() (err error) {
		if err := gctx.Err(); err != nil {
			return err
		}
		sum, err = in.hashMapped(path, raw)
		return err
	})

	start := 0
	for i, end := range ends {
		chunk := src[start:end]
		start = end
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := in.normalizeChunk(path, chunk)
			chunks[i] = out
			return err
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, sum, domain.PathError(domain.ErrCancelled, path, ctx.Err())
		}
		return nil, sum, err
	}
	if err := ctx.Err(); err != nil {
		return nil, sum, domain.PathError(domain.ErrCancelled, path, err)
	}

	size := 0
	for _, c := range chunks {
		size += len(c)
	}
	data := make([]byte, 0, size)
	for _, c := range chunks {
		data = append(data, c...)
	}
	return data, sum, nil
}

func (in *Ingestor) hashMapped(path string, raw []byte) (sum domain.ContentHash, err error) {
	old := guardFaults()
	defer func() {
		restoreFaults(old)
		if r := recover(); r != nil {
			sum, err = domain.ContentHash{}, faultError(path, r)
		}
	}()
	return in.hasher.Sum(raw), nil
}

func (in *Ingestor) normalizeChunk(path string, chunk []byte) (out []byte, err error) {
	old := guardFaults()
	defer func() {
		restoreFaults(old)
		if r := recover(); r != nil {
			out, err = nil, faultError(path, r)
		}
	}()
	return in.kernel.Normalize(make([]byte, 0, len(chunk)), chunk), nil
}
