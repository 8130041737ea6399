package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tusk/internal/adapters/fs"
	"go.trai.ch/tusk/internal/adapters/simd"
	"go.trai.ch/tusk/internal/core/domain"
)

func newIngestor(opts domain.Options) *fs.Ingestor {
	return fs.NewIngestor(opts, simd.Detect(), fs.NewHasher(), fs.NewMapper())
}

func TestIngestor_RouteBySize(t *testing.T) {
	dir := t.TempDir()

	// 500 MiB sparse file: mapped route.
	big := filepath.Join(dir, "big.tsk")
	f, err := os.Create(big)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(500<<20))
	require.NoError(t, f.Close())

	// 10 KiB file: buffered route.
	small := filepath.Join(dir, "small.tsk")
	writeFile(t, small, strings.Repeat("k = 1\n", 10<<10/6))

	ing := newIngestor(domain.DefaultOptions())
	assert.Equal(t, domain.RouteMapped, ing.RouteFor(500<<20))
	assert.Equal(t, domain.RouteBuffered, ing.RouteFor(10<<10))

	// A cancelled context keeps the test from normalizing 500 MiB while
	// still taking the mapped route.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ing.Load(ctx, big)
	require.ErrorIs(t, err, domain.ErrCancelled)

	src, err := ing.Load(context.Background(), small)
	require.NoError(t, err)
	assert.Equal(t, domain.RouteBuffered, src.Route)

	stats := ing.Stats()
	assert.Equal(t, int64(1), stats.Mapped)
	assert.Equal(t, int64(1), stats.Buffered)
}

func TestIngestor_RoutesAgree(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.tsk")
	writeFile(t, path, "\xEF\xBB\xBF"+strings.Repeat("[server]\r\nport = 8080\r\nhost = \"a\rb\"\r\n", 300))

	buffered := newIngestor(domain.DefaultOptions())

	opts := domain.DefaultOptions()
	opts.MmapThreshold = 1
	opts.ChunkSize = 7
	opts.MaxParallelism = 3
	mapped := newIngestor(opts)

	a, err := buffered.Load(context.Background(), path)
	require.NoError(t, err)
	b, err := mapped.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, domain.RouteBuffered, a.Route)
	assert.Equal(t, domain.RouteMapped, b.Route)
	assert.Equal(t, a.Data, b.Data)
	assert.Equal(t, a.Unit.ContentHash, b.Unit.ContentHash)
	assert.False(t, strings.Contains(string(a.Data), "\r\n"))
	assert.True(t, strings.HasPrefix(string(a.Data), "[server]\n"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fs.NewHasher().Sum(raw), a.Unit.ContentHash)
}

func TestIngestor_HashCoversLineEndings(t *testing.T) {
	dir := t.TempDir()
	lf := filepath.Join(dir, "lf.tsk")
	crlf := filepath.Join(dir, "crlf.tsk")
	bom := filepath.Join(dir, "bom.tsk")
	writeFile(t, lf, "a = 1\nb = 2\n")
	writeFile(t, crlf, "a = 1\r\nb = 2\r\n")
	writeFile(t, bom, "\xEF\xBB\xBFa = 1\nb = 2\n")

	ing := newIngestor(domain.DefaultOptions())
	load := func(path string) *domain.Source {
		src, err := ing.Load(context.Background(), path)
		require.NoError(t, err)
		return src
	}
	a, b, c := load(lf), load(crlf), load(bom)

	assert.Equal(t, a.Data, b.Data)
	assert.Equal(t, a.Data, c.Data)
	assert.NotEqual(t, a.Unit.ContentHash, b.Unit.ContentHash)
	assert.NotEqual(t, a.Unit.ContentHash, c.Unit.ContentHash)
}

func TestIngestor_Errors(t *testing.T) {
	ing := newIngestor(domain.DefaultOptions())

	_, err := ing.Load(context.Background(), filepath.Join(t.TempDir(), "missing.tsk"))
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = ing.Load(context.Background(), t.TempDir())
	require.ErrorIs(t, err, domain.ErrIO)

	path := filepath.Join(t.TempDir(), "a.tsk")
	writeFile(t, path, "a = 1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ing.Load(ctx, path)
	require.ErrorIs(t, err, domain.ErrCancelled)
}

func TestIngestor_Concurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.tsk")
	writeFile(t, path, strings.Repeat("a = 1\r\n", 1000))

	ing := newIngestor(domain.DefaultOptions())
	want, err := ing.Load(context.Background(), path)
	require.NoError(t, err)

	errs := make(chan error, 16)
	for range 16 {
		go func() {
			got, err := ing.Load(context.Background(), path)
			if err == nil && string(got.Data) != string(want.Data) {
				err = assert.AnError
			}
			errs <- err
		}()
	}
	for range 16 {
		require.NoError(t, <-errs)
	}
	assert.Equal(t, int64(17), ing.Stats().Buffered)
}
