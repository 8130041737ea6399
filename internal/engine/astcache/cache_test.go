package astcache_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tusk/internal/adapters/cas"
	"go.trai.ch/tusk/internal/adapters/fs"
	"go.trai.ch/tusk/internal/adapters/parser"
	"go.trai.ch/tusk/internal/adapters/simd"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"go.trai.ch/tusk/internal/core/ports/mocks"
	"go.trai.ch/tusk/internal/engine/astcache"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	dir    string
	opts   domain.Options
	logger *mocks.MockLogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()

	opts := domain.DefaultOptions()
	opts.MaxParallelism = 2
	return &fixture{dir: t.TempDir(), opts: opts, logger: logger}
}

func (f *fixture) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), domain.PrivateFilePerm))
	return path
}

func (f *fixture) cache(t *testing.T, p ports.Parser, store ports.ASTStore, meta ports.MetadataStore) *astcache.Cache {
	t.Helper()
	ing := fs.NewIngestor(f.opts, simd.Detect(), fs.NewHasher(), fs.NewMapper())
	c, err := astcache.New(ing, p, store, meta, f.logger, f.opts)
	require.NoError(t, err)
	return c
}

// countingParser delegates to the real parser and lets gomock count calls.
func countingParser(t *testing.T, times int) *mocks.MockParser {
	t.Helper()
	m := mocks.NewMockParser(gomock.NewController(t))
	m.EXPECT().ParseText(gomock.Any(), gomock.Any()).DoAndReturn(parser.New().ParseText).Times(times)
	return m
}

func TestGet_HitsNeverReparse(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "app.tsk", "a = 1\n")
	c := f.cache(t, countingParser(t, 1), nil, nil)
	defer c.Close()

	ctx := context.Background()
	first, err := c.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, domain.TierParsed, first.Tier)

	for range 3 {
		e, err := c.Get(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, domain.TierMemory, e.Tier)
		assert.Same(t, first.Document, e.Document)
	}

	stats := c.Stats()
	assert.Equal(t, int64(3), stats.MemoryHits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.InDelta(t, 0.75, stats.HitRate(), 1e-9)
}

func TestGet_ContentChangeReparses(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "app.tsk", "a = 1\n")
	c := f.cache(t, countingParser(t, 2), nil, nil)
	defer c.Close()

	ctx := context.Background()
	v1, err := c.Get(ctx, path)
	require.NoError(t, err)

	f.write(t, "app.tsk", "a = 2\n")
	v2, err := c.Get(ctx, path)
	require.NoError(t, err)

	assert.NotEqual(t, v1.Key, v2.Key)
	assert.Equal(t, domain.TierParsed, v2.Tier)
	assert.Equal(t, 1, c.Stats().Entries)

	h, ok := c.Hash(path)
	require.True(t, ok)
	assert.Equal(t, v2.ContentHash, h)
}

func TestGet_ParseFailuresAreNotCached(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "bad.tsk", "a = (1\n")
	c := f.cache(t, countingParser(t, 2), nil, nil)
	defer c.Close()

	for range 2 {
		_, err := c.Get(context.Background(), path)
		require.ErrorIs(t, err, domain.ErrParse)
	}
	assert.Equal(t, 0, c.Stats().Entries)
	assert.Zero(t, c.Stats().Misses)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)
	c := f.cache(t, countingParser(t, 0), nil, nil)
	defer c.Close()

	_, err := c.Get(context.Background(), filepath.Join(f.dir, "missing.tsk"))
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_ConcurrentMissesParseOnce(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "app.tsk", "a = 1\nb = [1, 2, 3]\n")
	c := f.cache(t, countingParser(t, 1), nil, nil)
	defer c.Close()

	var wg sync.WaitGroup
	for range 32 {
		wg.Go(func() {
			e, err := c.Get(context.Background(), path)
			assert.NoError(t, err)
			assert.NotNil(t, e)
		})
	}
	wg.Wait()
	assert.Equal(t, int64(32), c.Stats().Lookups())
}

func TestDiskTierAndSidecarSurviveRestart(t *testing.T) {
	f := newFixture(t)
	base := f.write(t, "base.tsk", "x = 1\n")
	app := f.write(t, "app.tsk", "@import \"base.tsk\"\ny = x\n")

	storePath := filepath.Join(f.dir, ".tusk", "cache", domain.ASTStoreFile)
	metaPath := filepath.Join(f.dir, ".tusk", "cache", domain.MetadataFile)
	open := func(times int) *astcache.Cache {
		store, err := cas.OpenStore(storePath)
		require.NoError(t, err)
		return f.cache(t, countingParser(t, times), store, cas.NewMetadata(metaPath, fs.NewAtomicWriter()))
	}

	c := open(2)
	_, err := c.Get(context.Background(), app)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), base)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c = open(0)
	defer c.Close()
	assert.Equal(t, []string{app}, c.Dependents(base))
	assert.Equal(t, []string{base}, c.Dependencies(app))

	e, err := c.Get(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, domain.TierDisk, e.Tier)
	assert.Equal(t, int64(1), c.Stats().DiskHits)

	e, err = c.Get(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, domain.TierMemory, e.Tier)
}

func TestInvalidate(t *testing.T) {
	f := newFixture(t)
	base := f.write(t, "base.tsk", "x = 1\n")
	mid := f.write(t, "mid.tsk", "@import \"base.tsk\"\n")
	top := f.write(t, "top.tsk", "@import mid.tsk\n")
	other := f.write(t, "other.tsk", "z = 1\n")

	c := f.cache(t, countingParser(t, 5), nil, nil)
	defer c.Close()

	ctx := context.Background()
	for _, p := range []string{base, mid, top, other} {
		_, err := c.Get(ctx, p)
		require.NoError(t, err)
	}

	evicted := c.Invalidate(base)
	assert.Equal(t, []string{base, mid, top}, evicted)
	assert.Equal(t, 1, c.Stats().Entries)
	assert.Equal(t, int64(3), c.Stats().Invalidations)

	_, known := c.Hash(base)
	assert.False(t, known)

	// Only the evicted file is parsed again.
	e, err := c.Get(ctx, top)
	require.NoError(t, err)
	assert.Equal(t, domain.TierParsed, e.Tier)
	e, err = c.Get(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, domain.TierMemory, e.Tier)
}

func TestInvalidate_Cycle(t *testing.T) {
	f := newFixture(t)
	a := f.write(t, "a.tsk", "@import b.tsk\n")
	b := f.write(t, "b.tsk", "@import a.tsk\n")

	c := f.cache(t, countingParser(t, 2), nil, nil)
	defer c.Close()
	for _, p := range []string{a, b} {
		_, err := c.Get(context.Background(), p)
		require.NoError(t, err)
	}

	assert.ElementsMatch(t, []string{a, b}, c.Invalidate(b))
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestCleanup_EvictsAfterTTL(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.opts.CacheTTL = time.Minute
		f.opts.CleanupInterval = 10 * time.Second
		f.opts.WarmInterval = 0
		path := f.write(t, "app.tsk", "a = 1\n")

		c := f.cache(t, countingParser(t, 1), nil, nil)
		_, err := c.Get(context.Background(), path)
		require.NoError(t, err)

		c.Start(context.Background())

		time.Sleep(30 * time.Second)
		synctest.Wait()
		assert.Equal(t, 1, c.Stats().Entries)

		time.Sleep(45 * time.Second)
		synctest.Wait()
		assert.Equal(t, 0, c.Stats().Entries)
		assert.Equal(t, int64(1), c.Stats().Evictions)

		require.NoError(t, c.Close())
	})
}

func TestWarm_RestoresHottestPaths(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.opts.CleanupInterval = 0
		f.opts.WarmInterval = 10 * time.Second
		f.opts.WarmTopN = 1
		hot := f.write(t, "hot.tsk", "a = 1\n")
		cold := f.write(t, "cold.tsk", "b = 1\n")

		c := f.cache(t, countingParser(t, 3), nil, nil)
		ctx := context.Background()
		for _, p := range []string{hot, hot, hot, cold} {
			_, err := c.Get(ctx, p)
			require.NoError(t, err)
		}
		c.Invalidate(hot)
		c.Invalidate(cold)
		require.Equal(t, 0, c.Stats().Entries)

		c.Start(ctx)
		time.Sleep(11 * time.Second)
		synctest.Wait()
		require.NoError(t, c.Close())

		assert.Equal(t, 1, c.Stats().Entries)
		assert.Equal(t, int64(3), c.Stats().Misses)
	})
}

func TestMaintenance_IdlePathStaysEvicted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		f.opts.CacheTTL = time.Minute
		f.opts.CleanupInterval = 10 * time.Second
		f.opts.WarmInterval = 10500 * time.Millisecond
		f.opts.WarmTopN = 4
		path := f.write(t, "app.tsk", "a = 1\n")

		c := f.cache(t, countingParser(t, 1), nil, nil)
		ctx := context.Background()
		_, err := c.Get(ctx, path)
		require.NoError(t, err)

		c.Start(ctx)
		time.Sleep(10 * time.Minute)
		synctest.Wait()
		require.NoError(t, c.Close())

		stats := c.Stats()
		assert.Equal(t, 0, stats.Entries)
		assert.Equal(t, int64(1), stats.Evictions)
		assert.Equal(t, int64(1), stats.Misses)
	})
}

func TestWarm_ForgetsDeletedFiles(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		f := newFixture(t)
		// No warning is expected: a vanished file is dropped silently.
		f.logger = mocks.NewMockLogger(gomock.NewController(t))
		f.opts.CleanupInterval = 0
		f.opts.WarmInterval = 10 * time.Second
		f.opts.WarmTopN = 1
		path := f.write(t, "gone.tsk", "a = 1\n")

		c := f.cache(t, countingParser(t, 1), nil, nil)
		ctx := context.Background()
		_, err := c.Get(ctx, path)
		require.NoError(t, err)
		c.Invalidate(path)
		require.NoError(t, os.Remove(path))

		c.Start(ctx)
		time.Sleep(time.Minute)
		synctest.Wait()
		require.NoError(t, c.Close())

		assert.Equal(t, 0, c.Stats().Entries)
	})
}

func TestPurgeAndClose(t *testing.T) {
	f := newFixture(t)
	path := f.write(t, "app.tsk", "a = 1\n")

	ctrl := gomock.NewController(t)
	store := mocks.NewMockASTStore(ctrl)
	meta := mocks.NewMockMetadataStore(ctrl)

	meta.EXPECT().Load().Return(domain.CacheMetadata{}, nil)
	store.EXPECT().Get(gomock.Any()).Return(nil, nil)
	store.EXPECT().Put(gomock.Any()).Return(nil)
	store.EXPECT().Purge().Return(nil)
	meta.EXPECT().Remove().Return(nil)

	c := f.cache(t, countingParser(t, 1), store, meta)
	_, err := c.Get(context.Background(), path)
	require.NoError(t, err)

	require.NoError(t, c.Purge())
	assert.Equal(t, 0, c.Stats().Entries)

	var saved domain.CacheMetadata
	meta.EXPECT().Save(gomock.Any()).DoAndReturn(func(md domain.CacheMetadata) error {
		saved = md
		return nil
	})
	store.EXPECT().Close().Return(nil)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Empty(t, saved.Paths)

	_, err = c.Get(context.Background(), path)
	require.ErrorIs(t, err, domain.ErrCacheClosed)
}

func TestNew_UnreadableMetadataIsIgnored(t *testing.T) {
	f := newFixture(t)
	ctrl := gomock.NewController(t)
	meta := mocks.NewMockMetadataStore(ctrl)
	meta.EXPECT().Load().Return(domain.CacheMetadata{}, assert.AnError)

	c := f.cache(t, countingParser(t, 0), nil, meta)
	assert.Empty(t, c.Dependencies("anything.tsk"))
}
