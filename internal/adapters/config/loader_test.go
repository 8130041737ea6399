package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tusk/internal/adapters/config"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T, env map[string]string) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	return &config.Loader{
		Logger: log,
		Lookup: func(name string) (string, bool) {
			v, ok := env[name]
			return v, ok
		},
	}, log
}

func createFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), domain.PrivateFilePerm))
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	l, _ := newLoader(t, nil)

	opts, err := l.Load(dir)
	require.NoError(t, err)

	want := domain.DefaultOptions()
	want.CacheDir = filepath.Join(dir, domain.DefaultCachePath())
	assert.Equal(t, want, opts)
}

func TestLoad_DiscoversFileUpwards(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
version: "1"
mmap_threshold: 64MiB
chunk_size: 4096
max_parallelism: 3
cache_ttl: 90s
cleanup_interval: 1m
warm_interval: 0s
warm_top_n: 2
compression: zstd
cache_dir: build/cache
artifact_ext: .bin
`)
	cwd := filepath.Join(root, "services", "api")
	require.NoError(t, os.MkdirAll(cwd, domain.DirPerm))

	l, _ := newLoader(t, nil)
	opts, err := l.Load(cwd)
	require.NoError(t, err)

	assert.Equal(t, int64(64<<20), opts.MmapThreshold)
	assert.Equal(t, 4096, opts.ChunkSize)
	assert.Equal(t, 3, opts.MaxParallelism)
	assert.Equal(t, 90*time.Second, opts.CacheTTL)
	assert.Equal(t, time.Minute, opts.CleanupInterval)
	assert.Zero(t, opts.WarmInterval)
	assert.Equal(t, 2, opts.WarmTopN)
	assert.Equal(t, domain.CodecZstd, opts.Compression)
	assert.Equal(t, filepath.Join(root, "build", "cache"), opts.CacheDir)
	assert.Equal(t, ".bin", opts.ArtifactExt)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, "compression: lz4\nchunk_size: 1KiB\n")

	abs := filepath.Join(t.TempDir(), "elsewhere")
	l, _ := newLoader(t, map[string]string{
		"TUSK_COMPRESSION":     "none",
		"TUSK_MMAP_THRESHOLD":  "1MB",
		"TUSK_MAX_PARALLELISM": "7",
		"TUSK_CACHE_TTL":       "2h",
		"TUSK_CACHE_DIR":       abs,
		"TUSK_WARM_TOP_N":      "",
	})
	opts, err := l.Load(root)
	require.NoError(t, err)

	assert.Equal(t, domain.CodecNone, opts.Compression)
	assert.Equal(t, 1024, opts.ChunkSize)
	assert.Equal(t, int64(1_000_000), opts.MmapThreshold)
	assert.Equal(t, 7, opts.MaxParallelism)
	assert.Equal(t, 2*time.Hour, opts.CacheTTL)
	assert.Equal(t, abs, opts.CacheDir)
	assert.Equal(t, domain.DefaultOptions().WarmTopN, opts.WarmTopN)
}

func TestLoad_UnknownVersionWarns(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, "version: \"9\"\n")

	l, log := newLoader(t, nil)
	log.EXPECT().Warn(gomock.Any()).Times(1)

	_, err := l.Load(root)
	require.NoError(t, err)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr error
	}{
		{"malformed yaml", "chunk_size: [1, 2\n", nil, domain.ErrConfigParseFailed},
		{"bad size", "chunk_size: lots\n", nil, domain.ErrInvalidConfig},
		{"bad duration", "cache_ttl: soon\n", nil, domain.ErrInvalidConfig},
		{"unknown codec", "compression: brotli\n", nil, domain.ErrUnknownCodec},
		{"zero parallelism", "max_parallelism: 0\n", nil, domain.ErrInvalidConfig},
		{"negative duration", "warm_interval: -1s\n", nil, domain.ErrInvalidConfig},
		{"bad env integer", "", map[string]string{"TUSK_MAX_PARALLELISM": "many"}, domain.ErrInvalidConfig},
		{"bad env duration", "", map[string]string{"TUSK_WARM_INTERVAL": "1 minute"}, domain.ErrInvalidConfig},
		{"bad env codec", "", map[string]string{"TUSK_COMPRESSION": "gzip"}, domain.ErrUnknownCodec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			createFile(t, root, domain.ConfigFileName, tt.content)
			l, _ := newLoader(t, tt.env)

			_, err := l.Load(root)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_Unreadable(t *testing.T) {
	root := t.TempDir()
	// A directory named tusk.yaml is skipped; an unreadable file is not.
	require.NoError(t, os.Mkdir(filepath.Join(root, domain.ConfigFileName), domain.DirPerm))
	l, _ := newLoader(t, nil)
	_, err := l.Load(root)
	require.NoError(t, err)

	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	other := t.TempDir()
	createFile(t, other, domain.ConfigFileName, "chunk_size: 1\n")
	require.NoError(t, os.Chmod(filepath.Join(other, domain.ConfigFileName), 0o000))
	_, err = l.Load(other)
	require.ErrorIs(t, err, domain.ErrConfigReadFailed)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"1048576", 1 << 20},
		{"100MiB", 100 << 20},
		{"10 KB", 10_000},
		{" 2GiB ", 2 << 30},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := config.ParseSize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := config.ParseSize("big")
	require.ErrorIs(t, err, domain.ErrInvalidConfig)
}
