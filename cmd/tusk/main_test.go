package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tusk/internal/adapters/codec"
	"go.trai.ch/tusk/internal/adapters/fs"
	"go.trai.ch/tusk/internal/adapters/parser"
	"go.trai.ch/tusk/internal/adapters/telemetry"
	"go.trai.ch/tusk/internal/app"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func provide(c *app.Components) ComponentProvider {
	return func(context.Context) (*app.Components, func(), error) {
		return c, func() {}, nil
	}
}

// realApp wires the real engine with a mocked config loader rooted in dir.
func realApp(t *testing.T, ctrl *gomock.Controller, dir string, log *mocks.MockLogger) *app.App {
	t.Helper()
	opts := domain.DefaultOptions()
	opts.CacheDir = filepath.Join(dir, domain.DefaultCachePath())
	opts.WarmInterval = 0
	opts.CleanupInterval = 0

	loader := mocks.NewMockConfigLoader(ctrl)
	loader.EXPECT().Load(dir).Return(opts, nil).AnyTimes()
	set, err := codec.NewSet()
	require.NoError(t, err)
	return app.New(loader, log, parser.New(), set, fs.NewHasher(), fs.NewMapper(), fs.NewAtomicWriter(),
		fs.NewResolver(fs.NewWalker("")), mocks.NewMockWatcher(ctrl), telemetry.NewNoOpTracer()).WithDir(dir)
}

func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	dir := t.TempDir()
	src := filepath.Join(dir, "app.tsk")
	require.NoError(t, os.WriteFile(src, []byte("a = 1\nb = a + 2\n"), domain.PrivateFilePerm))

	c := &app.Components{App: realApp(t, ctrl, dir, log), Logger: log}
	stdout := new(bytes.Buffer)
	code := run(context.Background(), []string{"get", src, "b"}, stdout, new(bytes.Buffer), provide(c))

	assert.Equal(t, 0, code)
	assert.Equal(t, "3\n", stdout.String())
	assert.FileExists(t, filepath.Join(dir, "app.tskb"))
}

func TestRun_InitializationError(t *testing.T) {
	provider := func(context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	code := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	dir := t.TempDir()

	log.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}).Times(1)

	c := &app.Components{App: realApp(t, ctrl, dir, log), Logger: log}
	code := run(context.Background(), []string{"compile", filepath.Join(dir, "missing.tsk")},
		new(bytes.Buffer), new(bytes.Buffer), provide(c))
	assert.Equal(t, 1, code)
}

func TestRun_BatchFailureIsNotLoggedTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Error(gomock.Any()).Times(0)
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.tsk")
	require.NoError(t, os.WriteFile(bad, []byte("a = (1\n"), domain.PrivateFilePerm))

	c := &app.Components{App: realApp(t, ctrl, dir, log), Logger: log}
	stdout := new(bytes.Buffer)
	code := run(context.Background(), []string{"compile", "--memory-only", bad}, stdout, new(bytes.Buffer), provide(c))

	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "bad.tsk")
}
