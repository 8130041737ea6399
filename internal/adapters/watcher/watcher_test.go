package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tusk/internal/adapters/watcher"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"go.trai.ch/tusk/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func startWatcher(t *testing.T, root string) *watcher.Watcher {
	t.Helper()
	log := mocks.NewMockLogger(gomock.NewController(t))
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(log)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	require.NoError(t, w.Start(ctx, root))
	return w
}

// next returns the first event for path, giving up after a few seconds.
func next(t *testing.T, w *watcher.Watcher, path string) ports.WatchEvent {
	t.Helper()
	found := make(chan ports.WatchEvent, 1)
	go func() {
		for ev := range w.Events() {
			if ev.Path == path {
				found <- ev
				return
			}
		}
	}()
	select {
	case ev := <-found:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatalf("no event for %s", path)
		return ports.WatchEvent{}
	}
}

func TestWatcher_ReportsSources(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	// Artifacts are filtered out, so the first event seen is the source.
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.tskb"), []byte("x"), domain.PrivateFilePerm))
	src := filepath.Join(root, "app.tsk")
	require.NoError(t, os.WriteFile(src, []byte("a = 1\n"), domain.PrivateFilePerm))

	ev := next(t, w, src)
	assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, ev.Operation)
}

func TestWatcher_NewDirectoriesAreWatched(t *testing.T) {
	root := t.TempDir()
	w := startWatcher(t, root)

	sub := filepath.Join(root, "nested")
	require.NoError(t, os.Mkdir(sub, domain.DirPerm))
	// Give the watch loop a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)

	src := filepath.Join(sub, "db.tsk")
	require.NoError(t, os.WriteFile(src, []byte("port = 5432\n"), domain.PrivateFilePerm))
	next(t, w, src)
}

func TestWatcher_StartMissingRoot(t *testing.T) {
	log := mocks.NewMockLogger(gomock.NewController(t))
	w, err := watcher.NewWatcher(log)
	require.NoError(t, err)
	defer w.Stop()

	err = w.Start(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, domain.ErrNotFound)
}
