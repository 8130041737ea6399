package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tusk/internal/adapters/watcher"
)

type recorder struct {
	mu      sync.Mutex
	batches [][]string
}

func (r *recorder) record(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, paths)
}

func (r *recorder) get() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches
}

func TestDebouncer_CoalescesAndSorts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var r recorder
		d := watcher.NewDebouncer(100*time.Millisecond, r.record)

		d.Add("/conf/b.tsk")
		d.Add("/conf/a.tsk")
		d.Add("/conf/b.tsk")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/conf/a.tsk", "/conf/b.tsk"}}, r.get())
	})
}

func TestDebouncer_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var r recorder
		d := watcher.NewDebouncer(100*time.Millisecond, r.record)

		d.Add("/conf/a.tsk")
		time.Sleep(60 * time.Millisecond)
		d.Add("/conf/b.tsk")
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, r.get())

		time.Sleep(50 * time.Millisecond)
		synctest.Wait()
		require.Len(t, r.get(), 1)
		assert.Len(t, r.get()[0], 2)
	})
}

func TestDebouncer_Flush(t *testing.T) {
	tests := []struct {
		name string
		adds []string
		want [][]string
	}{
		{"empty", nil, nil},
		{"pending", []string{"/conf/x.tsk"}, [][]string{{"/conf/x.tsk"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				var r recorder
				d := watcher.NewDebouncer(100*time.Millisecond, r.record)
				for _, p := range tt.adds {
					d.Add(p)
				}
				d.Flush()
				assert.Equal(t, tt.want, r.get())

				// The stopped timer must not deliver the batch again.
				time.Sleep(200 * time.Millisecond)
				synctest.Wait()
				assert.Equal(t, tt.want, r.get())
			})
		})
	}
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var r recorder
		d := watcher.NewDebouncer(50*time.Millisecond, r.record)

		d.Add("/conf/a.tsk")
		d.Stop()
		d.Add("/conf/b.tsk")

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		d.Flush()
		assert.Empty(t, r.get())
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(50*time.Millisecond, nil)
		d.Add("/conf/a.tsk")
		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}
