package app

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.trai.ch/tusk/internal/adapters/watcher"
)

// WatchOptions configure Watch.
type WatchOptions struct {
	RunOptions
	// Debounce is how long to wait for a burst of changes to settle. Zero
	// selects watcher.DefaultDebounceWindow.
	Debounce time.Duration
	// OnBatch receives the initial build and every rebuild.
	OnBatch func(*Report)
}

// Watch builds every source below root and then rebuilds the sources
// affected by each change until ctx is cancelled.
func (a *App) Watch(ctx context.Context, root string, opts WatchOptions) (err error) {
	s, err := a.open(ctx, opts.RunOptions)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.close(context.WithoutCancel(ctx)))
	}()

	notify := opts.OnBatch
	if notify == nil {
		notify = func(*Report) {}
	}

	initial := slices.Collect(a.finder.Walk(root))
	notify(s.report(s.orch.Batch(ctx, initial, false)))

	if err := a.watcher.Start(ctx, root); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, a.watcher.Stop())
	}()
	a.logger.Info("watching " + root)

	changes := make(chan []string)
	window := opts.Debounce
	if window <= 0 {
		window = watcher.DefaultDebounceWindow
	}
	debouncer := watcher.NewDebouncer(window, func(paths []string) {
		select {
		case changes <- paths:
		case <-ctx.Done():
		}
	})
	defer debouncer.Stop()

	go func() {
		for ev := range a.watcher.Events() {
			debouncer.Add(ev.Path)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			batch := s.orch.Refresh(ctx, paths...)
			if len(batch.Results) == 0 {
				continue
			}
			notify(s.report(batch))
		}
	}
}
