package astcache

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"go.trai.ch/tusk/internal/core/domain"
)

// Start launches the cleanup and warming loops. They stop on Close or when
// ctx is cancelled. Failures are logged and retried on the next tick.
func (c *Cache) Start(ctx context.Context) {
	ctx, c.stop = context.WithCancel(ctx)
	if c.opts.CleanupInterval > 0 && c.opts.CacheTTL > 0 {
		c.loop(ctx, c.opts.CleanupInterval, func(context.Context) {
			c.Cleanup(time.Now())
		})
	}
	if c.opts.WarmInterval > 0 && c.opts.WarmTopN > 0 {
		c.loop(ctx, c.opts.WarmInterval, c.Warm)
	}
}

func (c *Cache) loop(ctx context.Context, every time.Duration, tick func(context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				tick(ctx)
			}
		}
	}()
}

// Cleanup evicts every path that has not been accessed within CacheTTL of
// now and forgets its access statistics, so an idle path stays evicted until
// the next Get. It returns the number of evicted paths.
func (c *Cache) Cleanup(now time.Time) int {
	cutoff := now.Add(-c.opts.CacheTTL).UnixNano()
	n := 0
	c.stats.Range(func(k, v any) bool {
		if v.(*access).last.Load() >= cutoff {
			return true
		}
		// A concurrent Get may have touched the entry since the check.
		if !c.stats.CompareAndDelete(k, v) {
			return true
		}
		if c.evict(k.(string)) {
			n++
		}
		return true
	})
	c.evictions.Add(int64(n))
	return n
}

// Warm re-parses the most frequently accessed paths that are not in the
// memory tier, up to WarmTopN of them. Paths idle for longer than CacheTTL are
// left to Cleanup, and paths whose file is gone are forgotten.
func (c *Cache) Warm(ctx context.Context) {
	type candidate struct {
		path  string
		count int64
		last  int64
	}
	var cutoff int64
	if c.opts.CacheTTL > 0 {
		cutoff = time.Now().Add(-c.opts.CacheTTL).UnixNano()
	}
	var cold []candidate
	c.stats.Range(func(k, v any) bool {
		path := k.(string)
		if _, hot := c.byPath.Load(path); hot {
			return true
		}
		a := v.(*access)
		last := a.last.Load()
		if last < cutoff {
			return true
		}
		cold = append(cold, candidate{path: path, count: a.count.Load(), last: last})
		return true
	})
	slices.SortFunc(cold, func(a, b candidate) int {
		if r := cmp.Compare(b.count, a.count); r != 0 {
			return r
		}
		if r := cmp.Compare(b.last, a.last); r != 0 {
			return r
		}
		return cmp.Compare(a.path, b.path)
	})

	for _, cand := range cold[:min(len(cold), c.opts.WarmTopN)] {
		if ctx.Err() != nil {
			return
		}
		// Warming must not count as a user access.
		before := c.accessFor(cand.path)
		count, last := before.count.Load(), before.last.Load()
		_, err := c.Get(ctx, cand.path)
		before.count.Store(count)
		before.last.Store(last)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.stats.Delete(cand.path)
		case err != nil:
			c.logger.Warn("cache warm-up failed for " + cand.path + ": " + err.Error())
		}
	}
}
