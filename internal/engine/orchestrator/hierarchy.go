package orchestrator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Hierarchy returns the level files found walking up from dir, outermost
// first. It fails with ErrNotFound when no directory on the way has one.
func Hierarchy(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, domain.PathError(domain.ErrIO, dir, err)
	}

	var levels []string
	for cur := abs; ; {
		p := filepath.Join(cur, domain.LevelFileName)
		info, err := os.Stat(p)
		switch {
		case err == nil && info.Mode().IsRegular():
			levels = append(levels, p)
		case err != nil && !errors.Is(err, os.ErrNotExist) && !errors.Is(err, os.ErrPermission):
			return nil, statError(p, err)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	if len(levels) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrNotFound, "no "+domain.LevelFileName+" above directory"), "path", dir)
	}
	slices.Reverse(levels)
	return levels, nil
}

type level struct {
	keys   []string
	values map[string]domain.Value
	rec    *domain.CompilationRecord
}

// Cascade loads every level file of dir, compiling stale ones, and merges
// them so that deeper levels win. Levels load with at most MaxParallelism in
// flight; the first failing level fails the whole cascade.
func (o *Orchestrator) Cascade(ctx context.Context, dir string) (*domain.Cascade, error) {
	ctx, span := o.tracer.Start(ctx, "cascade")
	defer span.End()
	span.SetAttribute("dir", dir)

	files, err := Hierarchy(dir)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("levels", len(files))

	levels := make([]level, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxParallelism)
	for i, file := range files {
		g.Go(func() error {
			var err error
			levels[i], err = o.loadLevel(gctx, file)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	out := &domain.Cascade{
		Files:   files,
		Values:  make(map[string]domain.Value),
		Origins: make(map[string]string),
		Records: make([]*domain.CompilationRecord, 0, len(files)),
	}
	for i, l := range levels {
		out.Records = append(out.Records, l.rec)
		for _, k := range l.keys {
			if _, seen := out.Origins[k]; !seen {
				out.Keys = append(out.Keys, k)
			}
			out.Values[k] = l.values[k]
			out.Origins[k] = files[i]
		}
	}
	span.SetAttribute("keys", len(out.Keys))
	return out, nil
}

func (o *Orchestrator) loadLevel(ctx context.Context, file string) (level, error) {
	cfg, rec, err := o.Load(ctx, file)
	if err != nil {
		return level{}, err
	}
	defer cfg.Close()

	keys, err := cfg.Keys()
	if err != nil {
		return level{}, err
	}
	values, err := cfg.All()
	if err != nil {
		return level{}, err
	}
	return level{keys: keys, values: values, rec: rec}, nil
}

// Lookup returns the value of key from the deepest level file of dir that
// assigns it, together with that file. Shallower levels are only loaded
// when the deeper ones do not assign key. The returned file is empty when
// no level assigns key.
func (o *Orchestrator) Lookup(ctx context.Context, dir, key string) (domain.Value, string, error) {
	files, err := Hierarchy(dir)
	if err != nil {
		return domain.Value{}, "", err
	}
	for _, file := range slices.Backward(files) {
		v, ok, err := o.lookupLevel(ctx, file, key)
		if err != nil {
			return domain.Value{}, "", err
		}
		if ok {
			return v, file, nil
		}
	}
	return domain.Value{}, "", nil
}

func (o *Orchestrator) lookupLevel(ctx context.Context, file, key string) (domain.Value, bool, error) {
	cfg, _, err := o.Load(ctx, file)
	if err != nil {
		return domain.Value{}, false, err
	}
	defer cfg.Close()
	return cfg.Lookup(key)
}
