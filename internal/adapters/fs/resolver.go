package fs

import (
	"iter"
	"os"
	"path/filepath"
	"slices"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceFinder = (*Resolver)(nil)

// Resolver expands command-line arguments into source files.
type Resolver struct {
	walker *Walker
}

// NewResolver creates a new Resolver.
func NewResolver(walker *Walker) *Resolver {
	return &Resolver{walker: walker}
}

// Walk yields every source file below root.
func (r *Resolver) Walk(root string) iter.Seq[string] {
	return r.walker.WalkFiles(root, nil)
}

// Expand resolves each argument as a directory, a file or a glob pattern.
func (r *Resolver) Expand(args []string) ([]string, error) {
	unique := make(map[string]struct{})

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			for path := range r.walker.WalkFiles(arg, nil) {
				unique[filepath.Clean(path)] = struct{}{}
			}
			continue
		case err == nil:
			unique[filepath.Clean(arg)] = struct{}{}
			continue
		}

		matches, globErr := filepath.Glob(arg)
		if globErr != nil {
			return nil, zerr.With(zerr.Wrap(globErr, "failed to glob path"), "path", arg)
		}
		if len(matches) == 0 {
			return nil, domain.PathError(domain.ErrNotFound, arg, err)
		}
		for _, match := range matches {
			unique[filepath.Clean(match)] = struct{}{}
		}
	}

	if len(unique) == 0 {
		return nil, domain.ErrNoInputs
	}

	result := make([]string, 0, len(unique))
	for path := range unique {
		result = append(result, path)
	}
	slices.Sort(result)

	return result, nil
}
