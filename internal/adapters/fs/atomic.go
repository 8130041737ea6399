package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
)

var _ ports.ArtifactWriter = (*AtomicWriter)(nil)

// AtomicWriter writes files through a temporary sibling, fsync and rename.
type AtomicWriter struct{}

// NewAtomicWriter creates a new AtomicWriter.
func NewAtomicWriter() *AtomicWriter {
	return &AtomicWriter{}
}

// WriteAtomic replaces path with data. On failure the previous file is left
// untouched and the temporary file is removed.
func (w *AtomicWriter) WriteAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return domain.PathError(domain.ErrIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return domain.PathError(domain.ErrIO, path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return domain.PathError(domain.ErrIO, tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		return domain.PathError(domain.ErrIO, tmpName, err)
	}
	if err = tmp.Chmod(domain.FilePerm); err != nil {
		return domain.PathError(domain.ErrIO, tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return domain.PathError(domain.ErrIO, tmpName, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return domain.PathError(domain.ErrIO, path, err)
	}
	return nil
}
