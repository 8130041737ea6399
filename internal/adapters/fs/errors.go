package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"

	"go.trai.ch/tusk/internal/core/domain"
)

func openError(path string, err error) error {
	if errors.Is(err, iofs.ErrNotExist) {
		return domain.PathError(domain.ErrNotFound, path, err)
	}
	return domain.PathError(domain.ErrIO, path, err)
}

func faultError(path string, r any) error {
	return domain.PathError(domain.ErrIO, path, fmt.Errorf("page fault reading mapped file: %v", r))
}
