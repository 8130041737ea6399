//go:build unix

package fs

import (
	"os"
	"runtime/debug"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"golang.org/x/sys/unix"
)

var _ ports.FileMapper = (*Mapper)(nil)

// Mapper memory-maps files read-only.
type Mapper struct{}

// NewMapper creates a new Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Mapping is a read-only shared mapping of a whole file.
type Mapping struct {
	data []byte
}

// Map maps the file at path. Empty files yield an empty mapping.
func (m *Mapper) Map(path string) (ports.MappedFile, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close() //nolint:errcheck // The mapping outlives the descriptor

	info, err := f.Stat()
	if err != nil {
		return nil, domain.PathError(domain.ErrIO, path, err)
	}
	if info.Size() == 0 {
		return &Mapping{}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(info.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, domain.PathError(domain.ErrIO, path, err)
	}
	return &Mapping{data: data}, nil
}

// Bytes returns the mapped bytes.
func (m *Mapping) Bytes() []byte {
	return m.data
}

// Close unmaps the file.
func (m *Mapping) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}

// guardFaults turns a SIGBUS from a file truncated under the mapping into a
// recoverable panic for the calling goroutine. Pair it with restoreFaults.
func guardFaults() bool {
	return debug.SetPanicOnFault(true)
}

func restoreFaults(old bool) {
	debug.SetPanicOnFault(old)
}
