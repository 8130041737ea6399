//go:build !unix

package fs

import (
	"os"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
)

var _ ports.FileMapper = (*Mapper)(nil)

// Mapper reads whole files on platforms without mmap.
type Mapper struct{}

// NewMapper creates a new Mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Mapping holds a file's bytes in memory.
type Mapping struct {
	data []byte
}

// Map reads the file at path.
func (m *Mapper) Map(path string) (ports.MappedFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return nil, openError(path, err)
	}
	return &Mapping{data: data}, nil
}

// Bytes returns the file bytes.
func (m *Mapping) Bytes() []byte {
	return m.data
}

// Close releases the bytes.
func (m *Mapping) Close() error {
	m.data = nil
	return nil
}

func guardFaults() bool { return false }

func restoreFaults(bool) {}
