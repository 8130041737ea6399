package cas

import (
	"errors"
	"io/fs"
	"os"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.MetadataStore = (*Metadata)(nil)

// Metadata persists the cache sidecar as a single CBOR document.
type Metadata struct {
	path   string
	writer ports.ArtifactWriter
}

// NewMetadata creates a sidecar store at path.
func NewMetadata(path string, writer ports.ArtifactWriter) *Metadata {
	return &Metadata{path: path, writer: writer}
}

// Load returns the stored metadata. A missing file or an older schema
// version yields empty metadata.
func (m *Metadata) Load() (domain.CacheMetadata, error) {
	empty := domain.CacheMetadata{Version: domain.MetadataVersion, Paths: map[string]domain.PathMetadata{}}

	//nolint:gosec // Path is derived from configuration
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return empty, nil
		}
		return empty, domain.PathError(domain.ErrIO, m.path, err)
	}

	var meta domain.CacheMetadata
	if err := unmarshal(data, &meta); err != nil {
		return empty, zerr.With(zerr.Wrap(err, "failed to decode cache metadata"), "path", m.path)
	}
	if meta.Version != domain.MetadataVersion {
		return empty, nil
	}
	if meta.Paths == nil {
		meta.Paths = map[string]domain.PathMetadata{}
	}
	return meta, nil
}

// Save replaces the sidecar.
func (m *Metadata) Save(meta domain.CacheMetadata) error {
	meta.Version = domain.MetadataVersion
	data, err := marshal(meta)
	if err != nil {
		return zerr.Wrap(err, "failed to encode cache metadata")
	}
	return m.writer.WriteAtomic(m.path, data)
}

// Remove deletes the sidecar.
func (m *Metadata) Remove() error {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.PathError(domain.ErrIO, m.path, err)
	}
	return nil
}
