package ports

import "iter"

//go:generate mockgen -source=files.go -destination=mocks/mock_files.go -package=mocks

// MappedFile is a read-only view of a file's bytes. Bytes must not be used
// after Close.
type MappedFile interface {
	Bytes() []byte
	Close() error
}

// FileMapper opens files for zero-copy reads.
type FileMapper interface {
	// Map returns a read-only view of the whole file at path.
	Map(path string) (MappedFile, error)
}

// ArtifactWriter commits files so that readers see either the old or the
// new content, never a partial write.
type ArtifactWriter interface {
	// WriteAtomic replaces path with data.
	WriteAtomic(path string, data []byte) error
}

// SourceFinder expands command-line arguments into source files.
type SourceFinder interface {
	// Expand resolves files, directories and glob patterns to a sorted,
	// de-duplicated list of source files.
	Expand(args []string) ([]string, error)
	// Walk yields every source file below root.
	Walk(root string) iter.Seq[string]
}
