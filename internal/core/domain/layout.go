package domain

import (
	"path/filepath"
	"strings"
)

const (
	// TuskDirName is the name of the internal workspace directory.
	TuskDirName = ".tusk"

	// CacheDirName is the name of the AST cache directory.
	CacheDirName = "cache"

	// ASTStoreFile is the bbolt file holding the disk tier.
	ASTStoreFile = "ast.db"

	// MetadataFile is the cache sidecar holding hashes and dependency edges.
	MetadataFile = "meta.cbor"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "tusk.yaml"

	// LevelFileName is the per-directory source merged by hierarchical loads.
	LevelFileName = "tusk.tsk"

	// SourceExt is the extension of configuration sources.
	SourceExt = ".tsk"

	// ArtifactExt is the default extension of compiled artifacts.
	ArtifactExt = ".tskb"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultCachePath returns the default directory of the AST cache.
// It joins .tusk and cache.
func DefaultCachePath() string {
	return filepath.Join(TuskDirName, CacheDirName)
}

// ArtifactPathFor returns the artifact path that sits next to source.
// A source without the .tsk extension keeps its full name.
func ArtifactPathFor(source, ext string) string {
	if ext == "" {
		ext = ArtifactExt
	}
	return strings.TrimSuffix(source, SourceExt) + ext
}
