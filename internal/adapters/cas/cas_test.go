package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tusk/internal/adapters/cas"
	"go.trai.ch/tusk/internal/adapters/fs"
	"go.trai.ch/tusk/internal/adapters/parser"
	"go.trai.ch/tusk/internal/core/domain"
)

func entry(t *testing.T, path, src string) *domain.CacheEntry {
	t.Helper()
	doc, diags := parser.New().ParseText(path, []byte(src))
	require.Empty(t, diags)
	hash := fs.NewHasher().Sum([]byte(src))
	return &domain.CacheEntry{
		Key:          domain.CacheKey(path, hash),
		Path:         path,
		ContentHash:  hash,
		Document:     doc,
		Dependencies: doc.Imports(),
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC),
	}
}

func openStore(t *testing.T) (*cas.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache", domain.ASTStoreFile)
	s, err := cas.OpenStore(path)
	require.NoError(t, err)
	return s, path
}

// Empty lists lose their backing slice through CBOR; compare them as equal.
var entryOpts = cmp.Options{cmpopts.EquateEmpty()}

func TestStore_PutGet(t *testing.T) {
	s, _ := openStore(t)
	defer s.Close()

	e := entry(t, "app.tsk", "@import \"db.tsk\"\n[server]\nport = 80 + 1\nlist = [1, \"a\", [], null]\n")
	require.NoError(t, s.Put(e))

	got, err := s.Get(e.Key)
	require.NoError(t, err)
	require.NotNil(t, got)
	if diff := cmp.Diff(e, got, entryOpts); diff != "" {
		t.Errorf("entry mismatch (-want +got):\n%s", diff)
	}

	missing, err := s.Get(e.Key + 1)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_OneVersionPerPath(t *testing.T) {
	s, _ := openStore(t)
	defer s.Close()

	v1 := entry(t, "app.tsk", "a = 1\n")
	v2 := entry(t, "app.tsk", "a = 2\n")
	require.NoError(t, s.Put(v1))
	require.NoError(t, s.Put(v2))

	old, err := s.Get(v1.Key)
	require.NoError(t, err)
	assert.Nil(t, old)

	cur, err := s.Get(v2.Key)
	require.NoError(t, err)
	assert.Equal(t, v2.ContentHash, cur.ContentHash)

	require.NoError(t, s.DeletePath("app.tsk"))
	cur, err = s.Get(v2.Key)
	require.NoError(t, err)
	assert.Nil(t, cur)
	require.NoError(t, s.DeletePath("app.tsk"))
}

func TestStore_PersistenceAndPurge(t *testing.T) {
	s, path := openStore(t)
	e := entry(t, "a.tsk", "x = 1\n")
	require.NoError(t, s.Put(e))
	require.NoError(t, s.Put(entry(t, "b.tsk", "y = 1\n")))
	require.NoError(t, s.Close())

	s, err := cas.OpenStore(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(e.Key)
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, s.Purge())
	got, err = s.Get(e.Key)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOpenStore_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, domain.PrivateFilePerm))

	_, err := cas.OpenStore(filepath.Join(blocker, "ast.db"))
	require.ErrorIs(t, err, domain.ErrIO)
}

func TestMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), domain.MetadataFile)
	m := cas.NewMetadata(path, fs.NewAtomicWriter())

	empty, err := m.Load()
	require.NoError(t, err)
	assert.Empty(t, empty.Paths)

	meta := domain.CacheMetadata{Paths: map[string]domain.PathMetadata{
		"app.tsk": {
			ContentHash:    domain.ContentHash{1, 2, 3},
			Dependencies:   []string{"db.tsk"},
			AccessCount:    4,
			LastAccessedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		"db.tsk": {Dependents: []string{"app.tsk"}},
	}}
	require.NoError(t, m.Save(meta))

	got, err := m.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.MetadataVersion, got.Version)
	if diff := cmp.Diff(meta.Paths, got.Paths, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, m.Remove())
	require.NoError(t, m.Remove())
	assert.NoFileExists(t, path)
}

func TestMetadata_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), domain.MetadataFile)
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0x00}, domain.PrivateFilePerm))

	got, err := cas.NewMetadata(path, fs.NewAtomicWriter()).Load()
	require.Error(t, err)
	assert.Empty(t, got.Paths)
}
