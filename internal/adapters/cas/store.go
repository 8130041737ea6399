package cas

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ASTStore = (*Store)(nil)

const (
	bucketEntries = "entries"
	bucketPaths   = "paths"
)

// Store keeps parsed documents in a bbolt database. The entries bucket maps
// a cache key to a CBOR-encoded entry; the paths bucket maps a source path
// to its current key so that only one version per path is retained.
type Store struct {
	path string
	db   *bolt.DB
}

// OpenStore opens or creates the database at path.
func OpenStore(path string) (*Store, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, domain.PathError(domain.ErrIO, path, err)
	}
	db, err := bolt.Open(path, domain.PrivateFilePerm, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, domain.PathError(domain.ErrIO, path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketEntries, bucketPaths} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, domain.PathError(domain.ErrIO, path, err)
	}
	return &Store{path: path, db: db}, nil
}

func keyBytes(key uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], key)
	return b[:]
}

// Get returns the entry stored under key, or nil when absent.
func (s *Store) Get(key uint64) (*domain.CacheEntry, error) {
	var entry *domain.CacheEntry
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(bucketEntries)).Get(keyBytes(key))
		if data == nil {
			return nil
		}
		entry = new(domain.CacheEntry)
		if err := unmarshal(data, entry); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to decode cached entry"), "key", key)
		}
		return nil
	})
	if err != nil {
		return nil, domain.PathError(domain.ErrIO, s.path, err)
	}
	return entry, nil
}

// Put stores entry and drops any older version of the same path.
func (s *Store) Put(entry *domain.CacheEntry) error {
	data, err := marshal(entry)
	if err != nil {
		return zerr.Wrap(err, "failed to encode cache entry")
	}
	err = s.db.Update(func(tx *bolt.Tx) error {
		entries := tx.Bucket([]byte(bucketEntries))
		paths := tx.Bucket([]byte(bucketPaths))
		k := keyBytes(entry.Key)
		if old := paths.Get([]byte(entry.Path)); old != nil && string(old) != string(k) {
			if err := entries.Delete(old); err != nil {
				return err
			}
		}
		if err := entries.Put(k, data); err != nil {
			return err
		}
		return paths.Put([]byte(entry.Path), k)
	})
	if err != nil {
		return domain.PathError(domain.ErrIO, s.path, err)
	}
	return nil
}

// DeletePath removes the entry stored for path.
func (s *Store) DeletePath(path string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		paths := tx.Bucket([]byte(bucketPaths))
		k := paths.Get([]byte(path))
		if k == nil {
			return nil
		}
		if err := tx.Bucket([]byte(bucketEntries)).Delete(k); err != nil {
			return err
		}
		return paths.Delete([]byte(path))
	})
	if err != nil {
		return domain.PathError(domain.ErrIO, s.path, err)
	}
	return nil
}

// Purge removes every entry.
func (s *Store) Purge() error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{bucketEntries, bucketPaths} {
			if err := tx.DeleteBucket([]byte(name)); err != nil {
				return err
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.PathError(domain.ErrIO, s.path, err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
