package fs

import (
	"github.com/zeebo/blake3"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes BLAKE3-256 content hashes.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Sum returns the BLAKE3-256 digest of data.
func (h *Hasher) Sum(data []byte) domain.ContentHash {
	return blake3.Sum256(data)
}
