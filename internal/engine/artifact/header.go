// Package artifact encodes and decodes the .tskb artifact format: a fixed
// 104-byte little-endian header followed by a payload holding the strings,
// values and instructions sections.
package artifact

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/zerr"
)

// Header field offsets.
const (
	offMagic      = 0
	offVersion    = 4
	offFlags      = 6
	offCodec      = 8
	offSections   = 9
	offCreatedAt  = 12
	offSourceHash = 20
	offStoredSize = 52
	offRawSize    = 56
	offChecksum   = 60
	offIndex      = 68
	indexEntry    = 12
)

var le = binary.LittleEndian

// Limits on the decoded size of a compressed payload. Decoders allocate
// RawSize up front, so it must stay proportional to what is on disk.
const (
	MaxRawSize     = 1 << 30
	MaxExpansion   = 1024
	expansionSlack = 1 << 20
)

// RawSizeAllowed reports whether a payload of raw bytes may be stored
// compressed into stored bytes.
func RawSizeAllowed(raw, stored uint64) bool {
	return raw <= MaxRawSize && raw <= stored*MaxExpansion+expansionSlack
}

// EncodeHeader writes h into a new HeaderSize byte slice.
func EncodeHeader(h *domain.Header) []byte {
	b := make([]byte, domain.HeaderSize)
	copy(b[offMagic:], h.Magic[:])
	le.PutUint16(b[offVersion:], h.Version)
	le.PutUint16(b[offFlags:], uint16(h.Flags))
	b[offCodec] = byte(h.Codec)
	b[offSections] = h.Sections
	le.PutUint64(b[offCreatedAt:], uint64(h.CreatedAt))
	copy(b[offSourceHash:], h.SourceHash[:])
	le.PutUint32(b[offStoredSize:], h.StoredSize)
	le.PutUint32(b[offRawSize:], h.RawSize)
	le.PutUint64(b[offChecksum:], h.Checksum)
	for i, e := range h.Index {
		o := offIndex + i*indexEntry
		le.PutUint32(b[o:], e.Offset)
		le.PutUint32(b[o+4:], e.Length)
		le.PutUint32(b[o+8:], e.Count)
	}
	return b
}

// DecodeHeader validates and decodes the header at the start of data, which
// must be the whole artifact file. Magic and version are checked before
// anything else so unknown formats fail closed with ErrVersionMismatch.
func DecodeHeader(path string, data []byte) (domain.Header, error) {
	var h domain.Header
	if len(data) < offFlags {
		return h, Corrupt(path, "file shorter than format preamble")
	}
	copy(h.Magic[:], data[offMagic:])
	h.Version = le.Uint16(data[offVersion:])
	if string(h.Magic[:]) != domain.Magic {
		return h, mismatch(path, "bad magic", string(h.Magic[:]))
	}
	if h.Version != domain.FormatVersion {
		return h, mismatch(path, "unsupported version", h.Version)
	}
	if len(data) < domain.HeaderSize {
		return h, Corrupt(path, "truncated header")
	}

	h.Flags = domain.Flags(le.Uint16(data[offFlags:]))
	h.Codec = domain.Codec(data[offCodec])
	h.Sections = data[offSections]
	h.CreatedAt = int64(le.Uint64(data[offCreatedAt:]))
	copy(h.SourceHash[:], data[offSourceHash:])
	h.StoredSize = le.Uint32(data[offStoredSize:])
	h.RawSize = le.Uint32(data[offRawSize:])
	h.Checksum = le.Uint64(data[offChecksum:])
	for i := range h.Index {
		o := offIndex + i*indexEntry
		h.Index[i] = domain.SectionEntry{
			Offset: le.Uint32(data[o:]),
			Length: le.Uint32(data[o+4:]),
			Count:  le.Uint32(data[o+8:]),
		}
	}

	switch {
	case h.Sections != domain.SectionCount:
		return h, Corrupt(path, "unexpected section count")
	case int64(len(data)-domain.HeaderSize) != int64(h.StoredSize):
		return h, zerr.With(Corrupt(path, "payload size mismatch"), "stored_size", h.StoredSize)
	case h.Flags.Has(domain.FlagCompressed) == (h.Codec == domain.CodecNone):
		return h, Corrupt(path, "compression flag disagrees with codec")
	case !h.Flags.Has(domain.FlagCompressed) && h.RawSize != h.StoredSize:
		return h, Corrupt(path, "raw size mismatch")
	case h.Flags.Has(domain.FlagCompressed) && !RawSizeAllowed(uint64(h.RawSize), uint64(h.StoredSize)):
		return h, zerr.With(Corrupt(path, "raw size exceeds limit"), "raw_size", h.RawSize)
	}
	for k, e := range h.Index {
		if uint64(e.Offset)+uint64(e.Length) > uint64(h.RawSize) {
			return h, zerr.With(Corrupt(path, "section out of bounds"), "section", domain.SectionKind(k).String())
		}
	}
	return h, nil
}

// Stored returns the stored payload of a validated artifact.
func Stored(data []byte) []byte {
	return data[domain.HeaderSize:]
}

// Checksum is the integrity hash recorded in the header.
func Checksum(stored []byte) uint64 {
	return xxhash.Sum64(stored)
}

// VerifyChecksum compares the stored payload against the header checksum.
func VerifyChecksum(path string, h *domain.Header, stored []byte) error {
	if Checksum(stored) != h.Checksum {
		return Corrupt(path, "checksum mismatch")
	}
	return nil
}

// Corrupt tags path as a corrupt artifact with a short reason.
func Corrupt(path, reason string) error {
	return zerr.With(domain.PathError(domain.ErrCorruptArtifact, path, nil), "reason", reason)
}

func mismatch(path, reason string, got any) error {
	return zerr.With(zerr.With(domain.PathError(domain.ErrVersionMismatch, path, nil), "reason", reason), "found", got)
}
