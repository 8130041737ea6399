// Package codec provides the payload compression strategies used by artifacts.
package codec

import (
	"strconv"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
	"go.trai.ch/zerr"
)

// Set holds one instance of every built-in codec.
type Set struct {
	codecs map[domain.Codec]ports.Codec
}

var _ ports.CodecSet = (*Set)(nil)

// NewSet returns a Set with the none, lz4 and zstd codecs registered.
func NewSet() (*Set, error) {
	z, err := NewZstd()
	if err != nil {
		return nil, err
	}
	return &Set{codecs: map[domain.Codec]ports.Codec{
		domain.CodecNone: None{},
		domain.CodecLZ4:  LZ4{},
		domain.CodecZstd: z,
	}}, nil
}

// For returns the codec registered under id.
func (s *Set) For(id domain.Codec) (ports.Codec, error) {
	c, ok := s.codecs[id]
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownCodec, id.String()), "id", strconv.Itoa(int(id)))
	}
	return c, nil
}

// None stores payloads verbatim.
type None struct{}

// ID returns domain.CodecNone.
func (None) ID() domain.Codec { return domain.CodecNone }

// Compress always reports the payload as incompressible.
func (None) Compress([]byte) ([]byte, error) { return nil, domain.ErrIncompressible }

// Decompress returns src after checking its length.
func (None) Decompress(src []byte, rawSize int) ([]byte, error) {
	if len(src) != rawSize {
		return nil, sizeMismatch("none", len(src), rawSize)
	}
	return src, nil
}

// LZ4 is block-mode LZ4.
type LZ4 struct{}

// ID returns domain.CodecLZ4.
func (LZ4) ID() domain.Codec { return domain.CodecLZ4 }

// Compress compresses src as a single LZ4 block.
func (LZ4) Compress(src []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(src)))
	n, err := lz4.CompressBlock(src, dst, nil)
	if err != nil {
		return nil, zerr.Wrap(err, "lz4 compress")
	}
	// CompressBlock returns 0 for incompressible input.
	if n == 0 || n >= len(src) {
		return nil, domain.ErrIncompressible
	}
	return dst[:n], nil
}

// Decompress restores an LZ4 block of exactly rawSize bytes.
func (LZ4) Decompress(src []byte, rawSize int) ([]byte, error) {
	dst := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil {
		return nil, zerr.Wrap(err, "lz4 decompress")
	}
	if n != rawSize {
		return nil, sizeMismatch("lz4", n, rawSize)
	}
	return dst, nil
}

// Zstd compresses with zstd at the default level. The encoder and decoder
// are safe for concurrent use and shared by every call.
type Zstd struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstd creates the shared zstd encoder and decoder.
func NewZstd() (*Zstd, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, zerr.Wrap(err, "zstd encoder")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, zerr.Wrap(err, "zstd decoder")
	}
	return &Zstd{enc: enc, dec: dec}, nil
}

// ID returns domain.CodecZstd.
func (*Zstd) ID() domain.Codec { return domain.CodecZstd }

// Compress compresses src as one zstd frame.
func (z *Zstd) Compress(src []byte) ([]byte, error) {
	out := z.enc.EncodeAll(src, nil)
	if len(out) >= len(src) {
		return nil, domain.ErrIncompressible
	}
	return out, nil
}

// Decompress restores one zstd frame of exactly rawSize bytes.
func (z *Zstd) Decompress(src []byte, rawSize int) ([]byte, error) {
	out, err := z.dec.DecodeAll(src, make([]byte, 0, rawSize))
	if err != nil {
		return nil, zerr.Wrap(err, "zstd decompress")
	}
	if len(out) != rawSize {
		return nil, sizeMismatch("zstd", len(out), rawSize)
	}
	return out, nil
}

func sizeMismatch(codec string, got, want int) error {
	err := zerr.With(zerr.New(codec+" payload size mismatch"), "got", got)
	return zerr.With(err, "want", want)
}
