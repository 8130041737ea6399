package ports

import "go.trai.ch/tusk/internal/core/domain"

//go:generate mockgen -source=codec.go -destination=mocks/mock_codec.go -package=mocks

// Codec compresses artifact payloads. Implementations must be safe for
// concurrent use.
type Codec interface {
	// ID returns the identifier written into the artifact header.
	ID() domain.Codec
	// Compress returns the compressed form of src, or domain.ErrIncompressible
	// when compression would not shrink it.
	Compress(src []byte) ([]byte, error)
	// Decompress restores exactly rawSize bytes from src.
	Decompress(src []byte, rawSize int) ([]byte, error)
}

// CodecSet resolves the codec recorded in an artifact header or chosen in
// configuration.
type CodecSet interface {
	// For returns the codec registered under id, or domain.ErrUnknownCodec.
	For(id domain.Codec) (Codec, error)
}
