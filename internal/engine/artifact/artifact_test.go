package artifact_test

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tusk/internal/adapters/codec"
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/engine/artifact"
)

func sampleBuilder() *artifact.Builder {
	b := artifact.NewBuilder()
	port := b.Value(domain.Int(8080))
	host := b.Value(domain.String("localhost"))
	list := b.Value(domain.List(domain.Int(1), domain.List(domain.String("x"), domain.Bool(true)), domain.Float(2.5)))
	b.Emit(domain.OpSection, b.String("server"), 0)
	b.Emit(domain.OpSetConst, b.String("server.port"), port)
	b.Emit(domain.OpSetConst, b.String("server.host"), host)
	b.Emit(domain.OpSetConst, b.String("server.list"), list)
	return b
}

func TestBuilder_Interning(t *testing.T) {
	b := artifact.NewBuilder()
	assert.Equal(t, b.String("a"), b.String("a"))
	assert.NotEqual(t, b.String("a"), b.String("b"))
	assert.Equal(t, b.Value(domain.Int(1)), b.Value(domain.Int(1)))
	assert.NotEqual(t, b.Value(domain.Int(1)), b.Value(domain.Float(1)))
	assert.Equal(t, b.Value(domain.String("a")), b.Value(domain.String("a")))

	l1 := b.Value(domain.List(domain.Int(1)))
	l2 := b.Value(domain.List(domain.Int(1)))
	assert.NotEqual(t, l1, l2, "lists are not de-duplicated")
}

func TestHeader_RoundTrip(t *testing.T) {
	h := domain.Header{
		Version:    domain.FormatVersion,
		Flags:      domain.FlagCompressed | domain.FlagVectorized,
		Codec:      domain.CodecZstd,
		Sections:   domain.SectionCount,
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC).UnixNano(),
		SourceHash: domain.ContentHash{1, 2, 3},
		StoredSize: 3,
		RawSize:    32,
		Checksum:   0xdeadbeef,
		Index: [domain.SectionCount]domain.SectionEntry{
			{Offset: 0, Length: 4, Count: 0},
			{Offset: 4, Length: 16, Count: 1},
			{Offset: 20, Length: 12, Count: 1},
		},
	}
	copy(h.Magic[:], domain.Magic)

	data := append(artifact.EncodeHeader(&h), 'a', 'b', 'c')
	require.Len(t, data, domain.HeaderSize+3)

	got, err := artifact.DecodeHeader("x.tskb", data)
	require.NoError(t, err)
	if diff := cmp.Diff(h, got); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_Decode(t *testing.T) {
	set, err := codec.NewSet()
	require.NoError(t, err)

	for _, id := range []domain.Codec{domain.CodecNone, domain.CodecLZ4, domain.CodecZstd} {
		t.Run(id.String(), func(t *testing.T) {
			c, err := set.For(id)
			require.NoError(t, err)

			b := sampleBuilder()
			// Pad with a compressible string so compression always wins.
			b.Emit(domain.OpSetConst, b.String("pad"), b.Value(domain.String(strings.Repeat("tusk ", 200))))

			out, err := b.Assemble(artifact.Options{CreatedAt: time.Unix(0, 42), SourceHash: domain.ContentHash{9}, Codec: c})
			require.NoError(t, err)

			h, err := artifact.DecodeHeader("a.tskb", out.Bytes)
			require.NoError(t, err)
			assert.Equal(t, out.Header, h)
			assert.Equal(t, id, h.Codec)
			assert.Equal(t, id != domain.CodecNone, h.Flags.Has(domain.FlagCompressed))

			stored := artifact.Stored(out.Bytes)
			require.NoError(t, artifact.VerifyChecksum("a.tskb", &h, stored))
			raw, err := c.Decompress(stored, int(h.RawSize))
			require.NoError(t, err)

			m, err := artifact.Decode("a.tskb", h, raw)
			require.NoError(t, err)
			assert.Contains(t, m.Strings, "server.port")
			require.Len(t, m.Instructions, 5)
			assert.Equal(t, domain.OpSetConst, m.Instructions[1].Op)
			assert.Equal(t, "server.port", m.Strings[m.Instructions[1].A])
			assert.Equal(t, domain.Int(8080), m.Values[m.Instructions[1].B])
			assert.True(t, domain.List(domain.Int(1), domain.List(domain.String("x"), domain.Bool(true)), domain.Float(2.5)).
				Equal(m.Values[m.Instructions[3].B]))
		})
	}
}

func TestAssemble_IncompressibleFallsBack(t *testing.T) {
	set, err := codec.NewSet()
	require.NoError(t, err)
	c, err := set.For(domain.CodecLZ4)
	require.NoError(t, err)

	b := artifact.NewBuilder()
	b.Emit(domain.OpNop, 0, 0)
	out, err := b.Assemble(artifact.Options{Codec: c})
	require.NoError(t, err)
	assert.Equal(t, domain.CodecNone, out.Header.Codec)
	assert.False(t, out.Header.Flags.Has(domain.FlagCompressed))
}

func TestAssemble_Deterministic(t *testing.T) {
	opts := artifact.Options{CreatedAt: time.Unix(0, 7), SourceHash: domain.ContentHash{1}}
	a, err := sampleBuilder().Assemble(opts)
	require.NoError(t, err)
	b, err := sampleBuilder().Assemble(opts)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(a.Bytes, b.Bytes))
}

func TestDecodeHeader_Errors(t *testing.T) {
	out, err := sampleBuilder().Assemble(artifact.Options{})
	require.NoError(t, err)
	good := out.Bytes

	mutate := func(f func([]byte) []byte) []byte {
		return f(bytes.Clone(good))
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, domain.ErrCorruptArtifact},
		{"bad magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b }), domain.ErrVersionMismatch},
		{"future version", mutate(func(b []byte) []byte { b[4] = 2; return b }), domain.ErrVersionMismatch},
		{"truncated header", good[:50], domain.ErrCorruptArtifact},
		{"truncated payload", good[:len(good)-3], domain.ErrCorruptArtifact},
		{"trailing bytes", append(bytes.Clone(good), 0), domain.ErrCorruptArtifact},
		{"section count", mutate(func(b []byte) []byte { b[9] = 4; return b }), domain.ErrCorruptArtifact},
		{"flag without codec", mutate(func(b []byte) []byte { b[6] |= 1; return b }), domain.ErrCorruptArtifact},
		{"section past payload", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[68+2*12+4:], 1<<20)
			return b
		}), domain.ErrCorruptArtifact},
		{"raw size past expansion limit", mutate(func(b []byte) []byte {
			binary.LittleEndian.PutUint16(b[6:], uint16(domain.FlagCompressed))
			b[8] = byte(domain.CodecZstd)
			binary.LittleEndian.PutUint32(b[56:], 1<<31)
			return b
		}), domain.ErrCorruptArtifact},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := artifact.DecodeHeader("a.tskb", tt.data)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerifyChecksum_Tampered(t *testing.T) {
	out, err := sampleBuilder().Assemble(artifact.Options{})
	require.NoError(t, err)

	data := bytes.Clone(out.Bytes)
	data[len(data)-1] ^= 0xff
	h, err := artifact.DecodeHeader("a.tskb", data)
	require.NoError(t, err)
	require.ErrorIs(t, artifact.VerifyChecksum("a.tskb", &h, artifact.Stored(data)), domain.ErrCorruptArtifact)
}

func TestNewPayload_Bounds(t *testing.T) {
	raw, index := sampleBuilder().Payload()

	bad := index
	bad[domain.SectionValues].Length += 16
	_, err := artifact.NewPayload("a.tskb", raw, bad)
	require.ErrorIs(t, err, domain.ErrCorruptArtifact)

	bad = index
	bad[domain.SectionInstructions].Count++
	_, err = artifact.NewPayload("a.tskb", raw, bad)
	require.ErrorIs(t, err, domain.ErrCorruptArtifact)

	p, err := artifact.NewPayload("a.tskb", raw, index)
	require.NoError(t, err)
	_, err = p.String(uint32(p.StringCount()))
	require.ErrorIs(t, err, domain.ErrCorruptArtifact)
	_, err = p.Value(uint32(p.ValueCount()))
	require.ErrorIs(t, err, domain.ErrCorruptArtifact)
}

func TestAssemble_ExpansionLimit(t *testing.T) {
	assert.True(t, artifact.RawSizeAllowed(4<<20, 8<<10))
	assert.False(t, artifact.RawSizeAllowed(64<<20, 8<<10))
	assert.False(t, artifact.RawSizeAllowed(artifact.MaxRawSize+1, artifact.MaxRawSize))

	// A highly repetitive payload compresses past the limit and is kept raw.
	b := artifact.NewBuilder()
	b.String(strings.Repeat("k", 8<<20))
	set, err := codec.NewSet()
	require.NoError(t, err)
	zstd, err := set.For(domain.CodecZstd)
	require.NoError(t, err)

	out, err := b.Assemble(artifact.Options{Codec: zstd})
	require.NoError(t, err)
	assert.False(t, out.Header.Flags.Has(domain.FlagCompressed))
	assert.Equal(t, out.Header.RawSize, out.Header.StoredSize)
	_, err = artifact.DecodeHeader("a.tskb", out.Bytes)
	require.NoError(t, err)
}
