package artifact

import (
	"errors"
	"math"
	"time"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
)

// Record is one encoded entry of the values section. Bits holds the scalar
// payload, a string index, or (first<<32 | count) for lists.
type Record struct {
	Kind domain.ValueKind
	Bits uint64
}

// Builder interns strings and values and collects instructions in emission
// order. Scalar values are de-duplicated; list elements are laid out
// contiguously so a list record can address them as a range.
type Builder struct {
	strings  []string
	strIndex map[string]uint32
	records  []Record
	valIndex map[Record]uint32
	instrs   []domain.Instruction
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		strIndex: make(map[string]uint32),
		valIndex: make(map[Record]uint32),
	}
}

// String interns s and returns its index.
func (b *Builder) String(s string) uint32 {
	if i, ok := b.strIndex[s]; ok {
		return i
	}
	i := uint32(len(b.strings))
	b.strings = append(b.strings, s)
	b.strIndex[s] = i
	return i
}

// Value interns v and returns the index of its record.
func (b *Builder) Value(v domain.Value) uint32 {
	if v.Kind != domain.KindList {
		r := b.scalar(v)
		if i, ok := b.valIndex[r]; ok {
			return i
		}
		i := uint32(len(b.records))
		b.records = append(b.records, r)
		b.valIndex[r] = i
		return i
	}
	i := uint32(len(b.records))
	b.records = append(b.records, Record{})
	r := b.list(v.List)
	b.records[i] = r
	return i
}

// list reserves a contiguous range for items and fills it.
func (b *Builder) list(items []domain.Value) Record {
	first := uint32(len(b.records))
	b.records = append(b.records, make([]Record, len(items))...)
	for k, item := range items {
		var r Record
		if item.Kind == domain.KindList {
			r = b.list(item.List)
		} else {
			r = b.scalar(item)
		}
		b.records[int(first)+k] = r
	}
	return Record{Kind: domain.KindList, Bits: uint64(first)<<32 | uint64(len(items))}
}

func (b *Builder) scalar(v domain.Value) Record {
	r := Record{Kind: v.Kind}
	switch v.Kind {
	case domain.KindBool:
		if v.Bool {
			r.Bits = 1
		}
	case domain.KindInt:
		r.Bits = uint64(v.Int)
	case domain.KindFloat:
		r.Bits = math.Float64bits(v.Float)
	case domain.KindString:
		r.Bits = uint64(b.String(v.Str))
	}
	return r
}

// Emit appends an instruction and returns its index.
func (b *Builder) Emit(op domain.Opcode, a, bArg uint32) uint32 {
	i := uint32(len(b.instrs))
	b.instrs = append(b.instrs, domain.Instruction{Op: op, A: a, B: bArg})
	return i
}

// Counts reports the number of strings, value records and instructions.
func (b *Builder) Counts() (strs, values, instrs int) {
	return len(b.strings), len(b.records), len(b.instrs)
}

// Payload lays out the three sections and returns the raw payload with its
// section index.
func (b *Builder) Payload() ([]byte, [domain.SectionCount]domain.SectionEntry) {
	var index [domain.SectionCount]domain.SectionEntry

	strBytes := 0
	for _, s := range b.strings {
		strBytes += len(s)
	}
	strLen := (len(b.strings)+1)*4 + strBytes
	valLen := len(b.records) * domain.ValueRecordSize
	insLen := len(b.instrs) * domain.InstructionSize

	raw := make([]byte, strLen+valLen+insLen)

	index[domain.SectionStrings] = domain.SectionEntry{Offset: 0, Length: uint32(strLen), Count: uint32(len(b.strings))}
	end := uint32(0)
	data := (len(b.strings) + 1) * 4
	le.PutUint32(raw[0:], 0)
	for i, s := range b.strings {
		copy(raw[data+int(end):], s)
		end += uint32(len(s))
		le.PutUint32(raw[(i+1)*4:], end)
	}

	off := strLen
	index[domain.SectionValues] = domain.SectionEntry{Offset: uint32(off), Length: uint32(valLen), Count: uint32(len(b.records))}
	for i, r := range b.records {
		o := off + i*domain.ValueRecordSize
		raw[o] = byte(r.Kind)
		le.PutUint64(raw[o+8:], r.Bits)
	}

	off += valLen
	index[domain.SectionInstructions] = domain.SectionEntry{Offset: uint32(off), Length: uint32(insLen), Count: uint32(len(b.instrs))}
	for i, in := range b.instrs {
		o := off + i*domain.InstructionSize
		raw[o] = byte(in.Op)
		le.PutUint32(raw[o+4:], in.A)
		le.PutUint32(raw[o+8:], in.B)
	}

	return raw, index
}

// Options control artifact assembly.
type Options struct {
	CreatedAt  time.Time
	SourceHash domain.ContentHash
	// Codec compresses the payload; nil or the none codec stores it verbatim.
	Codec      ports.Codec
	Vectorized bool
}

// Assembled is a finished artifact.
type Assembled struct {
	Bytes  []byte
	Header domain.Header
}

// Assemble builds the complete artifact. When the codec cannot shrink the
// payload, or shrinks it past the readable expansion limit, it is stored
// uncompressed and the header says so.
func (b *Builder) Assemble(opts Options) (*Assembled, error) {
	raw, index := b.Payload()

	h := domain.Header{
		Version:    domain.FormatVersion,
		Codec:      domain.CodecNone,
		Sections:   domain.SectionCount,
		CreatedAt:  opts.CreatedAt.UnixNano(),
		SourceHash: opts.SourceHash,
		RawSize:    uint32(len(raw)),
		Index:      index,
	}
	copy(h.Magic[:], domain.Magic)
	if opts.Vectorized {
		h.Flags |= domain.FlagVectorized
	}

	stored := raw
	if opts.Codec != nil && opts.Codec.ID() != domain.CodecNone {
		packed, err := opts.Codec.Compress(raw)
		switch {
		case err == nil && !RawSizeAllowed(uint64(len(raw)), uint64(len(packed))):
			// Stored as is; a reader would refuse the expansion.
		case err == nil:
			stored = packed
			h.Codec = opts.Codec.ID()
			h.Flags |= domain.FlagCompressed
		case !errors.Is(err, domain.ErrIncompressible):
			return nil, err
		}
	}
	h.StoredSize = uint32(len(stored))
	h.Checksum = Checksum(stored)

	out := make([]byte, 0, domain.HeaderSize+len(stored))
	out = append(out, EncodeHeader(&h)...)
	out = append(out, stored...)
	return &Assembled{Bytes: out, Header: h}, nil
}
