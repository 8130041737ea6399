package artifact

import (
	"math"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/zerr"
)

// Payload is a validated, read-only view over a raw payload. It never copies
// the section bytes.
type Payload struct {
	path  string
	raw   []byte
	index [domain.SectionCount]domain.SectionEntry
	strs  []byte
	offs  []byte
	vals  []byte
	ins   []byte
}

// NewPayload checks that every section lies inside raw and that lengths agree
// with counts.
func NewPayload(path string, raw []byte, index [domain.SectionCount]domain.SectionEntry) (*Payload, error) {
	p := &Payload{path: path, raw: raw, index: index}
	section := func(k domain.SectionKind) ([]byte, error) {
		e := index[k]
		end := uint64(e.Offset) + uint64(e.Length)
		if end > uint64(len(raw)) {
			return nil, zerr.With(Corrupt(path, "section out of bounds"), "section", k.String())
		}
		return raw[e.Offset:end], nil
	}

	s, err := section(domain.SectionStrings)
	if err != nil {
		return nil, err
	}
	n := uint64(index[domain.SectionStrings].Count)
	if (n+1)*4 > uint64(len(s)) {
		return nil, Corrupt(path, "string offsets out of bounds")
	}
	p.offs = s[:(n+1)*4]
	p.strs = s[(n+1)*4:]
	prev := uint32(0)
	for i := uint64(0); i <= n; i++ {
		end := le.Uint32(p.offs[i*4:])
		if end < prev || end > uint32(len(p.strs)) {
			return nil, Corrupt(path, "string offsets not monotonic")
		}
		prev = end
	}
	if int(prev) != len(p.strs) {
		return nil, Corrupt(path, "string section length mismatch")
	}

	if p.vals, err = section(domain.SectionValues); err != nil {
		return nil, err
	}
	if uint64(len(p.vals)) != uint64(index[domain.SectionValues].Count)*domain.ValueRecordSize {
		return nil, Corrupt(path, "values section length mismatch")
	}

	if p.ins, err = section(domain.SectionInstructions); err != nil {
		return nil, err
	}
	if uint64(len(p.ins)) != uint64(index[domain.SectionInstructions].Count)*domain.InstructionSize {
		return nil, Corrupt(path, "instructions section length mismatch")
	}
	return p, nil
}

// StringCount returns the number of interned strings.
func (p *Payload) StringCount() int { return int(p.index[domain.SectionStrings].Count) }

// ValueCount returns the number of value records.
func (p *Payload) ValueCount() int { return int(p.index[domain.SectionValues].Count) }

// InstructionCount returns the number of instructions.
func (p *Payload) InstructionCount() int { return int(p.index[domain.SectionInstructions].Count) }

// StringBytes returns the bytes of string i without copying.
func (p *Payload) StringBytes(i uint32) ([]byte, error) {
	if int(i) >= p.StringCount() {
		return nil, zerr.With(Corrupt(p.path, "string index out of range"), "index", i)
	}
	start := le.Uint32(p.offs[i*4:])
	end := le.Uint32(p.offs[(i+1)*4:])
	return p.strs[start:end], nil
}

// String returns string i.
func (p *Payload) String(i uint32) (string, error) {
	b, err := p.StringBytes(i)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Record returns value record i.
func (p *Payload) Record(i uint32) (Record, error) {
	if int(i) >= p.ValueCount() {
		return Record{}, zerr.With(Corrupt(p.path, "value index out of range"), "index", i)
	}
	o := int(i) * domain.ValueRecordSize
	return Record{Kind: domain.ValueKind(p.vals[o]), Bits: le.Uint64(p.vals[o+8:])}, nil
}

// Value decodes value i, following list ranges.
func (p *Payload) Value(i uint32) (domain.Value, error) {
	return p.value(i, 0)
}

// maxListDepth bounds nesting so a crafted artifact cannot recurse forever.
const maxListDepth = 64

func (p *Payload) value(i uint32, depth int) (domain.Value, error) {
	r, err := p.Record(i)
	if err != nil {
		return domain.Value{}, err
	}
	switch r.Kind {
	case domain.KindNull:
		return domain.Null(), nil
	case domain.KindBool:
		return domain.Bool(r.Bits != 0), nil
	case domain.KindInt:
		return domain.Int(int64(r.Bits)), nil
	case domain.KindFloat:
		return domain.Float(math.Float64frombits(r.Bits)), nil
	case domain.KindString:
		s, err := p.String(uint32(r.Bits))
		if err != nil {
			return domain.Value{}, err
		}
		return domain.String(s), nil
	case domain.KindList:
		if depth >= maxListDepth {
			return domain.Value{}, Corrupt(p.path, "list nesting too deep")
		}
		first, count := uint32(r.Bits>>32), uint32(r.Bits)
		if uint64(first)+uint64(count) > uint64(p.ValueCount()) {
			return domain.Value{}, Corrupt(p.path, "list range out of bounds")
		}
		items := make([]domain.Value, count)
		for k := range count {
			if items[k], err = p.value(first+k, depth+1); err != nil {
				return domain.Value{}, err
			}
		}
		return domain.List(items...), nil
	default:
		return domain.Value{}, zerr.With(Corrupt(p.path, "unknown value kind"), "kind", uint8(r.Kind))
	}
}

// Instruction returns instruction i.
func (p *Payload) Instruction(i uint32) domain.Instruction {
	o := int(i) * domain.InstructionSize
	return domain.Instruction{
		Op: domain.Opcode(p.ins[o]),
		A:  le.Uint32(p.ins[o+4:]),
		B:  le.Uint32(p.ins[o+8:]),
	}
}

// Decode fully decodes an in-memory artifact into a Module. Compressed
// payloads must be decompressed by the caller and passed as raw.
func Decode(path string, h domain.Header, raw []byte) (*domain.Module, error) {
	p, err := NewPayload(path, raw, h.Index)
	if err != nil {
		return nil, err
	}
	m := &domain.Module{
		Header:       h,
		Strings:      make([]string, p.StringCount()),
		Values:       make([]domain.Value, p.ValueCount()),
		Instructions: make([]domain.Instruction, p.InstructionCount()),
	}
	for i := range m.Strings {
		if m.Strings[i], err = p.String(uint32(i)); err != nil {
			return nil, err
		}
	}
	for i := range m.Values {
		if m.Values[i], err = p.Value(uint32(i)); err != nil {
			return nil, err
		}
	}
	for i := range m.Instructions {
		m.Instructions[i] = p.Instruction(uint32(i))
	}
	return m, nil
}
