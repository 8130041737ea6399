package loader

import (
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/engine/artifact"
	"go.trai.ch/zerr"
)

// machine evaluates OpSet programs. One machine serves one Get call; the
// visiting set detects reference cycles across nested lookups.
type machine struct {
	cfg      *Config
	p        *artifact.Payload
	idx      *index
	visiting map[string]struct{}
}

func (m *machine) eval(key string) (domain.Value, error) {
	if v, ok := m.cfg.results.Load(key); ok {
		return v.(domain.Value), nil
	}
	at, ok := m.idx.setters[key]
	if !ok {
		return domain.Value{}, zerr.With(zerr.Wrap(domain.ErrKeyNotFound, key), "key", key)
	}
	if _, busy := m.visiting[key]; busy {
		return domain.Value{}, zerr.With(zerr.Wrap(domain.ErrReferenceCycle, key), "key", key)
	}
	m.visiting[key] = struct{}{}
	defer delete(m.visiting, key)

	in := m.p.Instruction(at)
	var v domain.Value
	var err error
	if in.Op == domain.OpSetConst {
		v, err = m.p.Value(in.B)
	} else {
		v, err = m.run(key, in.B, at)
	}
	if err != nil {
		return domain.Value{}, err
	}
	m.cfg.results.Store(key, v)
	return v, nil
}

// run executes instructions [start, end) and returns the single value left
// on the stack.
func (m *machine) run(key string, start, end uint32) (domain.Value, error) {
	var stack []domain.Value
	pop := func(n int) ([]domain.Value, error) {
		if n > len(stack) {
			return nil, artifact.Corrupt(m.cfg.path, "stack underflow")
		}
		top := stack[len(stack)-n:]
		stack = stack[:len(stack)-n]
		return top, nil
	}

	for i := start; i < end; i++ {
		in := m.p.Instruction(i)
		switch in.Op {
		case domain.OpPushConst:
			v, err := m.p.Value(in.A)
			if err != nil {
				return domain.Value{}, err
			}
			stack = append(stack, v)

		case domain.OpPushRef:
			v, err := m.ref(in.A, in.B)
			if err != nil {
				return domain.Value{}, err
			}
			stack = append(stack, v)

		case domain.OpUnary:
			args, err := pop(1)
			if err != nil {
				return domain.Value{}, err
			}
			v, err := domain.ApplyUnary(m.str(in.A), args[0])
			if err != nil {
				return domain.Value{}, zerr.With(err, "key", key)
			}
			stack = append(stack, v)

		case domain.OpBinary:
			args, err := pop(2)
			if err != nil {
				return domain.Value{}, err
			}
			v, err := domain.ApplyBinary(m.str(in.A), args[0], args[1])
			if err != nil {
				return domain.Value{}, zerr.With(err, "key", key)
			}
			stack = append(stack, v)

		case domain.OpList:
			items, err := pop(int(in.A))
			if err != nil {
				return domain.Value{}, err
			}
			stack = append(stack, domain.List(append([]domain.Value(nil), items...)...))

		case domain.OpCall:
			args, err := pop(int(in.B))
			if err != nil {
				return domain.Value{}, err
			}
			v, err := domain.CallFunction(m.str(in.A), append([]domain.Value(nil), args...), m.cfg.lookup)
			if err != nil {
				return domain.Value{}, zerr.With(err, "key", key)
			}
			stack = append(stack, v)

		default:
			return domain.Value{}, zerr.With(artifact.Corrupt(m.cfg.path, "unexpected opcode in program"), "op", in.Op.String())
		}
	}
	if len(stack) != 1 {
		return domain.Value{}, artifact.Corrupt(m.cfg.path, "unbalanced program")
	}
	return stack[0], nil
}

// ref resolves a reference relative to its section first, then as an
// absolute key.
func (m *machine) ref(nameIdx, sectionIdx uint32) (domain.Value, error) {
	name := m.str(nameIdx)
	if section := m.str(sectionIdx); section != "" {
		if q := domain.QualifiedKey(section, name); m.has(q) {
			return m.eval(q)
		}
	}
	if m.has(name) {
		return m.eval(name)
	}
	return domain.Value{}, zerr.With(zerr.Wrap(domain.ErrKeyNotFound, name), "reference", name)
}

func (m *machine) has(key string) bool {
	_, ok := m.idx.setters[key]
	return ok
}

// str reads a string operand already checked by buildIndex.
func (m *machine) str(i uint32) string {
	s, _ := m.p.String(i)
	return s
}
