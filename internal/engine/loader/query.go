package loader

import (
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/engine/artifact"
	"go.trai.ch/zerr"
)

type index struct {
	setters  map[string]uint32
	keys     []string
	sections []string
	imports  []string
}

func (c *Config) index() (*index, error) {
	p, err := c.payload()
	if err != nil {
		return nil, err
	}
	c.indexOnce.Do(func() {
		c.idx, c.idxErr = buildIndex(c.path, p)
	})
	return c.idx, c.idxErr
}

// buildIndex validates every operand once so evaluation can index the
// tables without bounds errors.
func buildIndex(path string, p *artifact.Payload) (*index, error) {
	strs := uint32(p.StringCount())
	vals := uint32(p.ValueCount())
	idx := &index{setters: make(map[string]uint32)}
	seenSection := make(map[string]struct{})

	bad := func(i uint32, reason string) error {
		return zerr.With(artifact.Corrupt(path, reason), "instruction", i)
	}
	for i := range uint32(p.InstructionCount()) {
		in := p.Instruction(i)
		switch in.Op {
		case domain.OpNop:
		case domain.OpSection, domain.OpImport, domain.OpUnary, domain.OpBinary:
			if in.A >= strs {
				return nil, bad(i, "string operand out of range")
			}
			if in.Op == domain.OpSection || in.Op == domain.OpImport {
				name, err := p.String(in.A)
				if err != nil {
					return nil, err
				}
				if in.Op == domain.OpImport {
					idx.imports = append(idx.imports, name)
				} else if _, ok := seenSection[name]; !ok && name != "" {
					seenSection[name] = struct{}{}
					idx.sections = append(idx.sections, name)
				}
			}
		case domain.OpPushConst:
			if in.A >= vals {
				return nil, bad(i, "value operand out of range")
			}
		case domain.OpPushRef:
			if in.A >= strs || in.B >= strs {
				return nil, bad(i, "string operand out of range")
			}
		case domain.OpList:
		case domain.OpCall:
			if in.A >= strs {
				return nil, bad(i, "string operand out of range")
			}
		case domain.OpSetConst, domain.OpSet:
			if in.A >= strs {
				return nil, bad(i, "string operand out of range")
			}
			if in.Op == domain.OpSetConst && in.B >= vals {
				return nil, bad(i, "value operand out of range")
			}
			if in.Op == domain.OpSet && in.B >= i {
				return nil, bad(i, "program start out of range")
			}
			key, err := p.String(in.A)
			if err != nil {
				return nil, err
			}
			if _, ok := idx.setters[key]; !ok {
				idx.keys = append(idx.keys, key)
			}
			idx.setters[key] = i
		default:
			return nil, bad(i, "unknown opcode")
		}
	}
	return idx, nil
}

// Keys returns every key in order of first assignment.
func (c *Config) Keys() ([]string, error) {
	idx, err := c.index()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), idx.keys...), nil
}

// Sections returns the named sections in declaration order.
func (c *Config) Sections() ([]string, error) {
	idx, err := c.index()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), idx.sections...), nil
}

// Imports returns the import paths in declaration order.
func (c *Config) Imports() ([]string, error) {
	idx, err := c.index()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), idx.imports...), nil
}

// Has reports whether key is assigned.
func (c *Config) Has(key string) bool {
	idx, err := c.index()
	if err != nil {
		return false
	}
	_, ok := idx.setters[key]
	return ok
}

// Lookup is Get that reports an unassigned key as not found instead of an
// error. Unreadable indices and evaluation failures are still errors.
func (c *Config) Lookup(key string) (domain.Value, bool, error) {
	if _, err := c.index(); err != nil {
		return domain.Value{}, false, err
	}
	if !c.Has(key) {
		return domain.Value{}, false, nil
	}
	v, err := c.Get(key)
	if err != nil {
		return domain.Value{}, false, err
	}
	return v, true, nil
}

// Get returns the value of a fully qualified key. Non-constant keys are
// evaluated on first access and the result is reused afterwards.
func (c *Config) Get(key string) (domain.Value, error) {
	idx, err := c.index()
	if err != nil {
		return domain.Value{}, err
	}
	p, _ := c.payload()
	vm := &machine{cfg: c, p: p, idx: idx, visiting: make(map[string]struct{})}
	return vm.eval(key)
}

// All evaluates every key. It stops at the first key that fails.
func (c *Config) All() (map[string]domain.Value, error) {
	keys, err := c.Keys()
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Value, len(keys))
	for _, k := range keys {
		v, err := c.Get(k)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}
