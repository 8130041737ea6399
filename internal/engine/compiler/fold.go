package compiler

import (
	"go.trai.ch/tusk/internal/core/domain"
)

type binding struct {
	section string
	stmt    *domain.Statement
}

type foldState uint8

const (
	unvisited foldState = iota
	visiting
	done
)

type folded struct {
	value domain.Value
	ok    bool
}

// folder evaluates constant expressions. A key is constant when its
// expression only involves literals, pure built-ins and references to other
// constant keys. References resolve relative to the referencing section first
// and as absolute keys second; a reference that matches no key in the file is
// an error. Keys that take part in a reference cycle are never constant.
type folder struct {
	bindings map[string]binding
	order    []string
	state    map[string]foldState
	values   map[string]folded
	diags    domain.Diagnostics
	quiet    bool
}

func newFolder(doc *domain.Document) *folder {
	f := &folder{
		bindings: make(map[string]binding),
		state:    make(map[string]foldState),
		values:   make(map[string]folded),
	}
	section := ""
	for i := range doc.Statements {
		st := &doc.Statements[i]
		switch st.Kind {
		case domain.StmtSection:
			section = st.Key
		case domain.StmtAssign:
			key := domain.QualifiedKey(section, st.Key)
			if _, seen := f.bindings[key]; !seen {
				f.order = append(f.order, key)
			}
			// The last assignment to a key wins.
			f.bindings[key] = binding{section: section, stmt: st}
		}
	}
	return f
}

// run folds every key once, in source order, collecting diagnostics.
func (f *folder) run() domain.Diagnostics {
	for _, key := range f.order {
		f.key(key)
	}
	f.quiet = true
	return f.diags
}

func (f *folder) key(key string) (domain.Value, bool) {
	switch f.state[key] {
	case done:
		r := f.values[key]
		return r.value, r.ok
	case visiting:
		return domain.Value{}, false
	}

	b := f.bindings[key]
	f.state[key] = visiting
	v, ok := f.fold(b.stmt.Expr, b.section)
	f.state[key] = done
	f.values[key] = folded{value: v, ok: ok}
	return v, ok
}

// resolve returns the key a reference names, or "" when no key matches.
func (f *folder) resolve(name, section string) string {
	if section != "" {
		if q := domain.QualifiedKey(section, name); f.has(q) {
			return q
		}
	}
	if f.has(name) {
		return name
	}
	return ""
}

func (f *folder) has(key string) bool {
	_, ok := f.bindings[key]
	return ok
}

func (f *folder) fold(n *domain.Node, section string) (domain.Value, bool) {
	switch n.Kind {
	case domain.NodeLiteral:
		return n.Value, true

	case domain.NodeRef:
		key := f.resolve(n.Name, section)
		if key == "" {
			f.errorf(n.Pos, domain.ErrUnresolvedReference, n.Name)
			return domain.Value{}, false
		}
		return f.key(key)

	case domain.NodeUnary:
		v, ok := f.fold(n.Children[0], section)
		if !ok {
			return domain.Value{}, false
		}
		r, err := domain.ApplyUnary(n.Op, v)
		if err != nil {
			f.errorf(n.Pos, err)
			return domain.Value{}, false
		}
		return r, true

	case domain.NodeBinary:
		l, lok := f.fold(n.Children[0], section)
		r, rok := f.fold(n.Children[1], section)
		if !lok || !rok {
			return domain.Value{}, false
		}
		v, err := domain.ApplyBinary(n.Op, l, r)
		if err != nil {
			f.errorf(n.Pos, err)
			return domain.Value{}, false
		}
		return v, true

	case domain.NodeList:
		items, ok := f.foldAll(n.Children, section)
		if !ok {
			return domain.Value{}, false
		}
		return domain.List(items...), true

	case domain.NodeCall:
		if !domain.IsKnownFunction(n.Op) {
			f.errorf(n.Pos, domain.ErrUnknownFunction, "@"+n.Op)
			return domain.Value{}, false
		}
		args, ok := f.foldAll(n.Children, section)
		if !ok || !domain.IsPureFunction(n.Op) {
			return domain.Value{}, false
		}
		v, err := domain.CallFunction(n.Op, args, nil)
		if err != nil {
			f.errorf(n.Pos, err)
			return domain.Value{}, false
		}
		return v, true
	}
	return domain.Value{}, false
}

func (f *folder) foldAll(nodes []*domain.Node, section string) ([]domain.Value, bool) {
	out := make([]domain.Value, len(nodes))
	all := true
	for i, c := range nodes {
		v, ok := f.fold(c, section)
		out[i] = v
		all = all && ok
	}
	return out, all
}

func (f *folder) errorf(pos domain.Position, err error, detail ...string) {
	if f.quiet {
		return
	}
	msg := err.Error()
	for _, d := range detail {
		msg += " " + d
	}
	f.diags = append(f.diags, domain.Diagnostic{Pos: pos, Severity: domain.SeverityError, Message: msg})
}
