package compiler

import (
	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/engine/artifact"
)

// lower folds doc and emits one instruction per statement or expression
// node in source order. Constant assignments become a single OpSetConst;
// everything else is a stack program closed by OpSet, whose B operand is the
// index of the program's first instruction.
func lower(doc *domain.Document) (*artifact.Builder, error) {
	f := newFolder(doc)
	if diags := f.run(); diags.HasErrors() {
		return nil, domain.NewParseError(doc.Path, diags)
	}

	b := artifact.NewBuilder()
	e := emitter{b: b, f: f}
	section := ""
	for i := range doc.Statements {
		st := &doc.Statements[i]
		switch st.Kind {
		case domain.StmtSection:
			section = st.Key
			b.Emit(domain.OpSection, b.String(st.Key), 0)

		case domain.StmtImport:
			b.Emit(domain.OpImport, b.String(st.Key), 0)

		case domain.StmtAssign:
			key := domain.QualifiedKey(section, st.Key)
			var v domain.Value
			var ok bool
			if f.bindings[key].stmt == st {
				v, ok = f.key(key)
			} else {
				v, ok = f.fold(st.Expr, section)
			}
			if ok {
				b.Emit(domain.OpSetConst, b.String(key), b.Value(v))
				continue
			}
			_, _, start := b.Counts()
			e.expr(st.Expr, section)
			b.Emit(domain.OpSet, b.String(key), uint32(start))
		}
	}
	return b, nil
}

type emitter struct {
	b *artifact.Builder
	f *folder
}

func (e emitter) expr(n *domain.Node, section string) {
	b := e.b
	if v, ok := e.f.fold(n, section); ok {
		b.Emit(domain.OpPushConst, b.Value(v), 0)
		return
	}

	switch n.Kind {
	case domain.NodeRef:
		b.Emit(domain.OpPushRef, b.String(n.Name), b.String(section))
	case domain.NodeUnary:
		e.expr(n.Children[0], section)
		b.Emit(domain.OpUnary, b.String(n.Op), 0)
	case domain.NodeBinary:
		e.expr(n.Children[0], section)
		e.expr(n.Children[1], section)
		b.Emit(domain.OpBinary, b.String(n.Op), 0)
	case domain.NodeList:
		for _, c := range n.Children {
			e.expr(c, section)
		}
		b.Emit(domain.OpList, uint32(len(n.Children)), 0)
	case domain.NodeCall:
		for _, c := range n.Children {
			e.expr(c, section)
		}
		b.Emit(domain.OpCall, b.String(n.Op), uint32(len(n.Children)))
	}
}
