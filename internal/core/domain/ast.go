package domain

// NodeKind identifies an expression node.
type NodeKind uint8

const (
	// NodeLiteral holds a constant Value.
	NodeLiteral NodeKind = iota
	// NodeRef names another key, either section-relative or fully qualified.
	NodeRef
	// NodeUnary applies Op to its single child.
	NodeUnary
	// NodeBinary applies Op to its two children.
	NodeBinary
	// NodeList builds a list from its children.
	NodeList
	// NodeCall invokes the built-in function Op with its children as arguments.
	NodeCall
)

// Node is an expression tree node. Documents are read-only once produced by
// the parser and may be shared between goroutines.
type Node struct {
	Kind     NodeKind `cbor:"k"`
	Op       string   `cbor:"o,omitempty"`
	Name     string   `cbor:"n,omitempty"`
	Value    Value    `cbor:"v"`
	Children []*Node  `cbor:"c,omitempty"`
	Pos      Position `cbor:"p"`
}

// IsConstant reports whether the node is a literal.
func (n *Node) IsConstant() bool {
	return n != nil && n.Kind == NodeLiteral
}

// StmtKind identifies a top-level statement.
type StmtKind uint8

const (
	// StmtAssign binds Key to Expr inside the current section.
	StmtAssign StmtKind = iota
	// StmtSection opens a section; Key is the section name ("" for the root).
	StmtSection
	// StmtImport declares a dependency on another source; Key is its path.
	StmtImport
)

func (k StmtKind) String() string {
	switch k {
	case StmtAssign:
		return "assign"
	case StmtSection:
		return "section"
	case StmtImport:
		return "import"
	default:
		return "unknown"
	}
}

// Statement is one line-level construct of a source file.
type Statement struct {
	Kind StmtKind `cbor:"k"`
	Key  string   `cbor:"key"`
	Expr *Node    `cbor:"x,omitempty"`
	Pos  Position `cbor:"p"`
}

// Document is the syntax tree of one source file.
type Document struct {
	Path       string      `cbor:"path"`
	Statements []Statement `cbor:"stmts"`
}

// Imports returns the import paths in declaration order.
func (d *Document) Imports() []string {
	var out []string
	for _, st := range d.Statements {
		if st.Kind == StmtImport {
			out = append(out, st.Key)
		}
	}
	return out
}

// QualifiedKey joins a section name and a key.
func QualifiedKey(section, key string) string {
	if section == "" {
		return key
	}
	return section + "." + key
}
