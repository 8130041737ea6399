package domain

import "fmt"

// Position is a 1-based line and column inside a source file.
type Position struct {
	Line   int `cbor:"line"`
	Column int `cbor:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Severity classifies a diagnostic.
type Severity uint8

const (
	// SeverityError aborts compilation of the file.
	SeverityError Severity = iota
	// SeverityWarning is reported but does not abort compilation.
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a single message reported by the parser.
type Diagnostic struct {
	Pos      Position
	Severity Severity
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Diagnostics is an ordered list of parser messages.
type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic has error severity.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
