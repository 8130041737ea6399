package ports

import "go.trai.ch/tusk/internal/core/domain"

// Parser turns source text into a syntax tree. Implementations must be safe
// for concurrent use. Diagnostics with error severity mean the document must
// not be compiled or cached.
//
//go:generate mockgen -source=parser.go -destination=mocks/mock_parser.go -package=mocks
type Parser interface {
	// ParseFile reads and parses the file at path.
	ParseFile(path string) (*domain.Document, domain.Diagnostics, error)
	// ParseText parses already-loaded source bytes attributed to path.
	ParseText(path string, src []byte) (*domain.Document, domain.Diagnostics)
}
