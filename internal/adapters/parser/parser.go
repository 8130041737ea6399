// Package parser is the reference reader for .tsk sources. It is line
// oriented: each non-blank line is a section header, a block opener or
// closer, an import or a key assignment.
package parser

import (
	"errors"
	iofs "io/fs"
	"os"
	"strings"

	"go.trai.ch/tusk/internal/core/domain"
	"go.trai.ch/tusk/internal/core/ports"
)

var _ ports.Parser = (*Parser)(nil)

// Parser implements ports.Parser. It holds no state and is safe for
// concurrent use.
type Parser struct{}

// New creates a new Parser.
func New() *Parser {
	return &Parser{}
}

// ParseFile reads and parses the file at path.
func (p *Parser) ParseFile(path string) (*domain.Document, domain.Diagnostics, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, nil, domain.PathError(domain.ErrNotFound, path, err)
		}
		return nil, nil, domain.PathError(domain.ErrIO, path, err)
	}
	doc, diags := p.ParseText(path, data)
	return doc, diags, nil
}

type block struct {
	parent string
	pos    domain.Position
}

// ParseText parses src attributed to path. Every line with an error yields
// one diagnostic and is skipped; parsing continues with the next line.
func (p *Parser) ParseText(path string, src []byte) (*domain.Document, domain.Diagnostics) {
	doc := &domain.Document{Path: path}
	var diags domain.Diagnostics

	section := ""
	var blocks []block

	errorf := func(pos domain.Position, msg string) {
		diags = append(diags, domain.Diagnostic{Pos: pos, Severity: domain.SeverityError, Message: msg})
	}

	for i, raw := range strings.Split(string(src), "\n") {
		line := strings.TrimSuffix(raw, "\r")
		if i == 0 {
			line = strings.TrimPrefix(line, "\uFEFF")
		}
		body, err := stripComment(line)
		if err != nil {
			errorf(domain.Position{Line: i + 1, Column: len(line) + 1}, err.Error())
			continue
		}
		col := len(body) - len(strings.TrimLeft(body, " \t")) + 1
		body = strings.TrimSpace(body)
		body = strings.TrimSpace(strings.TrimSuffix(body, ";"))
		if body == "" {
			continue
		}
		pos := domain.Position{Line: i + 1, Column: col}

		switch {
		case strings.HasPrefix(body, "[") && strings.HasSuffix(body, "]"):
			name := strings.TrimSpace(body[1 : len(body)-1])
			if name != "" && !isPath(name) {
				errorf(pos, "invalid section name "+quote(name))
				continue
			}
			for _, b := range blocks {
				errorf(b.pos, "unclosed block")
			}
			blocks = blocks[:0]
			section = name
			doc.Statements = append(doc.Statements, domain.Statement{Kind: domain.StmtSection, Key: section, Pos: pos})

		case body == "}" || body == "<":
			if len(blocks) == 0 {
				errorf(pos, "unmatched "+quote(body))
				continue
			}
			section = blocks[len(blocks)-1].parent
			blocks = blocks[:len(blocks)-1]
			doc.Statements = append(doc.Statements, domain.Statement{Kind: domain.StmtSection, Key: section, Pos: pos})

		case strings.HasPrefix(body, "@import"):
			target, err := parseImport(strings.TrimSpace(strings.TrimPrefix(body, "@import")))
			if err != nil {
				errorf(pos, err.Error())
				continue
			}
			doc.Statements = append(doc.Statements, domain.Statement{Kind: domain.StmtImport, Key: target, Pos: pos})

		default:
			if name, ok := blockOpener(body); ok {
				blocks = append(blocks, block{parent: section, pos: pos})
				section = domain.QualifiedKey(section, name)
				doc.Statements = append(doc.Statements, domain.Statement{Kind: domain.StmtSection, Key: section, Pos: pos})
				continue
			}

			st, diag := parseAssignment(body, pos)
			if diag != nil {
				diags = append(diags, *diag)
				continue
			}
			doc.Statements = append(doc.Statements, st)
		}
	}

	for _, b := range blocks {
		errorf(b.pos, "unclosed block")
	}

	return doc, diags
}

// stripComment drops a trailing # comment that is not inside a string.
func stripComment(line string) (string, error) {
	var quoteCh byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quoteCh != 0 && c == '\\':
			i++
		case quoteCh != 0 && c == quoteCh:
			quoteCh = 0
		case quoteCh != 0:
		case c == '"' || c == '\'':
			quoteCh = c
		case c == '#':
			return line[:i], nil
		}
	}
	if quoteCh != 0 {
		return "", errors.New("unterminated string")
	}
	return line, nil
}

func parseImport(arg string) (string, error) {
	if arg == "" {
		return "", errors.New("@import needs a path")
	}
	if arg[0] == '"' || arg[0] == '\'' {
		ep := &exprParser{src: arg}
		s, err := ep.stringLit()
		if err != nil {
			return "", err
		}
		if ep.pos != len(arg) {
			return "", errors.New("unexpected text after @import path")
		}
		return s, nil
	}
	if strings.ContainsAny(arg, " \t") {
		return "", errors.New("unexpected text after @import path")
	}
	return arg, nil
}

// blockOpener recognizes "name {" and "name >".
func blockOpener(body string) (string, bool) {
	if !strings.HasSuffix(body, "{") && !strings.HasSuffix(body, ">") {
		return "", false
	}
	name := strings.TrimSpace(body[:len(body)-1])
	if !isIdent(name) {
		return "", false
	}
	return name, true
}

func parseAssignment(body string, pos domain.Position) (domain.Statement, *domain.Diagnostic) {
	end := 0
	for end < len(body) && isKeyChar(body[end], end == 0) {
		end++
	}
	key := body[:end]
	rest := strings.TrimLeft(body[end:], " \t")
	if key == "" || rest == "" || (rest[0] != '=' && rest[0] != ':') {
		return domain.Statement{}, &domain.Diagnostic{
			Pos:      pos,
			Severity: domain.SeverityError,
			Message:  "expected assignment, section, block or import",
		}
	}

	exprSrc := rest[1:]
	offset := len(body) - len(exprSrc)
	ep := &exprParser{src: exprSrc, line: pos.Line, col: pos.Column + offset}
	expr, err := ep.parse()
	if err != nil {
		return domain.Statement{}, &domain.Diagnostic{Pos: ep.position(), Severity: domain.SeverityError, Message: err.Error()}
	}
	return domain.Statement{Kind: domain.StmtAssign, Key: key, Expr: expr, Pos: pos}, nil
}

func isKeyChar(c byte, first bool) bool {
	switch {
	case c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z'):
		return true
	case first:
		return false
	default:
		return c == '-' || ('0' <= c && c <= '9')
	}
}

func isIdentChar(c byte, first bool) bool {
	if c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
		return true
	}
	return !first && '0' <= c && c <= '9'
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentChar(s[i], i == 0) {
			return false
		}
	}
	return true
}

// isPath reports whether s is a dotted identifier path such as "server.tls".
func isPath(s string) bool {
	for part := range strings.SplitSeq(s, ".") {
		if !isIdent(part) {
			return false
		}
	}
	return true
}

func quote(s string) string {
	return `"` + s + `"`
}
