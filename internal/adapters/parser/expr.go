package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/tusk/internal/core/domain"
)

// exprParser is a recursive descent parser over one expression. Operator
// precedence from loosest to tightest: ?:, ||, &&, == !=, < <= > >=, + -,
// * / %, unary - !.
type exprParser struct {
	src  string
	pos  int
	line int
	col  int
}

var errUnexpectedEnd = errors.New("unexpected end of expression")

func (p *exprParser) parse() (*domain.Node, error) {
	n, err := p.ternary()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("unexpected %q", p.src[p.pos:])
	}
	return n, nil
}

func (p *exprParser) position() domain.Position {
	return domain.Position{Line: p.line, Column: p.col + p.pos}
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos == len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// accept consumes the first operator in ops that the input starts with.
func (p *exprParser) accept(ops ...string) (string, bool) {
	p.skipSpace()
	for _, op := range ops {
		if strings.HasPrefix(p.src[p.pos:], op) {
			p.pos += len(op)
			return op, true
		}
	}
	return "", false
}

func (p *exprParser) expect(c byte) error {
	if p.peek() != c {
		if p.pos == len(p.src) {
			return errUnexpectedEnd
		}
		return fmt.Errorf("expected %q, found %q", c, p.src[p.pos])
	}
	p.pos++
	return nil
}

func (p *exprParser) ternary() (*domain.Node, error) {
	pos := p.position()
	cond, err := p.binary(0)
	if err != nil {
		return nil, err
	}
	if _, ok := p.accept("?"); !ok {
		return cond, nil
	}
	then, err := p.ternary()
	if err != nil {
		return nil, err
	}
	if err := p.expect(':'); err != nil {
		return nil, err
	}
	els, err := p.ternary()
	if err != nil {
		return nil, err
	}
	return &domain.Node{Kind: domain.NodeCall, Op: "cond", Children: []*domain.Node{cond, then, els}, Pos: pos}, nil
}

// levels lists binary operators by precedence. Longer operators come first
// within a level so "<=" is not read as "<".
var levels = [][]string{
	{"||"},
	{"&&"},
	{"==", "!="},
	{"<=", ">=", "<", ">"},
	{"+", "-"},
	{"*", "/", "%"},
}

func (p *exprParser) binary(level int) (*domain.Node, error) {
	if level == len(levels) {
		return p.unary()
	}
	left, err := p.binary(level + 1)
	if err != nil {
		return nil, err
	}
	for {
		pos := p.position()
		op, ok := p.accept(levels[level]...)
		if !ok {
			return left, nil
		}
		right, err := p.binary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &domain.Node{Kind: domain.NodeBinary, Op: op, Children: []*domain.Node{left, right}, Pos: pos}
	}
}

func (p *exprParser) unary() (*domain.Node, error) {
	pos := p.position()
	op, ok := p.accept("-", "!")
	if !ok {
		return p.primary()
	}
	if op == "!" && p.pos < len(p.src) && p.src[p.pos] == '=' {
		return nil, fmt.Errorf("unexpected %q", "!=")
	}
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	if op == "-" && operand.Kind == domain.NodeLiteral {
		switch operand.Value.Kind {
		case domain.KindInt:
			return &domain.Node{Kind: domain.NodeLiteral, Value: domain.Int(-operand.Value.Int), Pos: pos}, nil
		case domain.KindFloat:
			return &domain.Node{Kind: domain.NodeLiteral, Value: domain.Float(-operand.Value.Float), Pos: pos}, nil
		}
	}
	return &domain.Node{Kind: domain.NodeUnary, Op: op, Children: []*domain.Node{operand}, Pos: pos}, nil
}

func (p *exprParser) primary() (*domain.Node, error) {
	c := p.peek()
	pos := p.position()
	switch {
	case c == 0:
		return nil, errUnexpectedEnd
	case c == '"' || c == '\'':
		s, err := p.stringLit()
		if err != nil {
			return nil, err
		}
		return literal(domain.String(s), pos), nil
	case '0' <= c && c <= '9' || c == '.':
		return p.number()
	case c == '[':
		p.pos++
		items, err := p.args(']')
		if err != nil {
			return nil, err
		}
		return &domain.Node{Kind: domain.NodeList, Children: items, Pos: pos}, nil
	case c == '(':
		p.pos++
		n, err := p.ternary()
		if err != nil {
			return nil, err
		}
		return n, p.expect(')')
	case c == '@':
		p.pos++
		name := p.ident()
		if name == "" {
			return nil, errors.New("expected function name after @")
		}
		if err := p.expect('('); err != nil {
			return nil, err
		}
		args, err := p.args(')')
		if err != nil {
			return nil, err
		}
		return &domain.Node{Kind: domain.NodeCall, Op: name, Children: args, Pos: pos}, nil
	case c == '$' || isIdentChar(c, true):
		start := p.pos
		if c == '$' {
			p.pos++
		}
		for {
			if p.ident() == "" {
				return nil, fmt.Errorf("invalid reference %q", p.src[start:p.pos])
			}
			if p.pos >= len(p.src) || p.src[p.pos] != '.' {
				break
			}
			p.pos++
		}
		name := p.src[start:p.pos]
		switch name {
		case "true":
			return literal(domain.Bool(true), pos), nil
		case "false":
			return literal(domain.Bool(false), pos), nil
		case "null":
			return literal(domain.Null(), pos), nil
		}
		return &domain.Node{Kind: domain.NodeRef, Name: name, Pos: pos}, nil
	default:
		return nil, fmt.Errorf("unexpected %q", c)
	}
}

// args parses a comma separated list up to the closing byte. A trailing
// comma is allowed.
func (p *exprParser) args(closing byte) ([]*domain.Node, error) {
	var out []*domain.Node
	for {
		if p.peek() == closing {
			p.pos++
			return out, nil
		}
		n, err := p.ternary()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
		switch p.peek() {
		case ',':
			p.pos++
		case closing:
		case 0:
			return nil, errUnexpectedEnd
		default:
			return nil, fmt.Errorf("expected ',' or %q, found %q", closing, p.src[p.pos])
		}
	}
}

func (p *exprParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && isIdentChar(p.src[p.pos], p.pos == start) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *exprParser) number() (*domain.Node, error) {
	pos := p.position()
	start := p.pos
	isFloat := false
scan:
	for ; p.pos < len(p.src); p.pos++ {
		c := p.src[p.pos]
		switch {
		case '0' <= c && c <= '9' || c == '_':
		case c == '.' || c == 'e' || c == 'E':
			isFloat = true
		case (c == '+' || c == '-') && (p.src[p.pos-1] == 'e' || p.src[p.pos-1] == 'E'):
		default:
			break scan
		}
	}

	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if !isFloat {
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", text)
		}
		return literal(domain.Int(i), pos), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", text)
	}
	return literal(domain.Float(f), pos), nil
}

// stringLit reads a double-quoted string with Go escapes or a single-quoted
// string where only \' and \\ are escapes.
func (p *exprParser) stringLit() (string, error) {
	p.skipSpace()
	q := p.src[p.pos]
	start := p.pos
	p.pos++
	for {
		if p.pos >= len(p.src) {
			return "", errors.New("unterminated string")
		}
		c := p.src[p.pos]
		if c == '\\' {
			p.pos += 2
			continue
		}
		p.pos++
		if c == q {
			break
		}
	}
	body := p.src[start:p.pos]
	if q == '"' {
		s, err := strconv.Unquote(body)
		if err != nil {
			return "", fmt.Errorf("invalid string %s", body)
		}
		return s, nil
	}
	r := strings.NewReplacer(`\'`, `'`, `\\`, `\`)
	return r.Replace(body[1 : len(body)-1]), nil
}

func literal(v domain.Value, pos domain.Position) *domain.Node {
	return &domain.Node{Kind: domain.NodeLiteral, Value: v, Pos: pos}
}
