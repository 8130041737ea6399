package domain

import (
	"math"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// ValueKind identifies the dynamic type of a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a configuration value. Only the field selected by Kind is meaningful.
type Value struct {
	Kind  ValueKind `cbor:"k"`
	Bool  bool      `cbor:"b,omitempty"`
	Int   int64     `cbor:"i,omitempty"`
	Float float64   `cbor:"f,omitempty"`
	Str   string    `cbor:"s,omitempty"`
	List  []Value   `cbor:"l,omitempty"`
}

// Null returns the null value.
func Null() Value { return Value{Kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Int returns an integer value.
func Int(i int64) Value { return Value{Kind: KindInt, Int: i} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// String returns a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// List returns a list value.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindList, List: items}
}

// Equal reports deep equality. Ints and floats compare numerically.
func (v Value) Equal(o Value) bool {
	if v.isNumeric() && o.isNumeric() {
		if v.Kind == KindInt && o.Kind == KindInt {
			return v.Int == o.Int
		}
		return v.number() == o.number()
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindString:
		return v.Str == o.Str
	case KindList:
		if len(v.List) != len(o.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(o.List[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Truthy reports the boolean interpretation used by logical operators.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindFloat:
		return v.Float != 0
	case KindString:
		return v.Str != ""
	case KindList:
		return len(v.List) > 0
	default:
		return false
	}
}

// Text renders the value for string concatenation: strings are not quoted.
func (v Value) Text() string {
	if v.Kind == KindString {
		return v.Str
	}
	return v.String()
}

// String renders the value in source syntax.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.Str)
	case KindList:
		parts := make([]string, len(v.List))
		for i, item := range v.List {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "?"
	}
}

// Interface converts the value into plain Go types for encoders.
func (v Value) Interface() any {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int
	case KindFloat:
		return v.Float
	case KindString:
		return v.Str
	case KindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

func (v Value) isNumeric() bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

func (v Value) number() float64 {
	if v.Kind == KindInt {
		return float64(v.Int)
	}
	return v.Float
}

// ApplyUnary evaluates a prefix operator.
func ApplyUnary(op string, v Value) (Value, error) {
	switch op {
	case "-":
		switch v.Kind {
		case KindInt:
			return Int(-v.Int), nil
		case KindFloat:
			return Float(-v.Float), nil
		}
	case "!":
		return Bool(!v.Truthy()), nil
	}
	return Value{}, invalidOperation(op, v.Kind.String())
}

// ApplyBinary evaluates an infix operator. The same function backs constant
// folding in the compiler and runtime evaluation in the loader, so both agree.
//
//nolint:cyclop // operator dispatch table
func ApplyBinary(op string, l, r Value) (Value, error) {
	switch op {
	case "&&":
		return Bool(l.Truthy() && r.Truthy()), nil
	case "||":
		return Bool(l.Truthy() || r.Truthy()), nil
	case "==":
		return Bool(l.Equal(r)), nil
	case "!=":
		return Bool(!l.Equal(r)), nil
	case "<", "<=", ">", ">=":
		return compare(op, l, r)
	case "+":
		if l.Kind == KindString || r.Kind == KindString {
			return String(l.Text() + r.Text()), nil
		}
		if l.Kind == KindList && r.Kind == KindList {
			joined := make([]Value, 0, len(l.List)+len(r.List))
			joined = append(joined, l.List...)
			return List(append(joined, r.List...)...), nil
		}
		return arithmetic(op, l, r)
	case "-", "*", "/", "%":
		return arithmetic(op, l, r)
	}
	return Value{}, invalidOperation(op, l.Kind.String(), r.Kind.String())
}

func arithmetic(op string, l, r Value) (Value, error) {
	if !l.isNumeric() || !r.isNumeric() {
		return Value{}, invalidOperation(op, l.Kind.String(), r.Kind.String())
	}
	if l.Kind == KindInt && r.Kind == KindInt {
		a, b := l.Int, r.Int
		switch op {
		case "+":
			return Int(a + b), nil
		case "-":
			return Int(a - b), nil
		case "*":
			return Int(a * b), nil
		case "/":
			if b == 0 {
				return Value{}, ErrDivisionByZero
			}
			if a%b == 0 {
				return Int(a / b), nil
			}
			return Float(float64(a) / float64(b)), nil
		case "%":
			if b == 0 {
				return Value{}, ErrDivisionByZero
			}
			return Int(a % b), nil
		}
	}
	a, b := l.number(), r.number()
	switch op {
	case "+":
		return Float(a + b), nil
	case "-":
		return Float(a - b), nil
	case "*":
		return Float(a * b), nil
	case "/":
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}
		return Float(a / b), nil
	case "%":
		if b == 0 {
			return Value{}, ErrDivisionByZero
		}
		return Float(math.Mod(a, b)), nil
	}
	return Value{}, invalidOperation(op, l.Kind.String(), r.Kind.String())
}

func compare(op string, l, r Value) (Value, error) {
	var c int
	switch {
	case l.isNumeric() && r.isNumeric():
		a, b := l.number(), r.number()
		if l.Kind == KindInt && r.Kind == KindInt {
			c = cmpInt(l.Int, r.Int)
		} else {
			c = cmpFloat(a, b)
		}
	case l.Kind == KindString && r.Kind == KindString:
		c = strings.Compare(l.Str, r.Str)
	default:
		return Value{}, invalidOperation(op, l.Kind.String(), r.Kind.String())
	}
	switch op {
	case "<":
		return Bool(c < 0), nil
	case "<=":
		return Bool(c <= 0), nil
	case ">":
		return Bool(c > 0), nil
	default:
		return Bool(c >= 0), nil
	}
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func invalidOperation(op string, kinds ...string) error {
	return zerr.With(zerr.Wrap(ErrInvalidOperation, "operator "+op), "operands", strings.Join(kinds, ","))
}
