package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tusk/internal/core/domain"
)

func TestApplyBinary(t *testing.T) {
	tests := []struct {
		name string
		op   string
		l, r domain.Value
		want domain.Value
	}{
		{"int add", "+", domain.Int(1), domain.Int(2), domain.Int(3)},
		{"mixed add promotes", "+", domain.Int(1), domain.Float(0.5), domain.Float(1.5)},
		{"string concat", "+", domain.String("port-"), domain.Int(80), domain.String("port-80")},
		{"list concat", "+", domain.List(domain.Int(1)), domain.List(domain.Int(2)), domain.List(domain.Int(1), domain.Int(2))},
		{"exact int division", "/", domain.Int(6), domain.Int(3), domain.Int(2)},
		{"inexact int division", "/", domain.Int(7), domain.Int(2), domain.Float(3.5)},
		{"modulo", "%", domain.Int(7), domain.Int(4), domain.Int(3)},
		{"less than", "<", domain.Int(1), domain.Float(1.5), domain.Bool(true)},
		{"string compare", ">=", domain.String("b"), domain.String("a"), domain.Bool(true)},
		{"equality across numeric kinds", "==", domain.Int(2), domain.Float(2), domain.Bool(true)},
		{"inequality", "!=", domain.String("a"), domain.Null(), domain.Bool(true)},
		{"and", "&&", domain.Bool(true), domain.Int(0), domain.Bool(false)},
		{"or", "||", domain.String(""), domain.Int(1), domain.Bool(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ApplyBinary(tt.op, tt.l, tt.r)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			assert.Equal(t, tt.want.Kind, got.Kind)
		})
	}
}

func TestApplyBinary_Errors(t *testing.T) {
	_, err := domain.ApplyBinary("/", domain.Int(1), domain.Int(0))
	require.ErrorIs(t, err, domain.ErrDivisionByZero)

	_, err = domain.ApplyBinary("-", domain.String("a"), domain.Int(1))
	require.ErrorIs(t, err, domain.ErrInvalidOperation)

	_, err = domain.ApplyBinary("<", domain.Bool(true), domain.Int(1))
	require.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestApplyUnary(t *testing.T) {
	v, err := domain.ApplyUnary("-", domain.Int(4))
	require.NoError(t, err)
	assert.Equal(t, domain.Int(-4), v)

	v, err = domain.ApplyUnary("!", domain.String(""))
	require.NoError(t, err)
	assert.Equal(t, domain.Bool(true), v)

	_, err = domain.ApplyUnary("-", domain.String("x"))
	require.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestValue_String(t *testing.T) {
	v := domain.List(domain.Int(1), domain.String("a"), domain.Null(), domain.Float(2.5), domain.Bool(false))
	assert.Equal(t, `[1, "a", null, 2.5, false]`, v.String())
	assert.Equal(t, "a", domain.String("a").Text())
	assert.Equal(t, []any{int64(1), "a", nil, 2.5, false}, v.Interface())
}

func TestCallFunction(t *testing.T) {
	env := func(name string) (string, bool) {
		if name == "HOST" {
			return "example.org", true
		}
		return "", false
	}

	v, err := domain.CallFunction("env", []domain.Value{domain.String("HOST"), domain.String("localhost")}, env)
	require.NoError(t, err)
	assert.Equal(t, domain.String("example.org"), v)

	v, err = domain.CallFunction("env", []domain.Value{domain.String("PORT"), domain.Int(80)}, env)
	require.NoError(t, err)
	assert.Equal(t, domain.Int(80), v)

	v, err = domain.CallFunction("env", []domain.Value{domain.String("PORT")}, env)
	require.NoError(t, err)
	assert.Equal(t, domain.Null(), v)

	v, err = domain.CallFunction("cond", []domain.Value{domain.Bool(false), domain.Int(1), domain.Int(2)}, env)
	require.NoError(t, err)
	assert.Equal(t, domain.Int(2), v)

	_, err = domain.CallFunction("env", nil, env)
	require.ErrorIs(t, err, domain.ErrInvalidOperation)

	_, err = domain.CallFunction("query", nil, env)
	require.ErrorIs(t, err, domain.ErrUnknownFunction)
}
