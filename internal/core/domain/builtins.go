package domain

import (
	"strconv"

	"go.trai.ch/zerr"
)

// EnvLookup resolves an environment variable. os.LookupEnv satisfies it.
type EnvLookup func(name string) (string, bool)

// IsPureFunction reports whether a built-in call with constant arguments may
// be evaluated at compile time. @env is resolved when the artifact is loaded.
func IsPureFunction(name string) bool {
	return name == "cond"
}

// IsKnownFunction reports whether name is a built-in.
func IsKnownFunction(name string) bool {
	return name == "cond" || name == "env"
}

// CallFunction evaluates the built-in name.
//
//	@env("NAME")            the variable, or null when unset
//	@env("NAME", default)   the variable, or default when unset or empty
//	a ? b : c               parsed as cond(a, b, c)
func CallFunction(name string, args []Value, lookup EnvLookup) (Value, error) {
	switch name {
	case "env":
		if len(args) < 1 || len(args) > 2 || args[0].Kind != KindString {
			return Value{}, badArity(name, len(args))
		}
		if v, ok := lookup(args[0].Str); ok && v != "" {
			return String(v), nil
		}
		if len(args) == 2 {
			return args[1], nil
		}
		return Null(), nil
	case "cond":
		if len(args) != 3 {
			return Value{}, badArity(name, len(args))
		}
		if args[0].Truthy() {
			return args[1], nil
		}
		return args[2], nil
	default:
		return Value{}, zerr.With(zerr.Wrap(ErrUnknownFunction, "@"+name), "function", name)
	}
}

func badArity(name string, n int) error {
	return zerr.With(zerr.Wrap(ErrInvalidOperation, "@"+name), "args", strconv.Itoa(n))
}
