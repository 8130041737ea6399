package domain

import (
	"errors"
	"fmt"
	"strings"

	"go.trai.ch/zerr"
)

// Failure taxonomy. Every error surfaced by the ingestion layer, the AST cache,
// the compiler, the loader and the orchestrator matches exactly one of these
// kinds under errors.Is.
var (
	// ErrNotFound is returned when a source or artifact path does not exist.
	ErrNotFound = zerr.New("not found")

	// ErrIO is returned when reading, mapping, writing or renaming a file fails.
	ErrIO = zerr.New("i/o failure")

	// ErrParse is returned when the parser reports at least one error diagnostic.
	ErrParse = zerr.New("parse failed")

	// ErrCorruptArtifact is returned when an artifact is truncated or its
	// section index or checksum is inconsistent.
	ErrCorruptArtifact = zerr.New("corrupt artifact")

	// ErrVersionMismatch is returned when an artifact carries a magic or
	// format version this build does not support.
	ErrVersionMismatch = zerr.New("unsupported artifact format version")

	// ErrCancelled is returned when the caller's context is cancelled mid-operation.
	ErrCancelled = zerr.New("operation cancelled")
)

var (
	// ErrKeyNotFound is returned when a loaded configuration has no value for a key.
	ErrKeyNotFound = zerr.New("key not found")

	// ErrInvalidOperation is returned when an operator is applied to operands it does not support.
	ErrInvalidOperation = zerr.New("invalid operation")

	// ErrDivisionByZero is returned when an expression divides by zero.
	ErrDivisionByZero = zerr.New("division by zero")

	// ErrReferenceCycle is returned when evaluating a key requires its own value.
	ErrReferenceCycle = zerr.New("reference cycle")

	// ErrUnknownFunction is returned when an expression calls an unknown function.
	ErrUnknownFunction = zerr.New("unknown function")

	// ErrUnresolvedReference is reported when a reference names no key of its file.
	ErrUnresolvedReference = zerr.New("unresolved reference")

	// ErrUnknownCodec is returned for a compression codec name or id that is not registered.
	ErrUnknownCodec = zerr.New("unknown compression codec")

	// ErrIncompressible is returned by a codec when compression would not shrink the input.
	ErrIncompressible = zerr.New("payload is incompressible")

	// ErrCacheClosed is returned when the AST cache is used after Close.
	ErrCacheClosed = zerr.New("ast cache is closed")

	// ErrConfigReadFailed is returned when tusk.yaml exists but cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when tusk.yaml cannot be decoded.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrNoInputs is returned when a batch command resolves to no source files.
	ErrNoInputs = zerr.New("no source files specified")

	// ErrBatchFailed is returned by batch commands when at least one file failed.
	// The individual failures have already been reported.
	ErrBatchFailed = zerr.New("one or more files failed")
)

// PathError tags cause with a taxonomy kind and the path it concerns.
// Both kind and cause remain reachable through errors.Is.
func PathError(kind error, path string, cause error) error {
	inner := kind
	if cause != nil {
		inner = errors.Join(kind, cause)
	}
	return zerr.With(zerr.Wrap(inner, path), "path", path)
}

// ParseError carries every diagnostic reported for a single source file.
type ParseError struct {
	Path        string
	Diagnostics Diagnostics
}

// NewParseError builds a ParseError for path.
func NewParseError(path string, diags Diagnostics) *ParseError {
	return &ParseError{Path: path, Diagnostics: diags}
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s (%d diagnostics)", e.Path, ErrParse.Error(), len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		sb.WriteString("\n  ")
		sb.WriteString(d.String())
	}
	return sb.String()
}

// Unwrap makes every ParseError match ErrParse.
func (e *ParseError) Unwrap() error {
	return ErrParse
}
