package domain

import (
	"fmt"
	"time"
)

// Artifact format constants.
const (
	// Magic identifies a tusk artifact.
	Magic = "TSKB"

	// FormatVersion is the only artifact version this build reads and writes.
	FormatVersion uint16 = 1

	// HeaderSize is the fixed, never-compressed header length in bytes.
	HeaderSize = 104

	// SectionCount is the number of payload sections.
	SectionCount = 3

	// ValueRecordSize is the encoded size of one entry in the values section.
	ValueRecordSize = 16

	// InstructionSize is the encoded size of one instruction.
	InstructionSize = 12
)

// Flags are header feature bits.
type Flags uint16

const (
	// FlagCompressed is set when the payload is stored compressed.
	FlagCompressed Flags = 1 << iota
	// FlagVectorized is set when the source was normalized by the wide kernel.
	FlagVectorized
)

// Has reports whether every bit of f2 is set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Codec identifies the payload compression algorithm. The numeric values are
// part of the artifact format.
type Codec uint8

const (
	// CodecNone stores the payload verbatim.
	CodecNone Codec = 0
	// CodecLZ4 is the fast block codec.
	CodecLZ4 Codec = 1
	// CodecZstd is the high-ratio codec.
	CodecZstd Codec = 2
)

func (c Codec) String() string {
	switch c {
	case CodecNone:
		return "none"
	case CodecLZ4:
		return "lz4"
	case CodecZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCodec parses a codec name as written in configuration.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "none":
		return CodecNone, nil
	case "lz4", "fast":
		return CodecLZ4, nil
	case "zstd", "high":
		return CodecZstd, nil
	default:
		return 0, PathError(ErrUnknownCodec, name, nil)
	}
}

// SectionKind indexes the section table.
type SectionKind uint8

const (
	SectionStrings SectionKind = iota
	SectionValues
	SectionInstructions
)

func (k SectionKind) String() string {
	switch k {
	case SectionStrings:
		return "strings"
	case SectionValues:
		return "values"
	case SectionInstructions:
		return "instructions"
	default:
		return "unknown"
	}
}

// SectionEntry locates one section inside the raw payload.
type SectionEntry struct {
	Offset uint32
	Length uint32
	Count  uint32
}

// Header is the decoded fixed-size artifact header.
type Header struct {
	Magic      [4]byte
	Version    uint16
	Flags      Flags
	Codec      Codec
	Sections   uint8
	CreatedAt  int64
	SourceHash ContentHash
	StoredSize uint32
	RawSize    uint32
	Checksum   uint64
	Index      [SectionCount]SectionEntry
}

// Created returns CreatedAt as a time.
func (h *Header) Created() time.Time {
	return time.Unix(0, h.CreatedAt)
}

// Opcode is an instruction operation.
type Opcode uint8

const (
	// OpNop does nothing.
	OpNop Opcode = iota
	// OpSection marks the start of a section; A is the name's string index.
	OpSection
	// OpImport records an import; A is the path's string index.
	OpImport
	// OpSetConst binds key string A to constant value B.
	OpSetConst
	// OpPushConst pushes constant value A.
	OpPushConst
	// OpPushRef pushes the value of reference name A, resolved relative to section B.
	OpPushRef
	// OpUnary pops one operand and applies operator string A.
	OpUnary
	// OpBinary pops two operands and applies operator string A.
	OpBinary
	// OpList pops A operands into a list.
	OpList
	// OpCall pops B arguments and calls function string A.
	OpCall
	// OpSet binds key string A to the result of the program starting at instruction B.
	OpSet
)

var opcodeNames = [...]string{"nop", "section", "import", "setconst", "pushconst", "pushref", "unary", "binary", "list", "call", "set"}

func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

// Instruction is one fixed-width bytecode instruction.
type Instruction struct {
	Op Opcode
	A  uint32
	B  uint32
}

// Module is the in-memory form of a compiled artifact.
type Module struct {
	Header       Header
	Strings      []string
	Values       []Value
	Instructions []Instruction
}
