// Package simd holds the source normalization kernels. Normalization strips a
// leading UTF-8 byte order mark and rewrites CRLF line endings to LF. The wide
// kernel inspects eight bytes per step and is selected when the CPU feature check
// reports vector support; both kernels produce identical output.
package simd

import (
	"bytes"
	"encoding/binary"

	"go.trai.ch/tusk/internal/core/domain"
	"golang.org/x/sys/cpu"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Kernel normalizes source bytes with one variant.
type Kernel struct {
	variant domain.Variant
}

// Detect inspects the CPU once and returns the matching kernel.
func Detect() Kernel {
	if cpu.X86.HasSSE2 || cpu.ARM64.HasASIMD || cpu.PPC64.IsPOWER8 || cpu.S390X.HasVX {
		return Kernel{variant: domain.VariantWide}
	}
	return Kernel{variant: domain.VariantScalar}
}

// New returns the kernel for an explicit variant.
func New(v domain.Variant) Kernel {
	return Kernel{variant: v}
}

// Variant reports which kernel this is.
func (k Kernel) Variant() domain.Variant {
	return k.variant
}

// StripBOM returns src without a leading UTF-8 byte order mark.
func StripBOM(src []byte) []byte {
	return bytes.TrimPrefix(src, bom)
}

// Normalize appends the normalized form of src to dst. It does not strip the
// BOM; callers do that once for the first chunk.
func (k Kernel) Normalize(dst, src []byte) []byte {
	if k.variant == domain.VariantWide {
		return normalizeWide(dst, src)
	}
	return normalizeScalar(dst, src)
}

// Boundaries splits n bytes of data into chunks of about size bytes. A
// boundary never falls between the two bytes of a CRLF pair.
func Boundaries(data []byte, size int) []int {
	if size <= 0 {
		size = len(data)
	}
	ends := make([]int, 0, len(data)/max(size, 1)+1)
	for end := 0; end < len(data); {
		end = min(end+size, len(data))
		if end < len(data) && data[end-1] == '\r' && data[end] == '\n' {
			end++
		}
		ends = append(ends, end)
	}
	return ends
}

func normalizeScalar(dst, src []byte) []byte {
	for i := 0; i < len(src); i++ {
		if src[i] == '\r' && i+1 < len(src) && src[i+1] == '\n' {
			continue
		}
		dst = append(dst, src[i])
	}
	return dst
}

const (
	lows  = 0x0101010101010101
	highs = 0x8080808080808080
	crs   = lows * '\r'
)

// hasCR reports whether any byte of w is a carriage return.
func hasCR(w uint64) bool {
	x := w ^ crs
	return (x-lows)&^x&highs != 0
}

func normalizeWide(dst, src []byte) []byte {
	i := 0
	start := 0
	for ; i+8 <= len(src); i += 8 {
		if !hasCR(binary.LittleEndian.Uint64(src[i:])) {
			continue
		}
		dst = append(dst, src[start:i]...)
		for j := i; j < i+8; j++ {
			if src[j] == '\r' && j+1 < len(src) && src[j+1] == '\n' {
				continue
			}
			dst = append(dst, src[j])
		}
		start = i + 8
	}
	dst = append(dst, src[start:i]...)
	return normalizeScalar(dst, src[i:])
}
