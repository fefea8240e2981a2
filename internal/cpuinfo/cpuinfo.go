// Package cpuinfo selects the scratch-memory alignment for the current CPU.
//
// Buffers handed out by the arena feed float32 transform kernels, so their
// start addresses follow the widest vector unit available: 64 bytes with
// AVX-512, 32 with AVX2, 16 otherwise. VIZCORE_ALIGN overrides the choice.
package cpuinfo

import (
	"os"
	"strconv"
	"strings"
)

// ISA represents a SIMD instruction set architecture.
type ISA uint8

const (
	// Generic represents a CPU without a recognized vector unit.
	Generic ISA = iota
	// NEON represents ARM64 Advanced SIMD.
	NEON
	// AVX2 represents x86-64 AVX2 with FMA.
	AVX2
	// AVX512 represents x86-64 AVX-512 Foundation.
	AVX512
)

// String returns the string representation of an ISA.
func (i ISA) String() string {
	switch i {
	case Generic:
		return "generic"
	case NEON:
		return "neon"
	case AVX2:
		return "avx2"
	case AVX512:
		return "avx512"
	default:
		return "unknown"
	}
}

const (
	// MinAlignment is the smallest alignment the arena accepts.
	MinAlignment = 8
	// MaxAlignment bounds overrides to one page.
	MaxAlignment = 4096
)

// Set once by the platform init.
var (
	hasASIMD   bool
	hasAVX2    bool
	hasAVX512F bool

	activeISA ISA
	alignment int
)

func initCapabilities() {
	switch {
	case hasAVX512F:
		activeISA = AVX512
	case hasAVX2:
		activeISA = AVX2
	case hasASIMD:
		activeISA = NEON
	default:
		activeISA = Generic
	}

	alignment = alignmentFor(activeISA)
	if v, ok := ParseAlignment(os.Getenv("VIZCORE_ALIGN")); ok {
		alignment = v
	}
}

func alignmentFor(isa ISA) int {
	switch isa {
	case AVX512:
		return 64
	case AVX2:
		return 32
	default:
		return 16
	}
}

// ParseAlignment parses an alignment override. It accepts powers of two in
// [MinAlignment, MaxAlignment].
func ParseAlignment(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	if v < MinAlignment || v > MaxAlignment || v&(v-1) != 0 {
		return 0, false
	}
	return v, true
}

// ActiveISA returns the detected vector instruction set.
func ActiveISA() ISA {
	return activeISA
}

// Alignment returns the default scratch alignment in bytes.
func Alignment() int {
	return alignment
}
