package cpuinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlignment(t *testing.T) {
	a := Alignment()
	assert.GreaterOrEqual(t, a, MinAlignment)
	assert.LessOrEqual(t, a, MaxAlignment)
	assert.Zero(t, a&(a-1), "alignment must be a power of two")
	assert.NotEqual(t, "unknown", ActiveISA().String())
}

func TestAlignmentFor(t *testing.T) {
	assert.Equal(t, 64, alignmentFor(AVX512))
	assert.Equal(t, 32, alignmentFor(AVX2))
	assert.Equal(t, 16, alignmentFor(NEON))
	assert.Equal(t, 16, alignmentFor(Generic))
}

func TestParseAlignment(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"", 0, false},
		{"abc", 0, false},
		{"4", 0, false},
		{"8", 8, true},
		{" 64 ", 64, true},
		{"48", 0, false},
		{"4096", 4096, true},
		{"8192", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAlignment(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
