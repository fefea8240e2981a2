package arena

import (
	"math"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocSlice(t *testing.T) {
	a := newTestArena(t, 4096)

	f, err := AllocSlice[float32](a, 10, HintNone)
	require.NoError(t, err)
	assert.Len(t, f, 10)
	assert.Equal(t, 40, a.Used())

	u, err := AllocSliceZeroed[uint64](a, 4, HintNone)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 0, 0, 0}, u)
	assert.Zero(t, uintptr(unsafe.Pointer(&u[0]))%8)

	e, err := AllocSlice[complex64](a, 0, HintNone)
	require.NoError(t, err)
	assert.Empty(t, e)
}

func TestAllocSlice_Exhaustion(t *testing.T) {
	a := newTestArena(t, 64)

	_, err := AllocSlice[float64](a, 9, HintNone)
	assert.ErrorIs(t, err, ErrArenaFull)

	_, err = AllocSlice[float64](a, math.MaxInt/4, HintNone)
	assert.ErrorIs(t, err, ErrArenaFull)
	assert.Equal(t, 0, a.Used())
}

func TestAllocSlice_ReusesRewoundMemory(t *testing.T) {
	a := newTestArena(t, 1024)

	m := a.PushMark()
	first, err := AllocSliceZeroed[float32](a, 16, HintNone)
	require.NoError(t, err)
	first[3] = 42
	a.RewindTo(m)

	second, err := AllocSlice[float32](a, 16, HintNone)
	require.NoError(t, err)
	assert.Same(t, &first[0], &second[0])
	assert.Equal(t, float32(42), second[3], "AllocSlice does not clear")
}
