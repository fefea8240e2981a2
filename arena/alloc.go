package arena

import (
	"fmt"
	"math"
	"unsafe"
)

// AllocSlice allocates n elements of T from the arena.
// The contents are whatever the previous owner of the bytes left behind.
// T must not contain Go pointers.
func AllocSlice[T any](a *Arena, n int, hint Hint) ([]T, error) {
	if n < 0 {
		panic(fmt.Sprintf("arena: negative slice length %d", n))
	}
	var zero T
	elem := int(unsafe.Sizeof(zero))
	if uintptr(a.align) < unsafe.Alignof(zero) {
		panic(fmt.Sprintf("arena: alignment %d too small for %T", a.align, zero))
	}
	if n == 0 || elem == 0 {
		return make([]T, n), nil
	}
	if n > math.MaxInt/elem {
		a.failures++
		return nil, &ExhaustedError{Requested: math.MaxInt, Available: a.Free()}
	}

	b, err := a.Alloc(n*elem, hint)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b[0])), n), nil //nolint:gosec // unsafe is required for arena implementation
}

// AllocSliceZeroed is AllocSlice with every element set to its zero value.
func AllocSliceZeroed[T any](a *Arena, n int, hint Hint) ([]T, error) {
	s, err := AllocSlice[T](a, n, hint)
	if err != nil {
		return nil, err
	}
	clear(s)
	return s, nil
}
