package arena

import (
	"errors"
	"fmt"
)

var (
	// ErrArenaFull is matched by every capacity exhaustion error.
	ErrArenaFull = errors.New("arena: out of scratch memory")
	// ErrInvalidCapacity is returned when the arena would have no usable bytes.
	ErrInvalidCapacity = errors.New("arena: invalid capacity")
	// ErrInvalidAlignment is returned for alignments that are not a power of two >= 8.
	ErrInvalidAlignment = errors.New("arena: invalid alignment")
)

// ExhaustedError reports an allocation that did not fit.
type ExhaustedError struct {
	Requested int
	Available int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("arena: out of scratch memory: requested %d bytes, %d available", e.Requested, e.Available)
}

// Is reports whether target is ErrArenaFull.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrArenaFull
}
