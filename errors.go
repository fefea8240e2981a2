package vizcore

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vizcore/arena"
	"github.com/hupe1980/vizcore/internal/resource"
)

var (
	// ErrClosed is returned by operations on a closed Runtime.
	ErrClosed = errors.New("vizcore: runtime closed")

	// ErrLockTimeout is returned when the frame lock is not acquired within
	// the configured timeout.
	ErrLockTimeout = errors.New("vizcore: frame lock timeout")

	// ErrScratchExhausted is returned when an operation runs out of scratch
	// memory. The frame should be skipped; the arena has already been
	// restored.
	ErrScratchExhausted = errors.New("vizcore: scratch memory exhausted")

	// ErrMemoryLimit is returned by New when the arena does not fit the
	// configured memory limit.
	ErrMemoryLimit = errors.New("vizcore: memory limit exceeded")
)

// ErrInvalidOption indicates a configuration value outside its valid range.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidOption struct {
	Option string
	Value  any
	cause  error
}

func (e *ErrInvalidOption) Error() string {
	return fmt.Sprintf("vizcore: invalid %s: %v", e.Option, e.Value)
}

func (e *ErrInvalidOption) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, arena.ErrArenaFull) {
		return fmt.Errorf("%w: %w", ErrScratchExhausted, err)
	}
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrMemoryLimit, err)
	}

	return err
}
