package framebuffer

import "errors"

var (
	// ErrBusy is returned by Snapshot when another context holds the frame.
	ErrBusy = errors.New("framebuffer: frame is busy")

	// ErrThrottled is returned by Snapshot when the debug-link budget is
	// exhausted and the buffer drops instead of waiting.
	ErrThrottled = errors.New("framebuffer: debug link throttled")

	// ErrCorrupt is returned by ApplySnapshot for malformed input.
	ErrCorrupt = errors.New("framebuffer: corrupt snapshot")

	// ErrSizeMismatch is returned by ApplySnapshot when the snapshot and the
	// destination frame have different dimensions.
	ErrSizeMismatch = errors.New("framebuffer: frame size mismatch")
)
