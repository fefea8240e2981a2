package mmap

import "sync/atomic"

// Mapping is an anonymous read-write memory region.
// It owns the underlying byte slice and is responsible for unmapping it.
type Mapping struct {
	data   []byte
	closed atomic.Bool
	// unmap is the platform-specific function to release the memory.
	unmap func([]byte) error
}

// MapAnon reserves size bytes of zeroed, private, read-write memory.
func MapAnon(size int) (*Mapping, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	data, unmapFunc, err := osMapAnon(size)
	if err != nil {
		return nil, err
	}

	return &Mapping{data: data, unmap: unmapFunc}, nil
}

// Close releases the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	if m.unmap != nil && m.data != nil {
		err := m.unmap(m.data)
		m.data = nil
		return err
	}
	return nil
}

// Bytes returns the underlying byte slice.
// Warning: The slice is valid only until Close() is called.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return len(m.data)
}

// Release hands the physical pages back to the OS while keeping the address
// range mapped. The contents are undefined afterwards; on Linux they read as
// zero.
func (m *Mapping) Release() error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osRelease(m.data)
}
