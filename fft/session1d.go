package fft

import (
	"github.com/hupe1980/vizcore/arena"
)

// Session1D transforms a sample slice.
type Session1D struct {
	arena  *arena.Arena
	mark   arena.Mark
	data   []float32
	n      int
	length int
	freed  bool
}

// Alloc1D pads samples to the next power of two and copies them into a
// fresh arena allocation. Arena exhaustion is returned unchanged, so
// errors.Is(err, arena.ErrArenaFull) holds.
func Alloc1D(a *arena.Arena, samples []float32) (*Session1D, error) {
	if len(samples) == 0 {
		return nil, ErrInvalidSize
	}
	n := NextPow2(len(samples))

	mark := a.PushMark()
	data, err := arena.AllocSlice[float32](a, 2*n, arena.HintNone)
	if err != nil {
		a.RewindTo(mark)
		return nil, err
	}

	for i, v := range samples {
		data[2*i] = v
		data[2*i+1] = 0
	}
	clear(data[2*len(samples):])

	return &Session1D{arena: a, mark: mark, data: data, n: n, length: len(samples)}, nil
}

// Len returns the padded transform size.
func (s *Session1D) Len() int {
	return s.n
}

// SourceLen returns the number of samples the session was created from.
func (s *Session1D) SourceLen() int {
	return s.length
}

// Data returns the interleaved buffer. It is valid until Dealloc.
func (s *Session1D) Data() []float32 {
	return s.data
}

// Real returns the real part of sample i.
func (s *Session1D) Real(i int) float32 {
	return s.data[2*i]
}

// Complex returns sample i.
func (s *Session1D) Complex(i int) complex64 {
	return complex(s.data[2*i], s.data[2*i+1])
}

// Run transforms the buffer to the frequency domain.
func (s *Session1D) Run() {
	s.live()
	transform(s.data, s.n, 1, false)
}

// RunInverse transforms the buffer back to the time domain.
func (s *Session1D) RunInverse() {
	s.live()
	transform(s.data, s.n, 1, true)
}

// RunAgain treats the real channel as a fresh signal and transforms it
// forward, discarding whatever the imaginary channel held.
func (s *Session1D) RunAgain() {
	s.live()
	clearImag(s.data)
	transform(s.data, s.n, 1, false)
}

// Magnitude replaces every sample with its modulus.
func (s *Session1D) Magnitude() {
	s.live()
	magnitude(s.data)
}

// Phase replaces every sample with its argument in radians.
func (s *Session1D) Phase() {
	s.live()
	phase(s.data)
}

// Log applies the natural logarithm to the real channel.
func (s *Session1D) Log() {
	s.live()
	logReal(s.data)
}

// Exp applies the exponential to the real channel.
func (s *Session1D) Exp() {
	s.live()
	expReal(s.data)
}

// Shift swaps the two halves so the zero frequency sits at Len()/2.
func (s *Session1D) Shift() {
	s.live()
	swapCyclic(s.data, s.n, 1)
}

// Dealloc rewinds the arena to the state before Alloc1D.
func (s *Session1D) Dealloc() {
	if s.freed {
		panic("fft: session deallocated twice")
	}
	s.freed = true
	s.data = nil
	s.arena.RewindTo(s.mark)
}

func (s *Session1D) live() {
	if s.freed {
		panic("fft: use of deallocated session")
	}
}
