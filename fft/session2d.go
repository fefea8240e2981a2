package fft

import (
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vizcore/arena"
	"github.com/hupe1980/vizcore/geom"
)

type options struct {
	workers int
}

// Option configures a 2-D session.
type Option func(*options)

// WithWorkers runs row and column passes on up to n goroutines.
// Values below 2 keep the transform on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// Session2D transforms a rectangular image region.
type Session2D struct {
	arena   *arena.Arena
	mark    arena.Mark
	data    []float32
	w, h    int
	rect    geom.Rect
	workers int
	freed   bool
}

// Alloc2D copies the part of r inside img into a fresh arena allocation padded
// to power-of-two width and height.
func Alloc2D(a *arena.Arena, img Image, r geom.Rect, opts ...Option) (*Session2D, error) {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	r = r.Clamp(img.Width(), img.Height())
	if r.Empty() {
		return nil, ErrInvalidSize
	}
	w, h := NextPow2(r.W), NextPow2(r.H)

	mark := a.PushMark()
	data, err := arena.AllocSliceZeroed[float32](a, 2*w*h, arena.HintNone)
	if err != nil {
		a.RewindTo(mark)
		return nil, err
	}

	for y := 0; y < r.H; y++ {
		row := data[2*y*w:]
		for x := 0; x < r.W; x++ {
			row[2*x] = img.Pixel(r.X+x, r.Y+y)
		}
	}

	return &Session2D{arena: a, mark: mark, data: data, w: w, h: h, rect: r, workers: o.workers}, nil
}

// Width returns the padded transform width.
func (s *Session2D) Width() int {
	return s.w
}

// Height returns the padded transform height.
func (s *Session2D) Height() int {
	return s.h
}

// Rect returns the source region after clamping to the image.
func (s *Session2D) Rect() geom.Rect {
	return s.rect
}

// Data returns the interleaved row-major buffer. It is valid until Dealloc.
func (s *Session2D) Data() []float32 {
	return s.data
}

// Real returns the real part at (x, y).
func (s *Session2D) Real(x, y int) float32 {
	return s.data[2*(y*s.w+x)]
}

// Complex returns the sample at (x, y).
func (s *Session2D) Complex(x, y int) complex64 {
	i := 2 * (y*s.w + x)
	return complex(s.data[i], s.data[i+1])
}

// Run transforms the buffer to the frequency domain.
func (s *Session2D) Run() {
	s.live()
	s.transform(false)
}

// RunInverse transforms the buffer back to the spatial domain.
func (s *Session2D) RunInverse() {
	s.live()
	s.transform(true)
}

// RunAgain treats the real channel as a fresh image and transforms it forward.
func (s *Session2D) RunAgain() {
	s.live()
	clearImag(s.data)
	s.transform(false)
}

// Magnitude replaces every sample with its modulus.
func (s *Session2D) Magnitude() {
	s.live()
	magnitude(s.data)
}

// Phase replaces every sample with its argument in radians.
func (s *Session2D) Phase() {
	s.live()
	phase(s.data)
}

// Log applies the natural logarithm to the real channel.
func (s *Session2D) Log() {
	s.live()
	logReal(s.data)
}

// Exp applies the exponential to the real channel.
func (s *Session2D) Exp() {
	s.live()
	expReal(s.data)
}

// Shift swaps diagonal quadrants so the zero frequency sits at
// (Width()/2, Height()/2).
func (s *Session2D) Shift() {
	s.live()
	swapCyclic(s.data, s.w, s.h)
}

// Dealloc rewinds the arena to the state before Alloc2D.
func (s *Session2D) Dealloc() {
	if s.freed {
		panic("fft: session deallocated twice")
	}
	s.freed = true
	s.data = nil
	s.arena.RewindTo(s.mark)
}

func (s *Session2D) transform(inverse bool) {
	s.parallel(s.h, func(y int) {
		transform(s.data[2*y*s.w:], s.w, 1, inverse)
	})
	s.parallel(s.w, func(x int) {
		transform(s.data[2*x:], s.h, s.w, inverse)
	})
}

// parallel calls fn for every index in [0, count). Rows and columns touch
// disjoint samples, so passes of the same kind can run concurrently.
func (s *Session2D) parallel(count int, fn func(i int)) {
	if s.workers < 2 {
		for i := 0; i < count; i++ {
			fn(i)
		}
		return
	}

	// Passes cannot fail; the group only bounds concurrency.
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *Session2D) live() {
	if s.freed {
		panic("fft: use of deallocated session")
	}
}
