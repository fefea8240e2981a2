// Package fft implements the frequency-domain engine: 1-D and 2-D forward and
// inverse transforms plus spectral post-processing, all working in scratch
// memory borrowed from an arena.
//
// # Sessions
//
// A session binds a transform to a source (a sample slice or an image
// region), pads it to power-of-two sizes and owns exactly one arena
// allocation of interleaved real/imaginary float32 samples:
//
//	s, err := fft.Alloc2D(a, img, geom.Rect{W: 64, H: 64})
//	if err != nil {
//	    return err // arena.ErrArenaFull: try a smaller region
//	}
//	defer s.Dealloc()
//
//	s.Run()
//	s.Magnitude()
//	s.Shift()
//	if err := s.LogPolar(); err != nil { ... }
//
// Dealloc rewinds the arena to the mark taken by Alloc. Sessions must be
// deallocated in LIFO order with every other arena user; deallocating out of
// order, or twice, panics.
//
// # Buffer Layout
//
// Sample i of a 1-D session lives at Data()[2*i] (real) and Data()[2*i+1]
// (imaginary). A 2-D session is row-major: pixel (x, y) is sample y*Width()+x.
// Operations that collapse the spectrum to one channel (Magnitude, Phase,
// the polar remaps) write the real slot and zero the imaginary one.
//
// # Conventions
//
// The forward transform uses exp(-2πi·kn/N) and is unnormalized; the inverse
// divides by N, so Run followed by RunInverse reproduces the input. Shift
// swaps halves (1-D) or quadrants (2-D) and is its own inverse.
package fft
