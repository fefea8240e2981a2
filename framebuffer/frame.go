package framebuffer

import (
	"fmt"
	"image"

	"github.com/RoaringBitmap/roaring/v2"
)

// Frame is an 8-bit grayscale image stored row-major.
//
// Frames owned by a Buffer record which rows are modified. Access them only
// while holding the buffer's mutex.
type Frame struct {
	w, h  int
	pix   []byte
	dirty *roaring.Bitmap
}

// NewFrame returns a black w×h frame that does not track changes.
func NewFrame(w, h int) *Frame {
	if w <= 0 || h <= 0 {
		panic(fmt.Sprintf("framebuffer: invalid frame size %dx%d", w, h))
	}
	return &Frame{w: w, h: h, pix: make([]byte, w*h)}
}

// Width returns the frame width.
func (f *Frame) Width() int {
	return f.w
}

// Height returns the frame height.
func (f *Frame) Height() int {
	return f.h
}

// Pixel returns the intensity at (x, y) as a float.
func (f *Frame) Pixel(x, y int) float32 {
	return float32(f.pix[y*f.w+x])
}

// At returns the intensity at (x, y).
func (f *Frame) At(x, y int) uint8 {
	return f.pix[y*f.w+x]
}

// Set stores v at (x, y).
func (f *Frame) Set(x, y int, v uint8) {
	f.pix[y*f.w+x] = v
	f.touch(y, 1)
}

// Row returns row y for modification.
func (f *Frame) Row(y int) []byte {
	f.touch(y, 1)
	return f.pix[y*f.w : (y+1)*f.w : (y+1)*f.w]
}

// Fill sets every pixel to v.
func (f *Frame) Fill(v uint8) {
	for i := range f.pix {
		f.pix[i] = v
	}
	f.touch(0, f.h)
}

// CopyFrom copies the overlapping part of g, anchored at g's bounds minimum.
func (f *Frame) CopyFrom(g *image.Gray) {
	w := min(f.w, g.Rect.Dx())
	h := min(f.h, g.Rect.Dy())
	for y := 0; y < h; y++ {
		src := g.Pix[y*g.Stride : y*g.Stride+w]
		copy(f.pix[y*f.w:], src)
	}
	f.touch(0, h)
}

// Gray returns a copy of the frame as an *image.Gray.
func (f *Frame) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, f.w, f.h))
	copy(g.Pix, f.pix)
	return g
}

func (f *Frame) touch(y, n int) {
	if f.dirty == nil || n <= 0 {
		return
	}
	f.dirty.AddRange(uint64(y), uint64(y+n))
}
