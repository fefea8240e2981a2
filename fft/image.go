package fft

import "image"

// Image is a single-channel pixel source for 2-D sessions.
type Image interface {
	Width() int
	Height() int
	Pixel(x, y int) float32
}

// Gray adapts an *image.Gray to Image. Coordinates are relative to the
// image's bounds.
type Gray struct {
	*image.Gray
}

// FromGray wraps img.
func FromGray(img *image.Gray) Gray {
	return Gray{Gray: img}
}

// Width returns the image width.
func (g Gray) Width() int {
	return g.Rect.Dx()
}

// Height returns the image height.
func (g Gray) Height() int {
	return g.Rect.Dy()
}

// Pixel returns the intensity at (x, y).
func (g Gray) Pixel(x, y int) float32 {
	return float32(g.GrayAt(g.Rect.Min.X+x, g.Rect.Min.Y+y).Y)
}
