package testutil

import (
	"image"
	"image/color"
	"math"
)

// Image is a single-channel float image stored row-major.
type Image struct {
	W, H int
	Pix  []float32
}

// NewImage returns a black w×h image.
func NewImage(w, h int) *Image {
	return &Image{W: w, H: h, Pix: make([]float32, w*h)}
}

// Width returns the image width.
func (m *Image) Width() int { return m.W }

// Height returns the image height.
func (m *Image) Height() int { return m.H }

// Pixel returns the value at (x, y), or 0 outside the image.
func (m *Image) Pixel(x, y int) float32 {
	if x < 0 || y < 0 || x >= m.W || y >= m.H {
		return 0
	}
	return m.Pix[y*m.W+x]
}

// Set stores v at (x, y).
func (m *Image) Set(x, y int, v float32) {
	m.Pix[y*m.W+x] = v
}

// Translate returns a copy whose content is moved by (dx, dy). Uncovered
// pixels are black.
func (m *Image) Translate(dx, dy int) *Image {
	out := NewImage(m.W, m.H)
	for y := range m.H {
		for x := range m.W {
			out.Pix[y*m.W+x] = m.Pixel(x-dx, y-dy)
		}
	}
	return out
}

// Gray converts the image to 8-bit, clamping to [0, 255].
func (m *Image) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.W, m.H))
	for y := range m.H {
		for x := range m.W {
			v := math.Round(float64(m.Pixel(x, y)))
			g.SetGray(x, y, color.Gray{Y: uint8(max(0, min(255, v)))})
		}
	}
	return g
}

// Grating is a plane wave under a Gaussian envelope centered in the image.
type Grating struct {
	// Cycles per 64 pixels.
	Frequency float64
	// Direction of the wave vector in degrees.
	Angle     float64
	Amplitude float64
}

// DefaultGratings have distinct frequencies and directions so that their
// spectrum has no rotational symmetry.
var DefaultGratings = []Grating{
	{Frequency: 9, Angle: 20, Amplitude: 100},
	{Frequency: 14, Angle: 75, Amplitude: 70},
	{Frequency: 20, Angle: 130, Amplitude: 50},
}

// EnvelopeSigma is the Gaussian envelope width of Gratings, in pixels.
const EnvelopeSigma = 10.0

// Gratings renders the sum of gs into a w×h image.
func Gratings(w, h int, gs ...Grating) *Image {
	return RotateGratings(w, h, 0, gs...)
}

// RotateGratings renders gs rotated by deg degrees about the image center.
func RotateGratings(w, h int, deg float64, gs ...Grating) *Image {
	return TransformGratings(w, h, deg, 1, gs...)
}

// TransformGratings renders gs rotated by deg degrees and magnified by scale
// about the image center. The transform is applied analytically, so the
// result has no resampling artifacts.
func TransformGratings(w, h int, deg, scale float64, gs ...Grating) *Image {
	img := NewImage(w, h)
	cx, cy := float64(w)/2, float64(h)/2
	rot := deg * math.Pi / 180

	for y := range h {
		for x := range w {
			// Sample the original pattern at R(-rot)·(p-c)/scale.
			px, py := (float64(x)-cx)/scale, (float64(y)-cy)/scale
			s, c := math.Sincos(-rot)
			u, v := px*c-py*s, px*s+py*c

			env := math.Exp(-(u*u + v*v) / (2 * EnvelopeSigma * EnvelopeSigma))
			var sum float64
			for _, g := range gs {
				gsin, gcos := math.Sincos(g.Angle * math.Pi / 180)
				k := 2 * math.Pi * g.Frequency / 64
				sum += g.Amplitude * math.Cos(k*(u*gcos+v*gsin))
			}
			img.Pix[y*w+x] = float32(sum * env)
		}
	}
	return img
}
