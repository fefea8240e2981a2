// Package geom provides the point, vector and rectangle primitives shared by
// the transform engine, the frame buffer and registration.
package geom

import "math"

// Point is an integer pixel coordinate.
type Point struct {
	X, Y int
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// DistSq returns the squared Euclidean distance between p and q.
func (p Point) DistSq(q Point) int {
	dx, dy := p.X-q.X, p.Y-q.Y
	return dx*dx + dy*dy
}

// Vec2 returns p as a vector.
func (p Point) Vec2() Vec2 {
	return Vec2{X: float32(p.X), Y: float32(p.Y)}
}

// Vec2 is a 2-D float vector.
type Vec2 struct {
	X, Y float32
}

// FromPolar returns the vector of length r at angle theta (radians, counter
// to the X axis towards Y).
func FromPolar(r, theta float64) Vec2 {
	s, c := math.Sincos(theta)
	return Vec2{X: float32(r * c), Y: float32(r * s)}
}

// Add returns v+w.
func (v Vec2) Add(w Vec2) Vec2 {
	return Vec2{X: v.X + w.X, Y: v.Y + w.Y}
}

// Sub returns v-w.
func (v Vec2) Sub(w Vec2) Vec2 {
	return Vec2{X: v.X - w.X, Y: v.Y - w.Y}
}

// Scale returns v*s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Dot returns the dot product of v and w.
func (v Vec2) Dot(w Vec2) float32 {
	return v.X*w.X + v.Y*w.Y
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float32 {
	return float32(math.Hypot(float64(v.X), float64(v.Y)))
}

// Angle returns the angle of v in radians in (-π, π].
func (v Vec2) Angle() float64 {
	return math.Atan2(float64(v.Y), float64(v.X))
}

// Rotate returns v rotated by theta radians.
func (v Vec2) Rotate(theta float64) Vec2 {
	s, c := math.Sincos(theta)
	x, y := float64(v.X), float64(v.Y)
	return Vec2{X: float32(x*c - y*s), Y: float32(x*s + y*c)}
}

// Round returns the nearest integer point.
func (v Vec2) Round() Point {
	return Point{X: int(math.Round(float64(v.X))), Y: int(math.Round(float64(v.Y)))}
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether r covers no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Area returns the number of pixels covered by r.
func (r Rect) Area() int {
	if r.Empty() {
		return 0
	}
	return r.W * r.H
}

// Contains reports whether p lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Intersect returns the overlap of r and s. The result is Empty when they do
// not overlap.
func (r Rect) Intersect(s Rect) Rect {
	x0, y0 := max(r.X, s.X), max(r.Y, s.Y)
	x1, y1 := min(r.X+r.W, s.X+s.W), min(r.Y+r.H, s.Y+s.H)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Clamp restricts r to an image of the given size.
func (r Rect) Clamp(width, height int) Rect {
	return r.Intersect(Rect{W: width, H: height})
}

// Center returns the center of r.
func (r Rect) Center() Vec2 {
	return Vec2{X: float32(r.X) + float32(r.W)/2, Y: float32(r.Y) + float32(r.H)/2}
}

// Bilinear samples a row-major grid of width×height cells at fractional
// coordinates (x, y). Cell (i, j) is data[(j*width+i)*stride]. Neighbors
// outside the grid contribute zero.
func Bilinear(data []float32, width, height, stride int, x, y float32) float32 {
	x0 := int(math.Floor(float64(x)))
	y0 := int(math.Floor(float64(y)))
	fx := x - float32(x0)
	fy := y - float32(y0)

	at := func(i, j int) float32 {
		if i < 0 || j < 0 || i >= width || j >= height {
			return 0
		}
		return data[(j*width+i)*stride]
	}

	top := at(x0, y0)*(1-fx) + at(x0+1, y0)*fx
	bottom := at(x0, y0+1)*(1-fx) + at(x0+1, y0+1)*fx
	return top*(1-fy) + bottom*fy
}
