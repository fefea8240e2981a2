package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// FillGaussian fills dst with values from a standard normal distribution.
func (r *RNG) FillGaussian(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = float32(r.rand.NormFloat64())
	}
}

// Signal returns n uniform samples in [-1, 1).
func (r *RNG) Signal(n int) []float32 {
	s := make([]float32, n)
	r.FillUniformRange(s, -1, 1)
	return s
}

// NoiseImage returns a w×h image with uniform pixels in [0, 255).
func (r *RNG) NoiseImage(w, h int) *Image {
	img := NewImage(w, h)
	r.FillUniformRange(img.Pix, 0, 255)
	return img
}

// Impulse returns n samples that are zero except for 1 at index at.
func Impulse(n, at int) []float32 {
	s := make([]float32, n)
	s[at] = 1
	return s
}

// Sinusoid returns n samples of amp·cos(2π·cycles·i/n + phase).
func Sinusoid(n int, cycles, amp, phase float64) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(amp * math.Cos(2*math.Pi*cycles*float64(i)/float64(n)+phase))
	}
	return s
}

// DFT is the O(n²) reference transform of a real signal.
func DFT(samples []float32) []complex128 {
	n := len(samples)
	out := make([]complex128, n)
	for k := range n {
		var acc complex128
		for i, v := range samples {
			s, c := math.Sincos(-2 * math.Pi * float64(k*i) / float64(n))
			acc += complex(float64(v)*c, float64(v)*s)
		}
		out[k] = acc
	}
	return out
}

// MaxAbsDiff returns the largest element-wise distance between a and b over
// their common prefix.
func MaxAbsDiff(a, b []float32) float64 {
	var worst float64
	for i := range min(len(a), len(b)) {
		worst = max(worst, math.Abs(float64(a[i]-b[i])))
	}
	return worst
}

// ArgMax returns the index of the largest element of s, or -1 if s is empty.
func ArgMax(s []float32) int {
	best := -1
	for i, v := range s {
		if best < 0 || v > s[best] {
			best = i
		}
	}
	return best
}
