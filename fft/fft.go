package fft

import (
	"errors"
	"math"
	"math/bits"
)

// ErrInvalidSize is returned when a session would transform zero samples.
var ErrInvalidSize = errors.New("fft: empty transform region")

// NextPow2 returns the smallest power of two >= n. It returns 1 for n <= 1.
func NextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Log2 returns log2(n) for a power of two n.
func Log2(n int) int {
	return bits.TrailingZeros(uint(n))
}

// transform runs an in-place radix-2 FFT over n complex samples. Sample i
// occupies data[2*i*stride] and data[2*i*stride+1]. The inverse divides by n.
func transform(data []float32, n, stride int, inverse bool) {
	if n < 2 {
		return
	}

	bitReverse(data, n, stride)

	sign := -1.0
	if inverse {
		sign = 1.0
	}

	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := sign * 2 * math.Pi / float64(size)
		for k := 0; k < half; k++ {
			ws, wc := math.Sincos(step * float64(k))
			wr, wi := float32(wc), float32(ws)
			for start := 0; start < n; start += size {
				i := 2 * (start + k) * stride
				j := 2 * (start + k + half) * stride

				tr := data[j]*wr - data[j+1]*wi
				ti := data[j]*wi + data[j+1]*wr

				data[j] = data[i] - tr
				data[j+1] = data[i+1] - ti
				data[i] += tr
				data[i+1] += ti
			}
		}
	}

	if inverse {
		scale := 1 / float32(n)
		for i := 0; i < n; i++ {
			p := 2 * i * stride
			data[p] *= scale
			data[p+1] *= scale
		}
	}
}

func bitReverse(data []float32, n, stride int) {
	shift := bits.UintSize - Log2(n)
	for i := 0; i < n; i++ {
		j := int(bits.Reverse(uint(i)) >> shift)
		if i < j {
			p, q := 2*i*stride, 2*j*stride
			data[p], data[q] = data[q], data[p]
			data[p+1], data[q+1] = data[q+1], data[p+1]
		}
	}
}
