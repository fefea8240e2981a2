package fft

import "math"

// Element-wise operations over interleaved samples.

func magnitude(data []float32) {
	for i := 0; i < len(data); i += 2 {
		data[i] = float32(math.Hypot(float64(data[i]), float64(data[i+1])))
		data[i+1] = 0
	}
}

func phase(data []float32) {
	for i := 0; i < len(data); i += 2 {
		data[i] = float32(math.Atan2(float64(data[i+1]), float64(data[i])))
		data[i+1] = 0
	}
}

func logReal(data []float32) {
	for i := 0; i < len(data); i += 2 {
		data[i] = float32(math.Log(float64(data[i])))
	}
}

func expReal(data []float32) {
	for i := 0; i < len(data); i += 2 {
		data[i] = float32(math.Exp(float64(data[i])))
	}
}

func clearImag(data []float32) {
	for i := 1; i < len(data); i += 2 {
		data[i] = 0
	}
}

// swapCyclic moves sample (x, y) to ((x+w/2)%w, (y+h/2)%h). Both sizes are
// powers of two, so the move is an involution and each pair swaps once.
func swapCyclic(data []float32, w, h int) {
	hw, hh := w/2, h/2
	for y := 0; y < h; y++ {
		ty := (y + hh) % h
		for x := 0; x < w; x++ {
			tx := (x + hw) % w
			src, dst := y*w+x, ty*w+tx
			if src >= dst {
				continue
			}
			p, q := 2*src, 2*dst
			data[p], data[q] = data[q], data[p]
			data[p+1], data[q+1] = data[q+1], data[p+1]
		}
	}
}
