// Package testutil provides testing utilities for vizcore.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random signals, synthetic images with
// known geometric relationships, and comparing float buffers.
//
// # Random Signals
//
//	rng := testutil.NewRNG(seed)
//	sig := make([]float32, 256)
//	rng.FillUniformRange(sig, -1, 1)
//	rng.FillGaussian(sig)
//
// # Synthetic Images
//
//	img := testutil.Gratings(64, 64, testutil.DefaultGratings...)
//	rotated := testutil.RotateGratings(64, 64, 10, testutil.DefaultGratings...)
//	shifted := img.Translate(5, -3)
package testutil
