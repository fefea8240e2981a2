// Package register estimates the geometric relationship between two images
// of the same scene.
//
// Translation uses phase correlation. RotationScale correlates the polar
// resampled magnitude spectra, where rotation becomes a vertical shift and
// (in log-polar form) scaling becomes a horizontal one. All working buffers
// come from the caller's arena and are released before returning.
package register
