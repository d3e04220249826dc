// ABOUTME: Sample-rate conversion package
// ABOUTME: Linear interpolation resampling for decoded PCM
// Package resample converts decoded PCM between sample rates.
//
// Example:
//
//	out := resample.Convert(samples, 2, 48000, 44100)
package resample
