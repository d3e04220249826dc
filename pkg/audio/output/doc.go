// ABOUTME: Audio output package for playing audio
// ABOUTME: Provides Output interface and oto implementation
// Package output provides audio playback.
//
// An Output owns the single shared audio context and plays one Voice at a
// time. Starting a voice replaces the previous one; a replaced or halted
// voice never reports its end. A non-looping voice may queue a Next voice
// that takes over within the same read.
//
// Example:
//
//	out := output.NewOto(logger)
//	err := out.Open(audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16})
//	err = out.Start(output.Voice{ID: "a", Buffer: buf, Loop: true})
package output
