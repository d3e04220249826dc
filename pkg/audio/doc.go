// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the audio types shared by decoders, the output and the player.
//
// A Buffer holds a whole decoded segment as interleaved signed 16-bit little-endian
// PCM in the format of the shared output context:
//   - Duration reports its length in seconds
//   - ByteOffset converts a playback position into a frame-aligned byte offset
//
// Example:
//
//	format := audio.Format{SampleRate: 44100, Channels: 2, BitDepth: 16}
//	buf := audio.NewBuffer(format, samples)
//	start := buf.ByteOffset(12.5)
package audio
