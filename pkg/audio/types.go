// ABOUTME: Audio type definitions
// ABOUTME: Defines the playback format and immutable decoded buffers
package audio

import "fmt"

// BytesPerSample is the size of one sample in a Buffer (signed 16-bit little-endian)
const BytesPerSample = 2

// Format describes an audio stream format
type Format struct {
	Codec      string
	SampleRate int
	Channels   int
	BitDepth   int
}

// Validate checks that the format can describe a playable buffer
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", f.Channels)
	}
	return nil
}

// FrameSize returns the size in bytes of one interleaved frame
func (f Format) FrameSize() int {
	return f.Channels * BytesPerSample
}

// Buffer is decoded PCM audio ready for playback.
// Buffers are never mutated after decoding and are shared between playbacks.
type Buffer struct {
	Format Format
	PCM    []byte // interleaved s16le
}

// NewBuffer wraps interleaved int16 samples into a Buffer
func NewBuffer(format Format, samples []int16) *Buffer {
	pcm := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		pcm[i*2] = byte(s)
		pcm[i*2+1] = byte(s >> 8)
	}
	format.BitDepth = 16
	return &Buffer{Format: format, PCM: pcm}
}

// Frames returns the number of complete frames in the buffer
func (b *Buffer) Frames() int {
	fs := b.Format.FrameSize()
	if fs == 0 {
		return 0
	}
	return len(b.PCM) / fs
}

// Duration returns the buffer length in seconds
func (b *Buffer) Duration() float64 {
	if b.Format.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.Format.SampleRate)
}

// ByteOffset converts a position in seconds to a frame-aligned byte offset,
// clamped to the buffer bounds
func (b *Buffer) ByteOffset(seconds float64) int {
	if seconds <= 0 {
		return 0
	}
	frame := int(seconds * float64(b.Format.SampleRate))
	if frames := b.Frames(); frame > frames {
		frame = frames
	}
	return frame * b.Format.FrameSize()
}

// Samples returns the buffer content as interleaved int16 samples
func (b *Buffer) Samples() []int16 {
	out := make([]int16, len(b.PCM)/BytesPerSample)
	for i := range out {
		out[i] = int16(uint16(b.PCM[i*2]) | uint16(b.PCM[i*2+1])<<8)
	}
	return out
}

// SampleToInt16 converts a 24-bit int32 sample to int16
func SampleToInt16(sample int32) int16 {
	return int16(sample >> 8)
}

// SampleFromInt16 converts an int16 sample to int32 (left-justified in 24-bit)
func SampleFromInt16(sample int16) int32 {
	return int32(sample) << 8
}

// ScaleToInt16 converts a sample of the given bit depth to int16
func ScaleToInt16(sample int32, bitDepth int) int16 {
	switch {
	case bitDepth > 16:
		return int16(sample >> (bitDepth - 16))
	case bitDepth < 16 && bitDepth > 0:
		return int16(sample << (16 - bitDepth))
	default:
		return int16(sample)
	}
}
