// ABOUTME: Audio output interface definition
// ABOUTME: Single-voice playback contract shared by the player and backends
package output

import "github.com/harperreed/crossing-radio/pkg/audio"

// Voice is one buffer connected to the output at a start position
type Voice struct {
	// ID identifies the voice in end notifications
	ID string

	// Buffer is the decoded segment; it is only read
	Buffer *audio.Buffer

	// Offset is the frame-aligned start position in bytes
	Offset int

	// Loop restarts the buffer from zero when it runs out
	Loop bool

	// OnEnd is called once when a non-looping voice reaches its end.
	// It is never called for a voice that was halted or replaced.
	OnEnd func(id string)

	// Next takes over in the same read when a non-looping voice ends,
	// so the two play without a gap. OnEnd still fires for this voice.
	Next *Voice
}

// Output represents an audio output device with at most one active voice
type Output interface {
	// Open initializes the shared audio context
	Open(format audio.Format) error

	// Format returns the context format, false before Open
	Format() (audio.Format, bool)

	// Start replaces the active voice
	Start(v Voice) error

	// Halt stops and releases the active voice; safe when idle
	Halt()

	// SetGain sets the fixed output gain (0-1)
	SetGain(gain float64)

	// Close releases output resources
	Close() error
}
