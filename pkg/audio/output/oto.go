// ABOUTME: Oto-based audio output implementation
// ABOUTME: Feeds the active voice into one persistent oto player with software gain
package output

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/harperreed/crossing-radio/pkg/audio"
	"github.com/rs/zerolog"
)

// DefaultGain is the fixed output attenuation
const DefaultGain = 0.5

// Oto output implementation using oto library
type Oto struct {
	mu     sync.Mutex
	otoCtx *oto.Context
	player *oto.Player
	format audio.Format
	gain   float64
	ready  bool
	voice  *activeVoice
	logger zerolog.Logger
}

type activeVoice struct {
	Voice
	pos int
}

// NewOto creates a new Oto output
func NewOto(logger zerolog.Logger) *Oto {
	return &Oto{
		gain:   DefaultGain,
		logger: logger.With().Str("component", "output").Logger(),
	}
}

// Open initializes the output device
func (o *Oto) Open(format audio.Format) error {
	if err := format.Validate(); err != nil {
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.otoCtx != nil {
		// oto only allows one context per process
		if o.format.SampleRate == format.SampleRate && o.format.Channels == format.Channels {
			o.logger.Debug().Msg("audio output already initialized with same format, reusing context")
			if o.player == nil {
				if err := o.otoCtx.Resume(); err != nil {
					return fmt.Errorf("failed to resume oto context: %w", err)
				}
				o.startPlayerLocked()
			}
			return nil
		}
		return fmt.Errorf("audio context already open at %dHz %dch", o.format.SampleRate, o.format.Channels)
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	format.Codec = "pcm"
	format.BitDepth = 16

	o.otoCtx = ctx
	o.format = format

	o.startPlayerLocked()

	o.logger.Info().
		Int("sample_rate", format.SampleRate).
		Int("channels", format.Channels).
		Msg("audio output initialized")

	return nil
}

// startPlayerLocked creates the persistent player pulling from the active voice
func (o *Oto) startPlayerLocked() {
	o.player = o.otoCtx.NewPlayer(&voiceReader{o: o})
	o.player.SetBufferSize(o.format.SampleRate * o.format.FrameSize() / 10)
	o.player.Play()
	o.ready = true
}

// Format returns the shared context format
func (o *Oto) Format() (audio.Format, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.format, o.ready
}

// Start replaces the active voice
func (o *Oto) Start(v Voice) error {
	if v.Buffer == nil {
		return fmt.Errorf("voice %s has no buffer", v.ID)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.ready {
		return fmt.Errorf("output not initialized")
	}
	for next := &v; next != nil; next = next.Next {
		if err := o.checkLocked(next); err != nil {
			return err
		}
	}

	o.voice = o.activate(v)
	return nil
}

func (o *Oto) checkLocked(v *Voice) error {
	if v.Buffer == nil {
		return fmt.Errorf("voice %s has no buffer", v.ID)
	}
	if v.Buffer.Format.SampleRate != o.format.SampleRate || v.Buffer.Format.Channels != o.format.Channels {
		return fmt.Errorf("voice %s format %dHz/%dch does not match output %dHz/%dch", v.ID,
			v.Buffer.Format.SampleRate, v.Buffer.Format.Channels, o.format.SampleRate, o.format.Channels)
	}
	return nil
}

// activate positions v at its frame-aligned start offset
func (o *Oto) activate(v Voice) *activeVoice {
	offset := v.Offset
	if offset < 0 || offset > len(v.Buffer.PCM) {
		offset = 0
	}
	if fs := o.format.FrameSize(); fs > 0 {
		offset -= offset % fs
	}
	return &activeVoice{Voice: v, pos: offset}
}

// Halt drops the active voice without reporting its end
func (o *Oto) Halt() {
	o.mu.Lock()
	o.voice = nil
	o.mu.Unlock()
}

// SetGain sets the output gain (0-1)
func (o *Oto) SetGain(gain float64) {
	if gain < 0 {
		gain = 0
	}
	if gain > 1 {
		gain = 1
	}
	o.mu.Lock()
	o.gain = gain
	o.mu.Unlock()
	o.logger.Debug().Float64("gain", gain).Msg("gain set")
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	o.voice = nil
	player, ctx := o.player, o.otoCtx
	o.player = nil
	o.ready = false
	o.mu.Unlock()

	// the player reads through fill, so close it without holding mu
	if player != nil {
		if err := player.Close(); err != nil {
			o.logger.Warn().Err(err).Msg("player close error")
		}
	}
	if ctx != nil {
		if err := ctx.Suspend(); err != nil {
			return fmt.Errorf("failed to suspend oto context: %w", err)
		}
	}
	return nil
}

// fill copies the active voice into p, looping or ending it as needed.
// Anything not covered by the voice is silence.
func (o *Oto) fill(p []byte) int {
	o.mu.Lock()

	n := len(p)
	if fs := o.format.FrameSize(); fs > 0 {
		n -= n % fs
	}

	filled := 0
	var ended []Voice
	for o.voice != nil && filled < n {
		v := o.voice
		c := copy(p[filled:n], v.Buffer.PCM[v.pos:])
		v.pos += c
		filled += c

		if v.pos < len(v.Buffer.PCM) {
			continue
		}
		if v.Loop && len(v.Buffer.PCM) > 0 {
			v.pos = 0
			continue
		}
		ended = append(ended, v.Voice)
		o.voice = nil
		if v.Next != nil {
			o.voice = o.activate(*v.Next)
		}
	}

	applyGain(p[:filled], o.gain)
	o.mu.Unlock()

	for i := filled; i < len(p); i++ {
		p[i] = 0
	}

	if len(ended) > 0 {
		go func() {
			for _, v := range ended {
				if v.OnEnd != nil {
					v.OnEnd(v.ID)
				}
			}
		}()
	}

	return len(p)
}

// voiceReader adapts the output to the io.Reader oto pulls from
type voiceReader struct {
	o *Oto
}

func (r *voiceReader) Read(p []byte) (int, error) {
	return r.o.fill(p), nil
}

// applyGain scales s16le samples in place with clipping protection
func applyGain(pcm []byte, gain float64) {
	if gain == 1 {
		return
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(pcm[i:]))
		scaled := int32(float64(sample) * gain)
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}
		binary.LittleEndian.PutUint16(pcm[i:], uint16(int16(scaled)))
	}
}
