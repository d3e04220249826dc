// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes whole MP3 files to s16le buffers
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/harperreed/crossing-radio/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// NewMP3 creates a new MP3 decoder
func NewMP3(format audio.Format) (Decoder, error) {
	if format.Codec != "mp3" {
		return nil, fmt.Errorf("invalid codec for MP3 decoder: %s", format.Codec)
	}
	return &MP3Decoder{}, nil
}

// Decode converts MP3 bytes to a PCM buffer.
// go-mp3 always produces stereo 16-bit output.
func (d *MP3Decoder) Decode(data []byte) (*audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	pcm, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("mp3 decode error: %w", err)
	}

	format := audio.Format{
		Codec:      "pcm",
		SampleRate: decoder.SampleRate(),
		Channels:   2,
		BitDepth:   16,
	}

	// Drop a trailing partial frame
	pcm = pcm[:len(pcm)-len(pcm)%format.FrameSize()]
	if len(pcm) == 0 {
		return nil, fmt.Errorf("mp3 decode error: no audio frames")
	}

	return &audio.Buffer{Format: format, PCM: pcm}, nil
}
