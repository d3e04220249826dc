// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes whole FLAC files to s16le buffers
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/harperreed/crossing-radio/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// NewFLAC creates a new FLAC decoder
func NewFLAC(format audio.Format) (Decoder, error) {
	if format.Codec != "flac" {
		return nil, fmt.Errorf("invalid codec for FLAC decoder: %s", format.Codec)
	}
	return &FLACDecoder{}, nil
}

// Decode converts FLAC bytes to a PCM buffer
func (d *FLACDecoder) Decode(data []byte) (*audio.Buffer, error) {
	stream, err := flac.New(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open flac stream: %w", err)
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	bitDepth := int(stream.Info.BitsPerSample)

	samples := make([]int16, 0, int(stream.Info.NSamples)*channels)
	for {
		f, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac decode error: %w", err)
		}

		n := int(f.BlockSize)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, audio.ScaleToInt16(f.Subframes[ch].Samples[i], bitDepth))
			}
		}
	}

	if len(samples) == 0 {
		return nil, fmt.Errorf("flac decode error: no audio frames")
	}

	format := audio.Format{
		Codec:      "pcm",
		SampleRate: int(stream.Info.SampleRate),
		Channels:   channels,
	}
	return audio.NewBuffer(format, samples), nil
}
