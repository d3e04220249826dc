// ABOUTME: Buffer format conversion
// ABOUTME: Remixes channels and resamples decoded buffers to the output format
package decode

import (
	"github.com/harperreed/crossing-radio/pkg/audio"
	"github.com/harperreed/crossing-radio/pkg/audio/resample"
)

// Conform returns buf converted to the channel count and sample rate of target.
// buf is returned unchanged when it already matches.
func Conform(buf *audio.Buffer, target audio.Format) *audio.Buffer {
	if buf.Format.Channels == target.Channels && buf.Format.SampleRate == target.SampleRate {
		return buf
	}

	samples := remix(buf.Samples(), buf.Format.Channels, target.Channels)
	samples = resample.Convert(samples, target.Channels, buf.Format.SampleRate, target.SampleRate)

	return audio.NewBuffer(audio.Format{
		Codec:      "pcm",
		SampleRate: target.SampleRate,
		Channels:   target.Channels,
	}, samples)
}

// remix converts interleaved samples between channel counts.
// Downmixing averages all input channels; upmixing copies them cyclically.
func remix(samples []int16, from, to int) []int16 {
	if from == to {
		return samples
	}

	frames := len(samples) / from
	out := make([]int16, frames*to)
	for f := 0; f < frames; f++ {
		in := samples[f*from : f*from+from]
		if to < from {
			var sum int
			for _, s := range in {
				sum += int(s)
			}
			avg := int16(sum / from)
			for ch := 0; ch < to; ch++ {
				out[f*to+ch] = avg
			}
			continue
		}
		for ch := 0; ch < to; ch++ {
			out[f*to+ch] = in[ch%from]
		}
	}
	return out
}
