// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for whole-file audio decoders, selected by extension
package decode

import (
	"fmt"
	"path"
	"strings"

	"github.com/harperreed/crossing-radio/pkg/audio"
)

// Decoder decodes a complete encoded file into a PCM buffer
type Decoder interface {
	// Decode converts encoded audio data to a PCM buffer
	Decode(data []byte) (*audio.Buffer, error)
}

// ForName picks a decoder from the file extension of a resource name
func ForName(name string) (Decoder, error) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	switch ext {
	case "mp3":
		return NewMP3(audio.Format{Codec: "mp3"})
	case "flac":
		return NewFLAC(audio.Format{Codec: "flac"})
	default:
		return nil, fmt.Errorf("unsupported audio format: %q (supported: mp3, flac)", ext)
	}
}
