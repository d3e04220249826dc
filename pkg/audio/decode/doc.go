// ABOUTME: Audio decoder package for multiple codec support
// ABOUTME: Provides Decoder interface and implementations for MP3 and FLAC
// Package decode turns complete encoded audio files into PCM buffers.
//
// Supports: MP3 (go-mp3), FLAC (mewkiz/flac)
//
// Decoded buffers are interleaved signed 16-bit PCM. Conform converts them
// to the channel count and sample rate of the output context.
//
// Example:
//
//	decoder, err := decode.ForName("songs/nl/7_loop.mp3")
//	buf, err := decoder.Decode(data)
//	buf = decode.Conform(buf, outputFormat)
package decode
