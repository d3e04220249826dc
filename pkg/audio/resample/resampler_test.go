// ABOUTME: Tests for audio resampler
// ABOUTME: Tests linear interpolation resampling between sample rates
package resample

import "testing"

func TestNewResampler(t *testing.T) {
	r := New(44100, 48000, 2)

	if r.inputRate != 44100 {
		t.Errorf("expected inputRate 44100, got %d", r.inputRate)
	}
	if r.outputRate != 48000 {
		t.Errorf("expected outputRate 48000, got %d", r.outputRate)
	}
	if r.channels != 2 {
		t.Errorf("expected channels 2, got %d", r.channels)
	}
}

func TestResampleUpsampling(t *testing.T) {
	r := New(44100, 48000, 2)

	input := make([]int32, 200)
	for i := range input {
		input[i] = int32(i * 100)
	}

	expectedSize := int(float64(len(input)) * float64(48000) / float64(44100))
	output := make([]int32, expectedSize)

	n := r.Resample(input, output)
	if n == 0 {
		t.Fatal("resampler produced no output")
	}
	if n < expectedSize-10 || n > expectedSize+10 {
		t.Errorf("expected ~%d samples, got %d", expectedSize, n)
	}
}

func TestResampleEmptyInput(t *testing.T) {
	r := New(48000, 44100, 2)
	if n := r.Resample(nil, make([]int32, 10)); n != 0 {
		t.Errorf("expected 0 samples from empty input, got %d", n)
	}
}

func TestConvertSameRateIsIdentity(t *testing.T) {
	in := []int16{1, 2, 3, 4}
	out := Convert(in, 2, 44100, 44100)
	if &out[0] != &in[0] {
		t.Error("expected input slice to be returned unchanged")
	}
}

func TestConvertDownsampleHalvesLength(t *testing.T) {
	in := make([]int16, 2*1000)
	for i := range in {
		in[i] = 1000
	}

	out := Convert(in, 2, 48000, 24000)

	frames := len(out) / 2
	if frames < 495 || frames > 501 {
		t.Errorf("expected ~500 frames, got %d", frames)
	}
	if len(out)%2 != 0 {
		t.Errorf("output not frame aligned: %d samples", len(out))
	}
	for i, s := range out {
		if s != 1000 {
			t.Fatalf("sample %d: expected constant 1000, got %d", i, s)
		}
	}
}
