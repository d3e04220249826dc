// ABOUTME: Tests for the oto output voice handling
// ABOUTME: Verifies looping, handover, end notification, replacement and gain without an audio device
package output

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/harperreed/crossing-radio/pkg/audio"
	"github.com/rs/zerolog"
)

var testFormat = audio.Format{SampleRate: 1000, Channels: 1, BitDepth: 16}

func TestOtoImplementsOutput(t *testing.T) {
	var _ Output = (*Oto)(nil)
}

// newTestOto returns an output that skips the device but runs the voice path
func newTestOto() *Oto {
	o := NewOto(zerolog.Nop())
	o.format = testFormat
	o.ready = true
	o.gain = 1
	return o
}

func ramp(n int) *audio.Buffer {
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(i + 1)
	}
	return audio.NewBuffer(testFormat, samples)
}

func decode(p []byte) []int16 {
	out := make([]int16, len(p)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(p[i*2:]))
	}
	return out
}

func TestStartBeforeOpen(t *testing.T) {
	o := NewOto(zerolog.Nop())
	if err := o.Start(Voice{ID: "a", Buffer: ramp(4)}); err == nil {
		t.Fatal("expected error starting voice before Open")
	}
	if _, ok := o.Format(); ok {
		t.Error("expected no format before Open")
	}
}

func TestStartRejectsFormatMismatch(t *testing.T) {
	o := newTestOto()
	buf := audio.NewBuffer(audio.Format{SampleRate: 44100, Channels: 2}, make([]int16, 8))
	if err := o.Start(Voice{ID: "a", Buffer: buf}); err == nil {
		t.Fatal("expected format mismatch error")
	}
}

func TestFillFromOffset(t *testing.T) {
	o := newTestOto()
	buf := ramp(10)
	if err := o.Start(Voice{ID: "a", Buffer: buf, Offset: 4 * testFormat.FrameSize(), Loop: true}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	p := make([]byte, 6)
	o.fill(p)

	got := decode(p)
	want := []int16{5, 6, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestFillLoopsWithoutEnding(t *testing.T) {
	o := newTestOto()
	ended := make(chan string, 1)
	if err := o.Start(Voice{ID: "loop", Buffer: ramp(3), Loop: true, OnEnd: func(id string) { ended <- id }}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	p := make([]byte, 2*7)
	o.fill(p)

	want := []int16{1, 2, 3, 1, 2, 3, 1}
	got := decode(p)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}

	select {
	case id := <-ended:
		t.Fatalf("looping voice reported end: %s", id)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestFillReportsEndOnce(t *testing.T) {
	o := newTestOto()
	ended := make(chan string, 4)
	if err := o.Start(Voice{ID: "intro", Buffer: ramp(3), OnEnd: func(id string) { ended <- id }}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	p := make([]byte, 2*5)
	o.fill(p)

	got := decode(p)
	want := []int16{1, 2, 3, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}

	select {
	case id := <-ended:
		if id != "intro" {
			t.Errorf("expected end of intro, got %s", id)
		}
	case <-time.After(time.Second):
		t.Fatal("expected end notification")
	}

	// Further reads produce silence and no second notification
	o.fill(p)
	select {
	case id := <-ended:
		t.Fatalf("unexpected second end notification: %s", id)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestFillContinuesIntoNextWithoutGap(t *testing.T) {
	o := newTestOto()
	ended := make(chan string, 4)
	loop := &Voice{ID: "loop", Buffer: ramp(3), Loop: true, OnEnd: func(id string) { ended <- id }}
	intro := Voice{ID: "intro", Buffer: ramp(4), OnEnd: func(id string) { ended <- id }, Next: loop}
	if err := o.Start(intro); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	p := make([]byte, 2*10)
	o.fill(p)

	want := []int16{1, 2, 3, 4, 1, 2, 3, 1, 2, 3}
	got := decode(p)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}

	select {
	case id := <-ended:
		if id != "intro" {
			t.Errorf("expected end of intro, got %s", id)
		}
	case <-time.After(time.Second):
		t.Fatal("expected end notification")
	}

	// the loop keeps going on the next read and never reports an end
	o.fill(p)
	want = []int16{1, 2, 3, 1, 2, 3, 1, 2, 3, 1}
	got = decode(p)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("second read sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
	select {
	case id := <-ended:
		t.Fatalf("unexpected end notification: %s", id)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestStartRejectsMismatchedNext(t *testing.T) {
	o := newTestOto()
	bad := audio.NewBuffer(audio.Format{SampleRate: 44100, Channels: 2}, make([]int16, 8))
	v := Voice{ID: "intro", Buffer: ramp(4), Next: &Voice{ID: "loop", Buffer: bad, Loop: true}}
	if err := o.Start(v); err == nil {
		t.Fatal("expected format mismatch error for next voice")
	}
}

func TestHaltDropsNext(t *testing.T) {
	o := newTestOto()
	ended := make(chan string, 1)
	v := Voice{ID: "intro", Buffer: ramp(3), OnEnd: func(id string) { ended <- id },
		Next: &Voice{ID: "loop", Buffer: ramp(2), Loop: true}}
	if err := o.Start(v); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	o.Halt()

	p := make([]byte, 2*6)
	o.fill(p)
	for i, s := range decode(p) {
		if s != 0 {
			t.Errorf("sample %d: expected silence, got %d", i, s)
		}
	}
	select {
	case id := <-ended:
		t.Fatalf("halted voice reported end: %s", id)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHaltSuppressesEnd(t *testing.T) {
	o := newTestOto()
	ended := make(chan string, 1)
	if err := o.Start(Voice{ID: "intro", Buffer: ramp(3), OnEnd: func(id string) { ended <- id }}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	o.Halt()
	o.Halt()

	p := make([]byte, 2*5)
	o.fill(p)
	for i, s := range decode(p) {
		if s != 0 {
			t.Errorf("sample %d: expected silence, got %d", i, s)
		}
	}

	select {
	case id := <-ended:
		t.Fatalf("halted voice reported end: %s", id)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestStartReplacesVoice(t *testing.T) {
	o := newTestOto()
	ended := make(chan string, 1)
	if err := o.Start(Voice{ID: "old", Buffer: ramp(3), OnEnd: func(id string) { ended <- id }}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := o.Start(Voice{ID: "new", Buffer: ramp(2), Loop: true}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	p := make([]byte, 2*4)
	o.fill(p)

	want := []int16{1, 2, 1, 2}
	got := decode(p)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}

	select {
	case id := <-ended:
		t.Fatalf("replaced voice reported end: %s", id)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestApplyGain(t *testing.T) {
	pcm := make([]byte, 8)
	for i, s := range []int16{1000, -1000, 500, -500} {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}

	applyGain(pcm, 0.5)

	want := []int16{500, -500, 250, -250}
	got := decode(pcm)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestSetGainClamps(t *testing.T) {
	o := newTestOto()

	o.SetGain(2)
	if o.gain != 1 {
		t.Errorf("expected gain clamped to 1, got %f", o.gain)
	}
	o.SetGain(-1)
	if o.gain != 0 {
		t.Errorf("expected gain clamped to 0, got %f", o.gain)
	}
}
