// ABOUTME: Test doubles for the player package
// ABOUTME: A recording audio output and an in-memory segment store
package player

import (
	"context"
	"errors"
	"sync"

	"github.com/harperreed/crossing-radio/internal/cache"
	"github.com/harperreed/crossing-radio/internal/clock"
	"github.com/harperreed/crossing-radio/pkg/audio"
	"github.com/harperreed/crossing-radio/pkg/audio/output"
)

var testFormat = audio.Format{Codec: "pcm", SampleRate: 100, Channels: 1, BitDepth: 16}

func seconds(s int) *audio.Buffer {
	return audio.NewBuffer(testFormat, make([]int16, s*testFormat.SampleRate))
}

type fakeOutput struct {
	mu       sync.Mutex
	started  []output.Voice
	current  *output.Voice
	halts    int
	startErr error
}

func (f *fakeOutput) Open(audio.Format) error { return nil }

func (f *fakeOutput) Format() (audio.Format, bool) { return testFormat, true }

func (f *fakeOutput) Start(v output.Voice) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, v)
	f.current = &v
	return nil
}

func (f *fakeOutput) Halt() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.halts++
	f.current = nil
}

func (f *fakeOutput) SetGain(float64) {}

func (f *fakeOutput) Close() error { return nil }

// finish simulates the natural end of the current voice, continuing
// into its queued successor the way the device output does
func (f *fakeOutput) finish() (output.Voice, bool) {
	f.mu.Lock()
	if f.current == nil || f.current.Loop {
		f.mu.Unlock()
		return output.Voice{}, false
	}
	v := *f.current
	f.current = v.Next
	f.mu.Unlock()

	if v.OnEnd != nil {
		v.OnEnd(v.ID)
	}
	return v, true
}

func (f *fakeOutput) starts() []output.Voice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]output.Voice(nil), f.started...)
}

func (f *fakeOutput) last() output.Voice {
	s := f.starts()
	return s[len(s)-1]
}

func (f *fakeOutput) audible() (output.Voice, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		return output.Voice{}, false
	}
	return *f.current, true
}

// fakeSegments is a cache stand-in. Preload moves an hour from pending
// into the loaded set.
type fakeSegments struct {
	mu       sync.Mutex
	loaded   map[clock.Hour]*cache.SegmentPair
	pending  map[clock.Hour]*cache.SegmentPair
	preloads map[clock.Hour]int
}

func newFakeSegments() *fakeSegments {
	return &fakeSegments{
		loaded:   make(map[clock.Hour]*cache.SegmentPair),
		pending:  make(map[clock.Hour]*cache.SegmentPair),
		preloads: make(map[clock.Hour]int),
	}
}

func (f *fakeSegments) put(h clock.Hour, start, loop int) *cache.SegmentPair {
	f.mu.Lock()
	defer f.mu.Unlock()
	pair := &cache.SegmentPair{Loop: seconds(loop)}
	if start > 0 {
		pair.Start = seconds(start)
	}
	f.loaded[h] = pair
	return pair
}

func (f *fakeSegments) Get(h clock.Hour) (*cache.SegmentPair, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pair, ok := f.loaded[h]
	return pair, ok
}

func (f *fakeSegments) Preload(ctx context.Context, h clock.Hour) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preloads[h]++
	if _, ok := f.loaded[h]; ok {
		return nil
	}
	pair, ok := f.pending[h]
	if !ok {
		return cache.ErrLoopUnavailable
	}
	f.loaded[h] = pair
	return nil
}

func (f *fakeSegments) preloadCount(h clock.Hour) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preloads[h]
}

var errDevice = errors.New("device lost")
