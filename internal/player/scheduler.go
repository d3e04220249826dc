// ABOUTME: Hourly playback scheduler
// ABOUTME: Chooses the segment and seek for an hour and hands the intro over to the loop
package player

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harperreed/crossing-radio/internal/cache"
	"github.com/harperreed/crossing-radio/internal/clock"
	"github.com/harperreed/crossing-radio/internal/metrics"
	"github.com/harperreed/crossing-radio/pkg/audio/output"
)

var (
	// ErrNotPreloaded reports playback requested for an hour missing from the cache
	ErrNotPreloaded = errors.New("hour not preloaded")
	// ErrInvalidHour reports an hour outside 0..23
	ErrInvalidHour = errors.New("invalid hour")
)

// State is the scheduler playback state
type State int

const (
	Idle State = iota
	PlayingStart
	PlayingLoop
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PlayingStart:
		return "playing_start"
	case PlayingLoop:
		return "playing_loop"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Segment names one half of an hour's audio
type Segment string

const (
	SegmentStart Segment = "start"
	SegmentLoop  Segment = "loop"
)

// Decision is what the scheduler chose to play
type Decision struct {
	Hour    clock.Hour
	Segment Segment
	Seek    float64 // seconds into the segment
	Loop    bool
}

// Source is the handle of the single audible playback
type Source struct {
	ID      string
	Hour    clock.Hour
	Segment Segment
}

// Segments looks up decoded hours
type Segments interface {
	Get(h clock.Hour) (*cache.SegmentPair, bool)
}

// Stats tracks scheduler activity
type Stats struct {
	Switches  int64
	StaleEnds int64
}

// Scheduler owns the active source. At most one source is audible
// and the only transition it makes on its own is intro end to loop.
type Scheduler struct {
	out      output.Output
	segments Segments
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	mu     sync.Mutex
	state  State
	active *Source
	next   *Source // loop queued behind the intro
	stats  Stats
}

// NewScheduler creates an idle scheduler
func NewScheduler(out output.Output, segments Segments, logger zerolog.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		out:      out,
		segments: segments,
		logger:   logger.With().Str("component", "scheduler").Logger(),
		metrics:  m,
	}
}

// Decide picks the segment and seek for playing pair at offset seconds into the hour
func Decide(h clock.Hour, pair *cache.SegmentPair, offset float64) Decision {
	loopDur := pair.Loop.Duration()

	if pair.Start == nil {
		return Decision{Hour: h, Segment: SegmentLoop, Seek: wrap(offset, loopDur), Loop: true}
	}

	startDur := pair.Start.Duration()
	if offset >= startDur {
		return Decision{Hour: h, Segment: SegmentLoop, Seek: wrap(offset-startDur, loopDur), Loop: true}
	}
	return Decision{Hour: h, Segment: SegmentStart, Seek: offset, Loop: false}
}

func wrap(offset, length float64) float64 {
	if length <= 0 {
		return 0
	}
	return math.Mod(offset, length)
}

// Play replaces the active source with hour h seeked to offset seconds.
// The hour must already be cached; on ErrNotPreloaded the current
// source keeps playing.
func (s *Scheduler) Play(h clock.Hour, offset float64) (Decision, error) {
	if !h.Valid() {
		return Decision{}, fmt.Errorf("play hour %d: %w", int(h), ErrInvalidHour)
	}

	pair, ok := s.segments.Get(h)
	if !ok {
		return Decision{}, fmt.Errorf("play hour %d: %w", int(h), ErrNotPreloaded)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	d := Decide(h, pair, offset)
	if err := s.startLocked(pair, d); err != nil {
		return d, err
	}

	s.logger.Info().
		Int("hour", int(h)).
		Float64("offset", offset).
		Str("segment", string(d.Segment)).
		Float64("seek", d.Seek).
		Str("source_id", s.active.ID).
		Msg("Playing hour")
	return d, nil
}

// Stop halts the active source. Calling it while idle does nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return
	}
	s.logger.Info().Str("source_id", s.active.ID).Msg("Stopping playback")
	s.stopLocked()
}

// State returns the current state
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active returns the audible source
func (s *Scheduler) Active() (Source, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return Source{}, false
	}
	return *s.active, true
}

// Stats returns scheduler statistics
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *Scheduler) stopLocked() {
	if s.active == nil {
		return
	}
	s.out.Halt()
	s.active = nil
	s.next = nil
	s.state = Idle
}

func (s *Scheduler) startLocked(pair *cache.SegmentPair, d Decision) error {
	buf := pair.Loop
	next := PlayingLoop
	if d.Segment == SegmentStart {
		buf = pair.Start
		next = PlayingStart
	}

	src := &Source{ID: uuid.NewString(), Hour: d.Hour, Segment: d.Segment}
	voice := output.Voice{
		ID:     src.ID,
		Buffer: buf,
		Offset: buf.ByteOffset(d.Seek),
		Loop:   d.Loop,
	}
	var queued *Source
	if !d.Loop {
		// the output continues into the loop itself; OnEnd only moves our state
		queued = &Source{ID: uuid.NewString(), Hour: d.Hour, Segment: SegmentLoop}
		voice.OnEnd = s.segmentEnded
		voice.Next = &output.Voice{ID: queued.ID, Buffer: pair.Loop, Loop: true}
	}

	if err := s.out.Start(voice); err != nil {
		return fmt.Errorf("start %s segment of hour %d: %w", d.Segment, int(d.Hour), err)
	}

	s.active = src
	s.next = queued
	s.state = next
	s.stats.Switches++
	return nil
}

// segmentEnded is the single non-command edge: PlayingStart to PlayingLoop.
// The output has already moved on to the queued loop, so only the state
// changes here. Notices for any other source or state are dropped.
func (s *Scheduler) segmentEnded(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != PlayingStart || s.active == nil || s.active.ID != id || s.next == nil {
		s.stats.StaleEnds++
		s.metrics.StaleEnd()
		s.logger.Debug().Str("source_id", id).Str("state", s.state.String()).Msg("Ignoring stale segment end")
		return
	}

	s.active, s.next = s.next, nil
	s.state = PlayingLoop
	s.stats.Switches++
	s.metrics.Switch("intro_end")
	s.logger.Debug().Int("hour", int(s.active.Hour)).Str("source_id", s.active.ID).Msg("Intro finished, looping")
}
