// ABOUTME: Playback session facade
// ABOUTME: Wires clock, cache, scheduler and monitor behind start, stop and a 1 Hz run loop
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/harperreed/crossing-radio/internal/clock"
	"github.com/harperreed/crossing-radio/internal/metrics"
	"github.com/harperreed/crossing-radio/internal/nowplaying"
	"github.com/harperreed/crossing-radio/internal/player"
	"github.com/harperreed/crossing-radio/pkg/audio/output"
)

// Cache is the segment store a session plays from
type Cache interface {
	player.Segments
	player.Preloader
}

// Config holds session collaborators
type Config struct {
	Clock    clock.Source
	Ticker   clockwork.Clock // drives Run; nil means real time
	Output   output.Output
	Cache    Cache
	Observer nowplaying.Observer
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
	Artist   string
}

// Snapshot is the session state after a tick or command
type Snapshot struct {
	Now     time.Time
	Hour    clock.Hour
	Offset  float64
	Label   string
	Playing bool
	State   player.State
}

// Session is the single control surface of the player
type Session struct {
	clock     clock.Source
	ticker    clockwork.Clock
	cache     Cache
	scheduler *player.Scheduler
	monitor   *player.Monitor
	observer  nowplaying.Observer
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	artist    string

	// cmdMu serializes Start and Stop
	cmdMu   sync.Mutex
	mu      sync.RWMutex
	playing bool
	hour    clock.Hour

	subsMu sync.Mutex
	subs   map[chan Snapshot]struct{}
}

// New creates a stopped session
func New(cfg Config) *Session {
	if cfg.Ticker == nil {
		cfg.Ticker = clockwork.NewRealClock()
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.NewRealtime(cfg.Ticker)
	}
	if cfg.Observer == nil {
		cfg.Observer = nowplaying.Noop{}
	}

	scheduler := player.NewScheduler(cfg.Output, cfg.Cache, cfg.Logger, cfg.Metrics)
	s := &Session{
		clock:     cfg.Clock,
		ticker:    cfg.Ticker,
		cache:     cfg.Cache,
		scheduler: scheduler,
		monitor:   player.NewMonitor(scheduler, cfg.Cache, cfg.Logger, cfg.Metrics),
		observer:  cfg.Observer,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger.With().Str("component", "session").Logger(),
		artist:    cfg.Artist,
		subs:      make(map[chan Snapshot]struct{}),
	}
	s.monitor.OnSwitch(s.hourSwitched)
	return s
}

// Open starts loading the current hour so the first Start is quick
func (s *Session) Open(ctx context.Context) {
	h := clock.HourOf(s.clock.Now())
	s.logger.Debug().Int("hour", int(h)).Msg("Preloading current hour")
	s.monitor.PreloadAsync(ctx, h)
}

// Start joins the current hour at the offset given by the clock.
// It waits for the hour to load if needed. Starting while playing does nothing.
func (s *Session) Start(ctx context.Context) error {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	if s.IsPlaying() {
		return nil
	}

	h, offset, err := s.ready(ctx)
	if err != nil {
		s.logger.Error().Err(err).Int("hour", int(h)).Msg("Cannot start playback")
		return err
	}

	if _, err := s.scheduler.Play(h, offset); err != nil {
		s.logger.Error().Err(err).Int("hour", int(h)).Msg("Cannot start playback")
		return fmt.Errorf("start playback: %w", err)
	}

	s.mu.Lock()
	s.playing = true
	s.hour = h
	s.mu.Unlock()
	s.notifyPlaying(h)

	s.monitor.Arm(h)
	s.monitor.PreloadAsync(ctx, clock.NextHour(h))
	s.metrics.Switch("start")
	s.metrics.SetPlaying(true)

	s.publish()
	return nil
}

// ready loads the current hour and returns it with a fresh offset.
// A load that runs across a rollover is retried once for the new hour.
func (s *Session) ready(ctx context.Context) (clock.Hour, float64, error) {
	var h clock.Hour
	for attempt := 0; attempt < 2; attempt++ {
		h = clock.HourOf(s.clock.Now())
		if err := s.cache.Preload(ctx, h); err != nil {
			return h, 0, fmt.Errorf("load hour %d: %w", int(h), err)
		}

		now := s.clock.Now()
		if clock.HourOf(now) == h {
			return h, clock.OffsetInHour(now), nil
		}
	}
	return h, 0, fmt.Errorf("load hour %d: clock moved past the hour while loading", int(h))
}

// Stop halts playback. Stopping a stopped session does nothing.
func (s *Session) Stop() {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	s.monitor.Disarm()
	s.scheduler.Stop()

	s.mu.Lock()
	was := s.playing
	s.playing = false
	h := s.hour
	s.mu.Unlock()

	if !was {
		return
	}
	s.metrics.SetPlaying(false)
	if err := s.observer.Paused(nowplaying.NewInfo(h, s.artist)); err != nil {
		s.logger.Debug().Err(err).Int("hour", int(h)).Msg("Now-playing pause update failed")
	}
	s.publish()
}

// Toggle starts a stopped session or stops a playing one
func (s *Session) Toggle(ctx context.Context) error {
	if s.IsPlaying() {
		s.Stop()
		return nil
	}
	return s.Start(ctx)
}

// IsPlaying reports whether audio is playing
func (s *Session) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playing
}

// Scheduler exposes the scheduler for inspection
func (s *Session) Scheduler() *player.Scheduler {
	return s.scheduler
}

// Snapshot returns the current state
func (s *Session) Snapshot() Snapshot {
	now := s.clock.Now()
	h := clock.HourOf(now)
	return Snapshot{
		Now:     now,
		Hour:    h,
		Offset:  clock.OffsetInHour(now),
		Label:   clock.Label(h),
		Playing: s.IsPlaying(),
		State:   s.scheduler.State(),
	}
}

// Subscribe returns a channel of snapshots. Slow readers only see the latest one.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	return ch, func() {
		s.subsMu.Lock()
		delete(s.subs, ch)
		s.subsMu.Unlock()
	}
}

func (s *Session) publish() {
	snap := s.Snapshot()

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// Tick advances the clock by one tick and handles any rollover
func (s *Session) Tick(ctx context.Context) {
	s.clock.Advance()
	s.monitor.Observe(ctx, s.clock.Now())
	s.publish()
}

// hourSwitched runs once playback has actually moved to hour h
func (s *Session) hourSwitched(h clock.Hour) {
	s.mu.Lock()
	s.hour = h
	s.mu.Unlock()
	s.notifyPlaying(h)
}

func (s *Session) notifyPlaying(h clock.Hour) {
	if err := s.observer.Playing(nowplaying.NewInfo(h, s.artist)); err != nil {
		s.logger.Debug().Err(err).Int("hour", int(h)).Msg("Now-playing update failed")
	}
}

// Run ticks once per second until ctx is done, then stops playback
func (s *Session) Run(ctx context.Context) error {
	ticker := s.ticker.NewTicker(clock.TickInterval)
	defer ticker.Stop()

	s.publish()
	for {
		select {
		case <-ctx.Done():
			s.Stop()
			s.monitor.Wait()
			return nil
		case <-ticker.Chan():
			s.Tick(ctx)
		}
	}
}

// Wait blocks until background loads finish
func (s *Session) Wait() {
	s.monitor.Wait()
}
