// ABOUTME: Hour transition monitor
// ABOUTME: Switches playback at each hour boundary and preloads the following hour
package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/harperreed/crossing-radio/internal/clock"
	"github.com/harperreed/crossing-radio/internal/metrics"
)

// Preloader loads an hour into the cache
type Preloader interface {
	Preload(ctx context.Context, h clock.Hour) error
}

// Monitor watches the clock while playback is armed. Ticks within
// the same hour do nothing; a new hour plays from offset 0.
type Monitor struct {
	scheduler *Scheduler
	preloader Preloader
	logger    zerolog.Logger
	metrics   *metrics.Metrics

	// mu is held across Play so a concurrent Disarm cannot be undone
	mu       sync.Mutex
	armed    bool
	current  clock.Hour
	onSwitch func(h clock.Hour)

	wg sync.WaitGroup
}

// NewMonitor creates a disarmed monitor
func NewMonitor(s *Scheduler, p Preloader, logger zerolog.Logger, m *metrics.Metrics) *Monitor {
	return &Monitor{
		scheduler: s,
		preloader: p,
		logger:    logger.With().Str("component", "monitor").Logger(),
		metrics:   m,
	}
}

// Arm starts watching with h as the hour currently playing
func (m *Monitor) Arm(h clock.Hour) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armed = true
	m.current = h
}

// Disarm stops reacting to rollovers
func (m *Monitor) Disarm() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.armed = false
}

// Armed reports whether the monitor reacts to rollovers
func (m *Monitor) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.armed
}

// OnSwitch registers fn to run after playback has moved to a new hour,
// including switches that waited on a late load. fn runs while the
// monitor is locked and must not call back into it.
func (m *Monitor) OnSwitch(fn func(h clock.Hour)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onSwitch = fn
}

// Observe handles one clock tick and reports whether playback switched
// to a new hour during this call. A late hour switches later, through OnSwitch.
func (m *Monitor) Observe(ctx context.Context, now time.Time) bool {
	h := clock.HourOf(now)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.armed || h == m.current {
		return false
	}

	prev := m.current
	m.current = h
	m.logger.Info().Int("from", int(prev)).Int("to", int(h)).Msg("Hour rollover")

	switched := m.switchLocked(ctx, h)
	m.PreloadAsync(ctx, clock.NextHour(h))
	return switched
}

func (m *Monitor) switchLocked(ctx context.Context, h clock.Hour) bool {
	_, err := m.scheduler.Play(h, 0)
	if err == nil {
		m.switchedLocked(h)
		return true
	}

	if !errors.Is(err, ErrNotPreloaded) {
		m.logger.Error().Err(err).Int("hour", int(h)).Msg("Rollover failed, keeping current audio")
		return false
	}

	// The new hour is late. Keep the old audio until it arrives.
	m.logger.Warn().Int("hour", int(h)).Msg("Hour not ready at rollover, loading now")
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.preloader.Preload(ctx, h); err != nil {
			m.logger.Error().Err(err).Int("hour", int(h)).Msg("Late preload failed, keeping current audio")
			return
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if !m.armed || m.current != h {
			return
		}
		if _, err := m.scheduler.Play(h, 0); err != nil {
			m.logger.Error().Err(err).Int("hour", int(h)).Msg("Late rollover failed")
			return
		}
		m.switchedLocked(h)
	}()
	return false
}

func (m *Monitor) switchedLocked(h clock.Hour) {
	m.metrics.Switch("rollover")
	if m.onSwitch != nil {
		m.onSwitch(h)
	}
}

// PreloadAsync loads h in the background and logs failures
func (m *Monitor) PreloadAsync(ctx context.Context, h clock.Hour) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.preloader.Preload(ctx, h); err != nil {
			m.logger.Warn().Err(err).Int("hour", int(h)).Msg("Background preload failed")
		}
	}()
}

// Wait blocks until background preloads finish
func (m *Monitor) Wait() {
	m.wg.Wait()
}
