// ABOUTME: Now-playing notifications
// ABOUTME: Observers told about play and pause, with best-effort fan-out
package nowplaying

import (
	"github.com/rs/zerolog"

	"github.com/harperreed/crossing-radio/internal/clock"
)

const (
	// Album is reported for every hour
	Album = "Crossing Radio"
	// DefaultArtist credits the default music set
	DefaultArtist = "Animal Crossing New Leaf"
)

// Info describes what is playing
type Info struct {
	Label  string     `json:"label"`
	Hour   clock.Hour `json:"hour"`
	Title  string     `json:"title"`
	Artist string     `json:"artist"`
	Album  string     `json:"album"`
}

// NewInfo describes hour h
func NewInfo(h clock.Hour, artist string) Info {
	if artist == "" {
		artist = DefaultArtist
	}
	label := clock.Label(h)
	return Info{
		Label:  label,
		Hour:   h,
		Title:  label,
		Artist: artist,
		Album:  Album,
	}
}

// Observer is informed of play state changes
type Observer interface {
	Playing(info Info) error
	Paused(info Info) error
}

// Noop ignores every notification
type Noop struct{}

// Playing does nothing
func (Noop) Playing(Info) error { return nil }

// Paused does nothing
func (Noop) Paused(Info) error { return nil }

// Multi fans notifications out to several observers.
// Failures are logged and never returned.
type Multi struct {
	observers []Observer
	logger    zerolog.Logger
}

// NewMulti creates a fan-out over observers
func NewMulti(logger zerolog.Logger, observers ...Observer) *Multi {
	return &Multi{observers: observers, logger: logger.With().Str("component", "nowplaying").Logger()}
}

// Add registers another observer
func (m *Multi) Add(o Observer) {
	m.observers = append(m.observers, o)
}

// Playing tells every observer that info is now playing
func (m *Multi) Playing(info Info) error {
	for _, o := range m.observers {
		if err := o.Playing(info); err != nil {
			m.logger.Debug().Err(err).Str("label", info.Label).Msg("Now-playing update failed")
		}
	}
	return nil
}

// Paused tells every observer that info was paused
func (m *Multi) Paused(info Info) error {
	for _, o := range m.observers {
		if err := o.Paused(info); err != nil {
			m.logger.Debug().Err(err).Str("label", info.Label).Msg("Now-playing update failed")
		}
	}
	return nil
}

// LogObserver writes notifications to a logger
type LogObserver struct {
	Logger zerolog.Logger
}

// Playing logs the hour now playing
func (l LogObserver) Playing(info Info) error {
	l.Logger.Info().Str("label", info.Label).Str("artist", info.Artist).Msg("Now playing")
	return nil
}

// Paused logs that playback paused
func (l LogObserver) Paused(info Info) error {
	l.Logger.Info().Str("label", info.Label).Msg("Paused")
	return nil
}
