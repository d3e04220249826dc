// ABOUTME: Clock sources for the hourly player
// ABOUTME: Real time via clockwork and a synthetic override that advances one second per tick
package clock

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TickInterval is the resolution of every clock source
const TickInterval = time.Second

// Source produces the current time once per tick
type Source interface {
	// Now returns the current time of this source
	Now() time.Time
	// Advance moves the source forward by one tick
	Advance()
}

// Realtime reads the wall clock
type Realtime struct {
	clock clockwork.Clock
}

// NewRealtime wraps a clockwork clock; nil means the system clock
func NewRealtime(c clockwork.Clock) *Realtime {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	return &Realtime{clock: c}
}

// Now returns the wall-clock time
func (r *Realtime) Now() time.Time {
	return r.clock.Now()
}

// Advance is a no-op; real time moves on its own
func (r *Realtime) Advance() {}

// Override is a synthetic clock pinned to a fixed time of day.
// Each Advance adds exactly one TickInterval.
type Override struct {
	mu  sync.RWMutex
	now time.Time
}

// NewOverride starts a synthetic clock at t
func NewOverride(t time.Time) *Override {
	return &Override{now: t}
}

// Now returns the synthetic time
func (o *Override) Now() time.Time {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.now
}

// Advance adds one tick to the synthetic time
func (o *Override) Advance() {
	o.mu.Lock()
	o.now = o.now.Add(TickInterval)
	o.mu.Unlock()
}

// ParseOverride parses "HH:MM:SS" and places it on the date of base
func ParseOverride(s string, base time.Time) (time.Time, error) {
	var h, m, sec int
	if n, err := fmt.Sscanf(s, "%d:%d:%d", &h, &m, &sec); err != nil || n != 3 {
		return time.Time{}, fmt.Errorf("invalid time override %q (want HH:MM:SS)", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return time.Time{}, fmt.Errorf("time override %q out of range", s)
	}

	y, mo, d := base.Date()
	return time.Date(y, mo, d, h, m, sec, 0, base.Location()), nil
}

// New returns an Override source when override is set, otherwise real time
func New(override string, c clockwork.Clock) (Source, error) {
	if override == "" {
		return NewRealtime(c), nil
	}

	rt := NewRealtime(c)
	t, err := ParseOverride(override, rt.Now())
	if err != nil {
		return nil, err
	}
	return NewOverride(t), nil
}
