// ABOUTME: In-memory cache of decoded hourly segments
// ABOUTME: Preloads start and loop segments concurrently with one fetch per hour in flight
package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/harperreed/crossing-radio/internal/assets"
	"github.com/harperreed/crossing-radio/internal/clock"
	"github.com/harperreed/crossing-radio/internal/metrics"
	"github.com/harperreed/crossing-radio/pkg/audio"
	"github.com/harperreed/crossing-radio/pkg/audio/decode"
)

var (
	// ErrLoopUnavailable reports that an hour's loop segment could not be fetched or decoded
	ErrLoopUnavailable = errors.New("loop segment unavailable")
	// ErrNoContext reports a decode attempted before an output format was attached
	ErrNoContext = errors.New("no audio context attached")
	// ErrInvalidHour reports an hour outside 0..23
	ErrInvalidHour = errors.New("invalid hour")
)

// SegmentPair holds the decoded segments of one hour.
// Start is nil when the hour has no intro.
type SegmentPair struct {
	Start *audio.Buffer
	Loop  *audio.Buffer
}

// Cache maps hours to decoded segments. Entries are published only
// once both segments have resolved and are never replaced.
type Cache struct {
	fetcher  assets.Fetcher
	resolver assets.Resolver
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	decoderFor func(name string) (decode.Decoder, error)
	flight     singleflight.Group

	mu       sync.RWMutex
	format   audio.Format
	attached bool
	entries  map[clock.Hour]*SegmentPair
}

// New creates an empty cache
func New(fetcher assets.Fetcher, resolver assets.Resolver, logger zerolog.Logger, m *metrics.Metrics) *Cache {
	return &Cache{
		fetcher:    fetcher,
		resolver:   resolver,
		logger:     logger.With().Str("component", "cache").Logger(),
		metrics:    m,
		decoderFor: decode.ForName,
		entries:    make(map[clock.Hour]*SegmentPair),
	}
}

// Attach sets the format of the shared audio context.
// Decoded segments are converted to it.
func (c *Cache) Attach(format audio.Format) error {
	if err := format.Validate(); err != nil {
		return fmt.Errorf("attach audio context: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.format = format
	c.attached = true
	return nil
}

// Get returns the segments of hour h
func (c *Cache) Get(h clock.Hour) (*SegmentPair, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pair, ok := c.entries[h]
	return pair, ok
}

// Has reports whether hour h is loaded
func (c *Cache) Has(h clock.Hour) bool {
	_, ok := c.Get(h)
	return ok
}

// Hours returns the loaded hours in ascending order
func (c *Cache) Hours() []clock.Hour {
	c.mu.RLock()
	hours := make([]clock.Hour, 0, len(c.entries))
	for h := range c.entries {
		hours = append(hours, h)
	}
	c.mu.RUnlock()

	sort.Slice(hours, func(i, j int) bool { return hours[i] < hours[j] })
	return hours
}

// Preload fetches and decodes hour h unless it is already loaded.
// Concurrent calls for the same hour share one fetch. A missing or
// broken start segment is recorded as absent; a failed loop segment
// returns ErrLoopUnavailable and leaves the hour absent.
func (c *Cache) Preload(ctx context.Context, h clock.Hour) error {
	if !h.Valid() {
		return fmt.Errorf("preload hour %d: %w", int(h), ErrInvalidHour)
	}
	if c.Has(h) {
		c.metrics.Preload("cached")
		return nil
	}

	c.mu.RLock()
	format, attached := c.format, c.attached
	c.mu.RUnlock()
	if !attached {
		return fmt.Errorf("preload hour %d: %w", int(h), ErrNoContext)
	}

	// The load is shared, so it must not die with whichever caller started it.
	// Fetches stay bounded by the fetcher's own timeout.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(strconv.Itoa(int(h)), func() (interface{}, error) {
		if pair, ok := c.Get(h); ok {
			return pair, nil
		}

		pair, err := c.load(loadCtx, h, format)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[h] = pair
		n := len(c.entries)
		c.mu.Unlock()
		c.metrics.SetCachedHours(n)

		c.logger.Info().
			Int("hour", int(h)).
			Bool("has_start", pair.Start != nil).
			Float64("loop_seconds", pair.Loop.Duration()).
			Msg("Hour preloaded")
		return pair, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		c.metrics.Preload("canceled")
		return fmt.Errorf("preload hour %d: %w", int(h), ctx.Err())
	}
	if res.Err != nil {
		c.metrics.Preload("failed")
		return fmt.Errorf("preload hour %d: %w", int(h), res.Err)
	}

	if res.Shared {
		c.logger.Debug().Int("hour", int(h)).Msg("Joined in-flight preload")
	}
	c.metrics.Preload("ok")
	return nil
}

func (c *Cache) load(ctx context.Context, h clock.Hour, format audio.Format) (*SegmentPair, error) {
	var pair SegmentPair
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		buf, err := c.segment(gctx, "start", c.resolver.StartName(h), format)
		if err != nil {
			ev := c.logger.Warn()
			if errors.Is(err, assets.ErrNotFound) {
				ev = c.logger.Debug()
			}
			ev.Err(err).Int("hour", int(h)).Msg("No start segment")
			return nil
		}
		pair.Start = buf
		return nil
	})

	g.Go(func() error {
		buf, err := c.segment(gctx, "loop", c.resolver.LoopName(h), format)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLoopUnavailable, err)
		}
		pair.Loop = buf
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &pair, nil
}

func (c *Cache) segment(ctx context.Context, kind, name string, format audio.Format) (*audio.Buffer, error) {
	data, err := c.fetcher.Fetch(ctx, name)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			c.metrics.Fetch(kind, "not_found")
		} else {
			c.metrics.Fetch(kind, "error")
		}
		return nil, err
	}

	dec, err := c.decoderFor(name)
	if err != nil {
		c.metrics.Fetch(kind, "error")
		return nil, err
	}

	buf, err := dec.Decode(data)
	if err != nil {
		c.metrics.Fetch(kind, "error")
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if buf.Frames() == 0 {
		c.metrics.Fetch(kind, "error")
		return nil, fmt.Errorf("decode %s: no audio frames", name)
	}

	c.metrics.Fetch(kind, "ok")
	return decode.Conform(buf, format), nil
}
