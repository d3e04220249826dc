// ABOUTME: Asset naming and fetching for hourly segments
// ABOUTME: Maps hours to logical resource names and defines the Fetcher contract
package assets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/crossing-radio/internal/clock"
)

// ErrNotFound reports that a resource does not exist
var ErrNotFound = errors.New("asset not found")

// Fetcher returns the raw bytes of a logical resource name
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, name string) ([]byte, error)

// Fetch calls f
func (f FetcherFunc) Fetch(ctx context.Context, name string) ([]byte, error) {
	return f(ctx, name)
}

// Resolver names the start and loop resources of each hour
type Resolver struct {
	Set string // music set, e.g. "nl"
	Ext string // file extension without dot
}

// DefaultResolver matches the published layout of the New Leaf set
var DefaultResolver = Resolver{Set: "nl", Ext: "mp3"}

// StartName returns the optional intro resource of hour h
func (r Resolver) StartName(h clock.Hour) string {
	return fmt.Sprintf("songs/%s/%d_start.%s", r.Set, int(h), r.Ext)
}

// LoopName returns the mandatory loop resource of hour h
func (r Resolver) LoopName(h clock.Hour) string {
	return fmt.Sprintf("songs/%s/%d_loop.%s", r.Set, int(h), r.Ext)
}

// WithTimeout bounds every fetch of f by d
func WithTimeout(f Fetcher, d time.Duration) Fetcher {
	if d <= 0 {
		return f
	}
	return FetcherFunc(func(ctx context.Context, name string) ([]byte, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return f.Fetch(ctx, name)
	})
}
