// ABOUTME: Tests for player metrics
// ABOUTME: Verifies counters are exported and nil receivers are safe
package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExportsCounters(t *testing.T) {
	m := New()
	m.Preload("ok")
	m.Fetch("loop", "ok")
	m.Switch("rollover")
	m.StaleEnd()
	m.SetPlaying(true)
	m.SetCachedHours(2)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`radio_preloads_total{result="ok"} 1`,
		`radio_segment_fetches_total{result="ok",segment="loop"} 1`,
		`radio_segment_switches_total{reason="rollover"} 1`,
		`radio_stale_end_notices_total 1`,
		`radio_playing 1`,
		`radio_cached_hours 2`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected metrics output to contain %q", want)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Preload("ok")
	m.Fetch("start", "not_found")
	m.Switch("start")
	m.StaleEnd()
	m.SetPlaying(false)
	m.SetCachedHours(0)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}
