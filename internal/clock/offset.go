// ABOUTME: Hour keys and in-hour offset calculation
// ABOUTME: Pure functions mapping wall-clock time to the active hour and seek position
package clock

import (
	"fmt"
	"time"
)

// HoursPerDay bounds the hour keys
const HoursPerDay = 24

// Hour identifies one hour-of-day's audio content (0-23)
type Hour int

// Valid reports whether h is a usable hour key
func (h Hour) Valid() bool {
	return h >= 0 && h < HoursPerDay
}

// HourOf returns the hour key of t
func HourOf(t time.Time) Hour {
	return Hour(t.Hour())
}

// NextHour returns the hour after h, wrapping at midnight
func NextHour(h Hour) Hour {
	return (h + 1) % HoursPerDay
}

// OffsetInHour returns the seconds elapsed since the start of the hour of t.
// The result is in [0, 3600).
func OffsetInHour(t time.Time) float64 {
	return float64(t.Minute()*60 + t.Second())
}

// Label renders an hour as shown to listeners, e.g. "7:00 PM"
func Label(h Hour) string {
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	display := int(h) % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:00 %s", display, suffix)
}
