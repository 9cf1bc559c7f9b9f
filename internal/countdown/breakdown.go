// Package countdown derives the time remaining until a target instant and
// keeps that derivation fresh on a fixed cadence.
package countdown

import (
	"fmt"
	"strconv"
	"time"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
)

// Breakdown is the remaining duration split into days, hours, minutes and
// seconds. Hours are in [0,23], minutes and seconds in [0,59]; days are
// unbounded.
type Breakdown struct {
	Remaining time.Duration
	Days      int64
	Hours     int64
	Minutes   int64
	Seconds   int64
}

// Derive computes the breakdown of target - now. Targets in the past yield a
// zero breakdown. Derive is a pure function of its two arguments.
func Derive(target, now time.Time) Breakdown {
	remaining := target.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	// Completion is judged at millisecond resolution.
	remaining = remaining.Truncate(time.Millisecond)

	total := int64(remaining / time.Second)
	return Breakdown{
		Remaining: remaining,
		Days:      total / secondsPerDay,
		Hours:     (total % secondsPerDay) / secondsPerHour,
		Minutes:   (total % secondsPerHour) / secondsPerMinute,
		Seconds:   total % secondsPerMinute,
	}
}

// Done reports whether the countdown has reached zero.
func (b Breakdown) Done() bool {
	return b.Remaining == 0
}

// TotalSeconds recombines the breakdown into whole seconds.
func (b Breakdown) TotalSeconds() int64 {
	return b.Days*secondsPerDay + b.Hours*secondsPerHour + b.Minutes*secondsPerMinute + b.Seconds
}

// Padded returns the display strings for each field. Days are never padded.
func (b Breakdown) Padded() (days, hours, minutes, seconds string) {
	return strconv.FormatInt(b.Days, 10), Pad(b.Hours), Pad(b.Minutes), Pad(b.Seconds)
}

// Compact renders the breakdown as D:HH:MM:SS.
func (b Breakdown) Compact() string {
	return fmt.Sprintf("%d:%02d:%02d:%02d", b.Days, b.Hours, b.Minutes, b.Seconds)
}

// Pad zero-pads n to at least two digits.
func Pad(n int64) string {
	return fmt.Sprintf("%02d", n)
}
