// Package layout picks between the full and compact countdown renderings
// based on the available width.
package layout

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Breakpoint names a minimum width in pixels.
type Breakpoint string

const (
	XS Breakpoint = "xs"
	SM Breakpoint = "sm"
	MD Breakpoint = "md"
	LG Breakpoint = "lg"
	XL Breakpoint = "xl"
)

var breakpointWidths = map[Breakpoint]int{
	XS: 0,
	SM: 600,
	MD: 900,
	LG: 1200,
	XL: 1536,
}

// ErrUnknownBreakpoint is returned for threshold tokens outside the fixed set.
var ErrUnknownBreakpoint = errors.New("unknown breakpoint")

// Threshold is the minimum width at which the full layout is used. It is
// either a named breakpoint or an explicit pixel width.
type Threshold struct {
	name   Breakpoint
	pixels int
}

// DefaultThreshold is the md breakpoint.
var DefaultThreshold = Threshold{name: MD, pixels: breakpointWidths[MD]}

// Pixels returns the threshold as a pixel width.
func Pixels(px int) Threshold {
	if px < 0 {
		px = 0
	}
	return Threshold{pixels: px}
}

// Named returns the threshold for a breakpoint token.
func Named(bp Breakpoint) (Threshold, error) {
	px, ok := breakpointWidths[bp]
	if !ok {
		return Threshold{}, fmt.Errorf("%w %q (want one of %s)", ErrUnknownBreakpoint, string(bp), strings.Join(BreakpointNames(), ", "))
	}
	return Threshold{name: bp, pixels: px}, nil
}

// ParseThreshold accepts a breakpoint token, a bare integer or an integer
// with a "px" suffix.
func ParseThreshold(s string) (Threshold, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultThreshold, nil
	}
	num := strings.TrimSuffix(s, "px")
	if n, err := strconv.Atoi(num); err == nil {
		if n < 0 {
			return Threshold{}, fmt.Errorf("negative threshold %d", n)
		}
		return Pixels(n), nil
	}
	return Named(Breakpoint(s))
}

func (t Threshold) Pixels() int { return t.pixels }

// Breakpoint returns the token the threshold was built from, if any.
func (t Threshold) Breakpoint() (Breakpoint, bool) {
	return t.name, t.name != ""
}

func (t Threshold) String() string {
	if t.name != "" {
		return string(t.name)
	}
	return strconv.Itoa(t.pixels) + "px"
}

// BreakpointNames lists the valid tokens, smallest first.
func BreakpointNames() []string {
	names := make([]string, 0, len(breakpointWidths))
	for bp := range breakpointWidths {
		names = append(names, string(bp))
	}
	sort.Slice(names, func(i, j int) bool {
		return breakpointWidths[Breakpoint(names[i])] < breakpointWidths[Breakpoint(names[j])]
	})
	return names
}
