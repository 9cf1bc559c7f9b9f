package tui

import (
	"time"

	"github.com/sadopc/tminus/internal/countdown"
	"github.com/sadopc/tminus/internal/cta"
	"github.com/sadopc/tminus/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewCountdown viewState = iota
	viewPresets
	viewPresses
	viewSettings
)

var viewNames = []string{"Countdown", "Presets", "Presses", "Settings"}

// --- Messages ---

// snapshotMsg carries an engine refresh into the event loop. gen identifies
// the engine that produced it; snapshots from replaced engines are dropped.
type snapshotMsg struct {
	gen int
	b   countdown.Breakdown
}

type noticeMsg struct {
	notice cta.Notice
}

type presetSelectedMsg struct {
	preset store.Countdown
}

type settingsSavedMsg struct {
	cellWidth int
}

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// publish delivers m without blocking, replacing any undelivered snapshot.
func publish(ch chan snapshotMsg, m snapshotMsg) {
	select {
	case ch <- m:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- m:
	default:
	}
}

func shortDate(t time.Time) string {
	return t.Local().Format("Jan 02, 2006 15:04")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
