package store

import "time"

// Countdown is a saved countdown preset.
type Countdown struct {
	ID          int64
	Name        string
	Title       string
	Target      time.Time
	ButtonText  string
	Accent      string
	FormatAbove string
	Message     string
	Link        string
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Press is one activation of a countdown's button.
type Press struct {
	ID          int64
	CountdownID int64
	PressedAt   time.Time
	Done        bool // countdown had completed when pressed
}

type Setting struct {
	Key   string
	Value string
}

// PressFilter is used to filter presses in queries.
type PressFilter struct {
	CountdownID *int64
	From        *time.Time
	To          *time.Time
	Limit       int
}

// DailyPresses aggregates presses per countdown per day.
type DailyPresses struct {
	Date          string
	CountdownID   int64
	CountdownName string
	Accent        string
	Presses       int
	EarlyPresses  int
}
