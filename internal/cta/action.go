// Package cta implements the countdown's call-to-action button.
package cta

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"
)

// DoneLabel replaces the configured label once the countdown completes.
const DoneLabel = "It's time!"

// DefaultMessage is shown when the button is pressed early and no handler is
// configured.
const DefaultMessage = "Not yet! The countdown ends {{.Target}}. Today is {{.Today}}. Check back then."

// Button is the rendered state of the call-to-action.
type Button struct {
	Label    string
	Emphasis bool
}

// State returns the button for the given completion flag.
func State(done bool, label string) Button {
	if done {
		return Button{Label: DoneLabel, Emphasis: true}
	}
	return Button{Label: label}
}

// Notice is a blocking informational message.
type Notice struct {
	Title string
	Text  string
}

// Handler overrides the default press behaviour.
type Handler func(ctx context.Context) error

// MessageData is the template context for the early-press message.
type MessageData struct {
	Today  string
	Target string
}

// Action decides what a button press does.
type Action struct {
	target  time.Time
	tmpl    *template.Template
	handler Handler
}

// New builds an Action. An empty message uses DefaultMessage; a message that
// fails to parse is a configuration error.
func New(target time.Time, message string, handler Handler) (*Action, error) {
	if message == "" {
		message = DefaultMessage
	}
	tmpl, err := template.New("notice").Option("missingkey=error").Parse(message)
	if err != nil {
		return nil, fmt.Errorf("parse message template: %w", err)
	}
	return &Action{target: target, tmpl: tmpl, handler: handler}, nil
}

// HasHandler reports whether an explicit handler was configured.
func (a *Action) HasHandler() bool {
	return a.handler != nil
}

// Press handles a button press. With an explicit handler it always defers to
// it. Otherwise an early press yields a Notice and a press after completion
// does nothing.
func (a *Action) Press(ctx context.Context, done bool, now time.Time) (*Notice, error) {
	if a.handler != nil {
		if err := a.handler(ctx); err != nil {
			return nil, fmt.Errorf("button handler: %w", err)
		}
		return nil, nil
	}
	if done {
		return nil, nil
	}

	var buf bytes.Buffer
	data := MessageData{Today: LongDate(now), Target: LongDateTime(a.target)}
	if err := a.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render message: %w", err)
	}
	return &Notice{Title: "Not yet", Text: buf.String()}, nil
}

// LongDate formats t like "Friday, November 7, 2025".
func LongDate(t time.Time) string {
	return t.Format("Monday, January 2, 2006")
}

// LongDateTime formats t like "Friday, November 7, 2025 at 12:00 AM".
func LongDateTime(t time.Time) string {
	return t.Format("Monday, January 2, 2006 at 3:04 PM")
}
