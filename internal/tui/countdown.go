package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tminus/internal/config"
	"github.com/sadopc/tminus/internal/countdown"
	"github.com/sadopc/tminus/internal/cta"
	"github.com/sadopc/tminus/internal/layout"
	"github.com/sadopc/tminus/internal/store"
)

// Widget is the static presentation of one countdown.
type Widget struct {
	Title      string
	ButtonText string
	Accent     string
	Target     time.Time
}

// NewWidget extracts the presentation fields of cd.
func NewWidget(cd config.Countdown) Widget {
	return Widget{
		Title:      cd.Title,
		ButtonText: cd.ButtonText,
		Accent:     cd.Accent,
		Target:     cd.Target,
	}
}

// countdownModel drives one active countdown. Replacing the countdown goes
// through activate, which releases the previous engine and width subscription.
type countdownModel struct {
	env    *environment
	width  int
	height int

	widget      Widget
	preset      *store.Countdown
	engine      *countdown.Engine
	selector    *layout.Selector
	action      *cta.Action
	unsubscribe func()
	gen         int
	snap        countdown.Breakdown
}

func newCountdownModel(env *environment) countdownModel {
	return countdownModel{env: env}
}

func (c *countdownModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c countdownModel) activate(cd config.Countdown, preset *store.Countdown) (countdownModel, error) {
	handler := c.env.handler
	if handler == nil && cd.Link != "" {
		handler = cta.OpenURL(cd.Link)
	}
	action, err := cta.New(cd.Target, cd.Message, handler)
	if err != nil {
		return c, err
	}

	c.deactivate()

	c.env.gen++
	gen := c.env.gen
	updates := c.env.updates

	engine := countdown.NewEngine(cd.Target,
		countdown.WithClock(c.env.clock),
		countdown.WithScheduler(c.env.scheduler),
		countdown.WithLogger(c.env.logger),
	)
	c.unsubscribe = engine.Subscribe(func(b countdown.Breakdown) {
		publish(updates, snapshotMsg{gen: gen, b: b})
	})
	c.selector = layout.NewSelector(cd.Threshold, c.env.cells)
	c.engine = engine
	c.action = action
	c.widget = NewWidget(cd)
	c.preset = preset
	c.gen = gen

	engine.Start()
	c.snap = engine.Snapshot()

	c.env.logger.Info("countdown activated", "title", cd.Title, "threshold", cd.Threshold.String(), "mode", c.selector.Mode().String())
	return c, nil
}

// deactivate stops the engine and releases the width subscription.
func (c countdownModel) deactivate() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
	if c.engine != nil {
		c.engine.Stop()
	}
	if c.selector != nil {
		c.selector.Close()
	}
}

func (c countdownModel) mode() layout.Mode {
	if c.selector == nil {
		return layout.Compact
	}
	return c.selector.Mode()
}

func (c countdownModel) done() bool {
	return c.engine != nil && c.engine.Done()
}

func (c countdownModel) update(msg tea.Msg) (countdownModel, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		if msg.gen != c.gen {
			return c, nil
		}
		wasDone := c.snap.Done()
		c.snap = msg.b
		if !wasDone && msg.b.Done() {
			title := c.widget.Title
			return c, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("%s: %s \a", title, cta.DoneLabel)}
			}
		}
		return c, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Press) && c.action != nil {
			return c, c.press()
		}
	}
	return c, nil
}

func (c countdownModel) press() tea.Cmd {
	env := c.env
	action := c.action
	done := c.done()
	var presetID int64
	if c.preset != nil {
		presetID = c.preset.ID
	}

	return func() tea.Msg {
		now := env.clock.Now()
		if presetID != 0 && env.logPresses() {
			if _, err := env.store.RecordPress(presetID, now, done); err != nil {
				env.logger.Error("record press", "err", err)
			}
		}

		notice, err := action.Press(context.Background(), done, now)
		if err != nil {
			env.logger.Error("button press", "err", err)
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
		if notice != nil {
			return noticeMsg{notice: *notice}
		}
		if action.HasHandler() {
			return statusMsg{text: "Opening…"}
		}
		return nil
	}
}

func (c countdownModel) view() string {
	if c.engine == nil {
		return mutedStyle.Render("No countdown")
	}
	return Render(c.widget, c.snap, c.mode(), c.width)
}

// Render draws a countdown into width columns using the given layout mode.
func Render(w Widget, b countdown.Breakdown, mode layout.Mode, width int) string {
	done := b.Done()
	accent := accentColor(w.Accent)

	chip := chipStyle.Foreground(accent).Render("● Upcoming")
	if done {
		chip = chipStyle.Foreground(colorSuccess).Render("● Available")
	}

	title := titleStyle.Render(w.Title)
	if mode == layout.Full {
		title = titleStyle.Underline(true).Render(strings.ToUpper(w.Title))
	}

	target := mutedStyle.Render("Target: " + cta.LongDateTime(w.Target))
	divider := mutedStyle.Render(strings.Repeat("─", clamp(width-8, 10, 72)))

	var counter string
	if mode == layout.Full {
		counter = renderFull(b, w.Accent)
	} else {
		counter = renderCompact(b)
	}

	button := renderButton(cta.State(done, w.ButtonText), accent, mode)

	content := lipgloss.JoinVertical(lipgloss.Center,
		chip,
		title,
		target,
		divider,
		"",
		counter,
		"",
		button,
		mutedStyle.Render("enter: press"),
	)
	if width <= 0 {
		return content
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, content)
}

func renderFull(b countdown.Breakdown, accent string) string {
	days, hours, minutes, seconds := b.Padded()
	sep := separatorStyle.Render(":")
	return lipgloss.JoinHorizontal(lipgloss.Center,
		timeBlock("Days", days, string(accentColor(accent))),
		sep,
		timeBlock("Hours", hours, ""),
		sep,
		timeBlock("Minutes", minutes, ""),
		sep,
		timeBlock("Seconds", seconds, ""),
	)
}

func timeBlock(label, value, accent string) string {
	labelStyle := blockLabelStyle
	if accent != "" {
		labelStyle = labelStyle.Foreground(lipgloss.Color(accent))
	}
	return blockStyle.Width(11).Render(lipgloss.JoinVertical(lipgloss.Center,
		blockValueStyle.Render(value),
		labelStyle.Render(strings.ToUpper(label)),
	))
}

func renderCompact(b countdown.Breakdown) string {
	return pillStyle.Render(
		blockValueStyle.Render(b.Compact()) + "  " + mutedStyle.Render("Days:Hours:Min:Sec"),
	)
}

func renderButton(btn cta.Button, accent lipgloss.Color, mode layout.Mode) string {
	pad := 2
	if mode == layout.Full {
		pad = 3
	}
	if btn.Emphasis {
		return lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Border(lipgloss.ThickBorder()).
			BorderForeground(accent).
			Padding(0, pad).
			Render(btn.Label)
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(colorInk).
		Background(accent).
		Padding(0, pad).
		Render(btn.Label)
}
