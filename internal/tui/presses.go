package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tminus/internal/store"
)

const pressWindowDays = 7

type pressesModel struct {
	env    *environment
	width  int
	height int

	summaries []store.DailyPresses
	recent    []store.Press
	names     map[int64]string
	offset    int // 7-day blocks back from today (0 = current)

	chart barchart.Model
}

func newPressesModel(env *environment) pressesModel {
	return pressesModel{
		env:   env,
		chart: barchart.New(60, 12),
	}
}

func (r *pressesModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type pressesDataMsg struct {
	summaries []store.DailyPresses
	recent    []store.Press
	names     map[int64]string
}

func (r pressesModel) refresh() tea.Cmd {
	env := r.env
	from, to := r.dateRange()
	return func() tea.Msg {
		summaries, err := env.store.GetPressSummary(from, to)
		if err != nil {
			env.logger.Error("press summary", "err", err)
		}
		recent, _ := env.store.ListPresses(store.PressFilter{From: &from, To: &to, Limit: 5})
		names := make(map[int64]string)
		if list, err := env.store.ListCountdowns(true); err == nil {
			for _, c := range list {
				names[c.ID] = c.Name
			}
		}
		return pressesDataMsg{summaries: summaries, recent: recent, names: names}
	}
}

func (r pressesModel) dateRange() (time.Time, time.Time) {
	now := r.env.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today.AddDate(0, 0, 1-pressWindowDays*r.offset)
	start := end.AddDate(0, 0, -pressWindowDays)
	return start, end
}

func (r pressesModel) update(msg tea.Msg) (pressesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case pressesDataMsg:
		r.summaries = msg.summaries
		r.recent = msg.recent
		r.names = msg.names
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *pressesModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 30 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	from, to := r.dateRange()

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		label := d.Format("Mon 02")

		var values []barchart.BarValue
		for _, s := range r.summaries {
			if s.Date == dateStr {
				style := lipgloss.NewStyle().Foreground(accentColor(s.Accent))
				values = append(values, barchart.BarValue{
					Name:  s.CountdownName,
					Value: float64(s.Presses),
					Style: style,
				})
			}
		}

		if len(values) == 0 {
			values = []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}}
		}

		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: values,
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r pressesModel) view() string {
	w := r.width - 4

	from, to := r.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s to %s", from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Button Presses"), "  ", dateLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", r.chart.View(), "", r.renderLegend(), "",
			r.renderSummaryTable(w), "", r.renderRecent(), "", nav,
		),
	)
}

func (r pressesModel) renderSummaryTable(w int) string {
	if len(r.summaries) == 0 {
		return mutedStyle.Render("  No presses in this period")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-12s %-20s %8s %8s", "Date", "Countdown", "Presses", "Early"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 52))))

	for _, s := range r.summaries {
		dot := lipgloss.NewStyle().Foreground(accentColor(s.Accent)).Render("●")
		rows = append(rows, fmt.Sprintf("  %-12s %s %-18s %8d %8d",
			s.Date, dot, truncate(s.CountdownName, 18), s.Presses, s.EarlyPresses,
		))
	}

	return strings.Join(rows, "\n")
}

func (r pressesModel) renderRecent() string {
	if len(r.recent) == 0 {
		return ""
	}
	rows := []string{mutedStyle.Render("  Latest")}
	for _, p := range r.recent {
		state := warningStyle.Render("early")
		if p.Done {
			state = successStyle.Render("on time")
		}
		name := r.names[p.CountdownID]
		if name == "" {
			name = fmt.Sprintf("#%d", p.CountdownID)
		}
		rows = append(rows, fmt.Sprintf("  %s  %-18s %s", shortDate(p.PressedAt), truncate(name, 18), state))
	}
	return strings.Join(rows, "\n")
}

func (r pressesModel) renderLegend() string {
	seen := make(map[int64]bool)
	var items []string
	for _, s := range r.summaries {
		if seen[s.CountdownID] {
			continue
		}
		seen[s.CountdownID] = true
		dot := lipgloss.NewStyle().Foreground(accentColor(s.Accent)).Render("●")
		items = append(items, fmt.Sprintf("%s %s", dot, s.CountdownName))
	}
	if len(items) == 0 {
		return ""
	}
	return "  " + strings.Join(items, "  ")
}
