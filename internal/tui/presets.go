package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tminus/internal/config"
	"github.com/sadopc/tminus/internal/countdown"
	"github.com/sadopc/tminus/internal/layout"
	"github.com/sadopc/tminus/internal/store"
)

var presetAccents = []string{"", "#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#3498DB"}

type presetsModel struct {
	env    *environment
	width  int
	height int

	presets      []store.Countdown
	presses      map[int64][2]int // total, early
	cursor       int
	showArchived bool

	formActive bool
	form       *huh.Form
	editingID  int64 // 0 = new preset

	// Form field pointers (survive value copies)
	formName   *string
	formTitle  *string
	formTarget *string
	formButton *string
	formFormat *string
	formAccent *string
	formLink   *string
}

func newPresetsModel(env *environment) presetsModel {
	name, title, target, button, format, accent, link := "", "", "", "", "", "", ""
	return presetsModel{
		env:        env,
		formName:   &name,
		formTitle:  &title,
		formTarget: &target,
		formButton: &button,
		formFormat: &format,
		formAccent: &accent,
		formLink:   &link,
	}
}

func (p *presetsModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type presetsDataMsg struct {
	presets []store.Countdown
	presses map[int64][2]int
}

func (p presetsModel) refresh() tea.Cmd {
	env := p.env
	archived := p.showArchived
	return func() tea.Msg {
		presets, err := env.store.ListCountdowns(archived)
		if err != nil {
			env.logger.Error("list presets", "err", err)
		}
		counts := make(map[int64][2]int, len(presets))
		for _, c := range presets {
			total, early, err := env.store.CountPresses(c.ID)
			if err == nil {
				counts[c.ID] = [2]int{total, early}
			}
		}
		return presetsDataMsg{presets: presets, presses: counts}
	}
}

func (p presetsModel) update(msg tea.Msg) (presetsModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case presetsDataMsg:
		p.presets = msg.presets
		p.presses = msg.presses
		if p.cursor >= len(p.presets) {
			p.cursor = max(0, len(p.presets)-1)
		}
		return p, nil

	case tea.KeyMsg:
		return p.updateList(msg)
	}
	return p, nil
}

func (p presetsModel) updateList(msg tea.KeyMsg) (presetsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.presets)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(p.presets) > 0 {
			preset := p.presets[p.cursor]
			return p, func() tea.Msg { return presetSelectedMsg{preset: preset} }
		}
	case key.Matches(msg, keys.New):
		return p.showForm(nil)
	case msg.String() == "E":
		if len(p.presets) > 0 {
			preset := p.presets[p.cursor]
			return p.showForm(&preset)
		}
	case msg.String() == "a":
		p.showArchived = !p.showArchived
		return p, p.refresh()
	case key.Matches(msg, keys.Delete):
		if len(p.presets) > 0 {
			preset := p.presets[p.cursor]
			if err := p.env.store.ArchiveCountdown(preset.ID); err != nil {
				return p, statusCmd(fmt.Sprintf("Archive %s: %v", preset.Name, err), true)
			}
			return p, p.refresh()
		}
	}
	return p, nil
}

func (p presetsModel) showForm(existing *store.Countdown) (presetsModel, tea.Cmd) {
	defaults := config.DefaultOptions()
	*p.formName = ""
	*p.formTitle = defaults.Title
	*p.formTarget = p.env.clock.Now().AddDate(0, 0, 7).Format("2006-01-02 15:04")
	*p.formButton = defaults.ButtonText
	*p.formFormat = defaults.FormatAbove
	*p.formAccent = ""
	*p.formLink = ""
	p.editingID = 0

	if existing != nil {
		p.editingID = existing.ID
		*p.formName = existing.Name
		*p.formTitle = existing.Title
		*p.formTarget = existing.Target.Local().Format("2006-01-02 15:04")
		*p.formButton = existing.ButtonText
		*p.formFormat = existing.FormatAbove
		*p.formAccent = existing.Accent
		*p.formLink = existing.Link
	}

	accentOptions := make([]huh.Option[string], len(presetAccents))
	for i, c := range presetAccents {
		if c == "" {
			accentOptions[i] = huh.NewOption("default", c)
			continue
		}
		accentOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}
	var formatOptions []huh.Option[string]
	for _, name := range layout.BreakpointNames() {
		th, _ := layout.ParseThreshold(name)
		formatOptions = append(formatOptions, huh.NewOption(fmt.Sprintf("%s (%dpx)", name, th.Pixels()), name))
	}
	if th, err := layout.ParseThreshold(*p.formFormat); err == nil {
		if _, named := th.Breakpoint(); !named {
			formatOptions = append(formatOptions, huh.NewOption(th.String(), *p.formFormat))
		}
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(p.formName).Validate(notEmpty("name")),
			huh.NewInput().Title("Title").Value(p.formTitle),
			huh.NewInput().Title("Target (YYYY-MM-DD HH:MM or RFC3339)").Value(p.formTarget).
				Validate(func(s string) error {
					_, err := config.ParseTarget(s)
					return err
				}),
			huh.NewInput().Title("Button text").Value(p.formButton),
		),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Full layout above").Options(formatOptions...).Value(p.formFormat),
			huh.NewSelect[string]().Title("Accent").Options(accentOptions...).Value(p.formAccent),
			huh.NewInput().Title("Link (optional)").Value(p.formLink),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p presetsModel) updateForm(msg tea.Msg) (presetsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		if err := p.save(); err != nil {
			return p, tea.Batch(statusCmd(err.Error(), true), p.refresh())
		}
		return p, p.refresh()
	}

	return p, cmd
}

// save validates the form through the same path as the config file.
func (p presetsModel) save() error {
	opts := config.Options{
		Target:      *p.formTarget,
		Title:       *p.formTitle,
		ButtonText:  *p.formButton,
		Accent:      *p.formAccent,
		FormatAbove: *p.formFormat,
		Link:        *p.formLink,
	}
	cd, err := opts.Resolve()
	if err != nil {
		return err
	}
	c := PresetFromCountdown(strings.TrimSpace(*p.formName), cd)
	if p.editingID != 0 {
		c.ID = p.editingID
		return p.env.store.UpdateCountdown(c)
	}
	_, err = p.env.store.CreateCountdown(c)
	return err
}

func (p presetsModel) view() string {
	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Preset")
		if p.editingID != 0 {
			title = titleStyle.Render("Edit Preset")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}
	return p.renderList()
}

func (p presetsModel) renderList() string {
	w := p.width - 4
	title := titleStyle.Render("Presets")
	if p.showArchived {
		title = titleStyle.Render("Presets (incl. archived)")
	}

	if len(p.presets) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No presets yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	now := p.env.clock.Now()

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-18s %-20s %-6s %-14s %s", "", "Name", "Target", "Above", "Remaining", "Presses"))
	rows = append(rows, header)

	for i, c := range p.presets {
		dot := lipgloss.NewStyle().Foreground(accentColor(c.Accent)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		counts := p.presses[c.ID]
		remaining := formatRemaining(countdown.Derive(c.Target, now))
		name := c.Name
		if c.Archived {
			name += " (archived)"
		}
		row := style.Render(fmt.Sprintf("%s%s %-18s %-20s %-6s %-14s %d (%d early)",
			cursor, dot, truncate(name, 18), shortDate(c.Target), c.FormatAbove, remaining, counts[0], counts[1]))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  E: edit  d: archive  a: toggle archived  enter: count down"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// PresetFromCountdown builds a storable preset from resolved options.
func PresetFromCountdown(name string, cd config.Countdown) store.Countdown {
	return store.Countdown{
		Name:        name,
		Title:       cd.Title,
		Target:      cd.Target,
		ButtonText:  cd.ButtonText,
		Accent:      cd.Accent,
		FormatAbove: cd.Threshold.String(),
		Message:     cd.Message,
		Link:        cd.Link,
	}
}

func formatRemaining(b countdown.Breakdown) string {
	switch {
	case b.Done():
		return "done"
	case b.Days > 0:
		return fmt.Sprintf("%dd %dh", b.Days, b.Hours)
	}
	return fmt.Sprintf("%dh %dm", b.Hours, b.Minutes)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}
