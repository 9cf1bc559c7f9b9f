package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tminus/internal/store"
)

type settingsModel struct {
	env    *environment
	width  int
	height int

	settings   []store.Setting
	presets    []store.Countdown
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	cellWidth        *string
	logPresses       *bool
	defaultCountdown *string
}

func newSettingsModel(env *environment) settingsModel {
	cw, dc := "", ""
	lp := true
	return settingsModel{
		env:              env,
		cellWidth:        &cw,
		logPresses:       &lp,
		defaultCountdown: &dc,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	presets  []store.Countdown
}

func (s settingsModel) refresh() tea.Cmd {
	env := s.env
	return func() tea.Msg {
		settings, _ := env.store.GetAllSettings()
		presets, _ := env.store.ListCountdowns(false)
		return settingsDataMsg{settings: settings, presets: presets}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.presets = msg.presets
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.cellWidth = strconv.Itoa(s.env.cells.CellWidth())
	*s.logPresses = s.getVal("log_presses", "true") != "false"
	*s.defaultCountdown = s.getVal("default_countdown", "")

	presetOptions := []huh.Option[string]{huh.NewOption("(config file)", "")}
	for _, p := range s.presets {
		presetOptions = append(presetOptions, huh.NewOption(p.Name, p.Name))
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Cell width (px per column)").Value(s.cellWidth).
				Validate(func(v string) error {
					n, err := strconv.Atoi(v)
					if err != nil || n < 1 || n > 64 {
						return fmt.Errorf("enter a number between 1 and 64")
					}
					return nil
				}),
		).Title("Display"),
		huh.NewGroup(
			huh.NewConfirm().Title("Log button presses").Value(s.logPresses),
			huh.NewSelect[string]().Title("Countdown on startup").
				Options(presetOptions...).Value(s.defaultCountdown),
		).Title("General"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, statusCmd(fmt.Sprintf("Save settings: %v", err), true)
		}
		cw := s.env.store.GetIntSetting("cell_width_px", s.env.cells.CellWidth())
		return s, func() tea.Msg { return settingsSavedMsg{cellWidth: cw} }
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	values := map[string]string{
		"cell_width_px":     *s.cellWidth,
		"log_presses":       strconv.FormatBool(*s.logPresses),
		"default_countdown": *s.defaultCountdown,
	}
	for k, v := range values {
		if err := s.env.store.SetSetting(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.env.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  Viewport: %d columns x %dpx = %dpx",
		s.env.cells.Columns(), s.env.cells.CellWidth(), s.env.cells.CurrentWidth())))
	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "cell_width_px":
		return v + " px"
	case "default_countdown":
		if v == "" {
			return "(config file)"
		}
	case "log_presses":
		if v == "false" {
			return "off"
		}
		return "on"
	}
	return v
}
