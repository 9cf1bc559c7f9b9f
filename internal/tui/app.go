package tui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/sadopc/tminus/internal/config"
	"github.com/sadopc/tminus/internal/countdown"
	"github.com/sadopc/tminus/internal/cta"
	"github.com/sadopc/tminus/internal/export"
	"github.com/sadopc/tminus/internal/layout"
	"github.com/sadopc/tminus/internal/store"
)

// environment is shared by every child model.
type environment struct {
	store     *store.Store
	clock     countdown.Clock
	scheduler countdown.Scheduler
	cells     *layout.CellSource
	logger    *log.Logger
	handler   cta.Handler
	exportDir string
	updates   chan snapshotMsg
	gen       int
}

func (e *environment) logPresses() bool {
	v, err := e.store.GetSetting("log_presses")
	return err != nil || v != "false"
}

// Options wires the App to its collaborators. Zero values pick the real
// clock, a ticker scheduler and a discarding logger.
type Options struct {
	Store     *store.Store
	Clock     countdown.Clock
	Scheduler countdown.Scheduler
	Logger    *log.Logger
	Handler   cta.Handler
	CellWidth int
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	env    *environment
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int
	notice        *cta.Notice

	countdown countdownModel
	presets   presetsModel
	presses   pressesModel
	settings  settingsModel

	help      help.Model
	status    string
	statusErr bool
}

// NewApp builds the App and starts the countdown for cd. preset is the saved
// countdown cd came from, or nil.
func NewApp(cd config.Countdown, preset *store.Countdown, opts Options) (App, error) {
	if opts.Store == nil {
		return App{}, fmt.Errorf("tui: store is required")
	}
	env := &environment{
		store:     opts.Store,
		clock:     opts.Clock,
		scheduler: opts.Scheduler,
		cells:     layout.NewCellSource(opts.CellWidth),
		logger:    opts.Logger,
		handler:   opts.Handler,
		exportDir: opts.ExportDir,
		updates:   make(chan snapshotMsg, 1),
	}
	if env.clock == nil {
		env.clock = countdown.SystemClock{}
	}
	if env.scheduler == nil {
		env.scheduler = countdown.NewTickerScheduler()
	}
	if env.logger == nil {
		env.logger = log.New(io.Discard)
	}
	if env.exportDir == "" {
		env.exportDir, _ = os.UserHomeDir()
	}

	h := help.New()
	h.ShowAll = false

	a := App{
		env:        env,
		activeView: viewCountdown,
		countdown:  newCountdownModel(env),
		presets:    newPresetsModel(env),
		presses:    newPressesModel(env),
		settings:   newSettingsModel(env),
		help:       h,
	}

	var err error
	a.countdown, err = a.countdown.activate(cd, preset)
	if err != nil {
		return App{}, err
	}
	return a, nil
}

// Close stops the countdown and releases the width subscription.
func (a App) Close() {
	a.countdown.deactivate()
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.waitForSnapshot(),
		a.presets.refresh(),
	)
}

func (a App) waitForSnapshot() tea.Cmd {
	ch := a.env.updates
	return func() tea.Msg {
		return <-ch
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.countdown.setSize(a.width, contentHeight)
		a.presets.setSize(a.width, contentHeight)
		a.presses.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.env.cells.SetColumns(msg.Width)
		return a, nil

	case tea.KeyMsg:
		if a.notice != nil {
			if key.Matches(msg, keys.Enter, keys.Back, keys.Press) {
				a.notice = nil
			}
			return a, nil
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			a.Close()
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewCountdown
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewPresets
			return a, a.presets.refresh()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewPresses
			return a, a.presses.refresh()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.settings.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case snapshotMsg:
		var cmd tea.Cmd
		a.countdown, cmd = a.countdown.update(msg)
		return a, tea.Batch(cmd, a.waitForSnapshot())

	case noticeMsg:
		n := msg.notice
		a.notice = &n
		return a, nil

	case presetSelectedMsg:
		return a.activatePreset(msg.preset)

	case settingsSavedMsg:
		a.env.cells.SetCellWidth(msg.cellWidth)
		a.status = "Settings saved"
		a.statusErr = false
		return a, a.settings.refresh()

	case statusMsg:
		a.status = msg.text
		a.statusErr = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.statusErr = false
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) activatePreset(p store.Countdown) (tea.Model, tea.Cmd) {
	cd, err := PresetOptions(p).Resolve()
	if err == nil {
		a.countdown, err = a.countdown.activate(cd, &p)
	}
	if err != nil {
		a.status = fmt.Sprintf("Preset %s: %v", p.Name, err)
		a.statusErr = true
		return a, nil
	}
	a.activeView = viewCountdown
	a.status = "Counting down to " + p.Name
	a.statusErr = false
	return a, nil
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewCountdown:
		a.countdown, cmd = a.countdown.update(msg)
	case viewPresets:
		a.presets, cmd = a.presets.update(msg)
	case viewPresses:
		a.presses, cmd = a.presses.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewPresets:
		return a.presets.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewPresets:
		return a.presets.refresh()
	case viewPresses:
		return a.presses.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewCountdown:
		content = a.countdown.view()
	case viewPresets:
		content = a.presets.view()
	case viewPresses:
		content = a.presses.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := a.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 1 {
		contentHeight = 1
	}

	switch {
	case a.notice != nil:
		content = a.renderNotice()
	case a.exportPicking:
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tminus")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	// Remaining time stays visible from every view.
	remaining := ""
	if a.activeView != viewCountdown {
		if a.countdown.done() {
			remaining = successStyle.Render(" ● " + cta.DoneLabel)
		} else {
			remaining = warningStyle.Render(" ◷ " + a.countdown.snap.Compact())
		}
	}

	left := footerStyle.Render(helpView)
	right := remaining + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderNotice() string {
	w := clamp(a.width-8, 20, 72)
	body := lipgloss.NewStyle().Width(w - 6).Render(a.notice.Text)
	panel := activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(a.notice.Title),
		"",
		body,
		"",
		mutedStyle.Render("enter: ok"),
	))
	return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, panel)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Press Log")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	env := a.env
	return func() tea.Msg {
		path, err := ExportPresses(env.store, env.exportDir, format == 1, env.clock.Now())
		if err != nil {
			env.logger.Error("export", "err", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

// ExportPresses writes the full press log into dir and returns the file path.
func ExportPresses(s *store.Store, dir string, asJSON bool, now time.Time) (string, error) {
	format := export.CSV
	if asJSON {
		format = export.JSON
	}
	return export.WriteToDir(s, dir, format, now)
}

// PresetOptions converts a saved preset into configuration options.
func PresetOptions(p store.Countdown) config.Options {
	return config.Options{
		Target:      p.Target.Local().Format(time.RFC3339),
		Title:       p.Title,
		ButtonText:  p.ButtonText,
		Accent:      p.Accent,
		FormatAbove: p.FormatAbove,
		Message:     p.Message,
		Link:        p.Link,
	}
}
