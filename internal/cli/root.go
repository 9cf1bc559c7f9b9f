// Package cli wires the tminus commands.
package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/sadopc/tminus/internal/config"
	"github.com/sadopc/tminus/internal/logging"
	"github.com/sadopc/tminus/internal/store"
	"github.com/sadopc/tminus/internal/tui"
)

// version is injected at build time via -ldflags.
var version = "dev"

var (
	configPath string
	noColor    bool
	verbose    bool
	quiet      bool
	jsonLog    bool

	cfg = config.DefaultConfig()
)

// Countdown flags shared by the root and print commands.
var (
	presetName  string
	flagTarget  string
	flagTitle   string
	flagButton  string
	flagAccent  string
	flagFormat  string
	flagMessage string
	flagLink    string
)

var rootCmd = &cobra.Command{
	Use:               "tminus",
	Short:             "A countdown widget for the terminal",
	Long:              "tminus counts down to a target time, switching between a full and a compact layout with the terminal width.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.ConfigFile()+")")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Minimal output")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Log as JSON")
	rootCmd.Flags().Bool("version", false, "Show version and exit")
	addCountdownFlags(rootCmd)

	rootCmd.AddCommand(printCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
}

func addCountdownFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&presetName, "preset", "p", "", "Saved preset to count down to")
	cmd.Flags().StringVar(&flagTarget, "target", "", "Target time (RFC3339 or YYYY-MM-DD[THH:MM[:SS]])")
	cmd.Flags().StringVar(&flagTitle, "title", "", "Title shown above the counter")
	cmd.Flags().StringVar(&flagButton, "button-text", "", "Button label before completion")
	cmd.Flags().StringVar(&flagAccent, "accent", "", "Accent color (#RRGGBB or ANSI number)")
	cmd.Flags().StringVar(&flagFormat, "format-above", "", "Full layout at or above this width (xs|sm|md|lg|xl or pixels)")
	cmd.Flags().StringVar(&flagMessage, "message", "", "Template shown when pressing early")
	cmd.Flags().StringVar(&flagLink, "link", "", "URL opened by the button")
}

func flagOptions() config.Options {
	return config.Options{
		Target:      flagTarget,
		Title:       flagTitle,
		ButtonText:  flagButton,
		Accent:      flagAccent,
		FormatAbove: flagFormat,
		Message:     flagMessage,
		Link:        flagLink,
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with the given context.
// Commands access it via cmd.Context().
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, args []string) error {
	if verbose && quiet {
		verbose = false
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded

	colorless := noColor || cfg.Display.NoColor
	if err := logging.Configure(logging.Logger, logging.Flags{
		Verbose: verbose,
		Quiet:   quiet,
		NoColor: colorless,
		JSON:    jsonLog,
		Level:   cfg.Log.Level,
	}); err != nil {
		return err
	}
	if colorless {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	logging.Logger.Debug("config loaded", "path", configPath, "db", cfg.ResolvedDBPath())
	return nil
}

func openStore() (*store.Store, error) {
	s, err := store.New(cfg.ResolvedDBPath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		out("tminus %s\n", version)
		return nil
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	cd, preset, err := resolveCountdown(s, presetName, flagOptions(), true)
	if err != nil {
		return err
	}

	// The alternate screen owns the terminal; send logs to a file.
	logPath := cfg.Log.File
	if logPath == "" {
		logPath = config.LogFile()
	}
	if closer, err := logging.ToFile(logging.Logger, logPath); err != nil {
		logging.Logger.Warn("logging to stderr", "err", err)
	} else {
		defer closer.Close()
		defer logging.Logger.SetOutput(os.Stderr)
	}

	app, err := tui.NewApp(cd, preset, tui.Options{
		Store:     s,
		Logger:    logging.Logger,
		CellWidth: s.GetIntSetting("cell_width_px", cfg.Display.CellWidthPx),
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	final, err := p.Run()
	closeApp(app, final)
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// closeApp releases the countdown held by the model the program ended with,
// which differs from the initial one once a preset has been selected.
func closeApp(initial tui.App, final tea.Model) {
	if a, ok := final.(tui.App); ok {
		a.Close()
	}
	initial.Close()
}
