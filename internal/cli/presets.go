package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/tminus/internal/config"
	"github.com/sadopc/tminus/internal/store"
	"github.com/sadopc/tminus/internal/tui"
)

var (
	presetsAll  bool
	presetsJSON bool
)

type presetJSON struct {
	Name          string `json:"name"`
	Title         string `json:"title"`
	Target        string `json:"target"`
	FormatAbove   string `json:"format_above"`
	Accent        string `json:"accent,omitempty"`
	Link          string `json:"link,omitempty"`
	Archived      bool   `json:"archived"`
	Presses       int    `json:"presses"`
	EarlyPresses  int    `json:"early_presses"`
	DefaultOnOpen bool   `json:"default"`
}

var presetsCmd = &cobra.Command{
	Use:     "presets",
	Aliases: []string{"preset"},
	Short:   "Manage saved countdowns",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved countdowns",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		list, err := s.ListCountdowns(presetsAll)
		if err != nil {
			return err
		}
		def, _ := s.GetSetting("default_countdown")

		if presetsJSON {
			items := make([]presetJSON, 0, len(list))
			for _, c := range list {
				total, early, _ := s.CountPresses(c.ID)
				items = append(items, presetJSON{
					Name:          c.Name,
					Title:         c.Title,
					Target:        c.Target.Format(time.RFC3339),
					FormatAbove:   c.FormatAbove,
					Accent:        c.Accent,
					Link:          c.Link,
					Archived:      c.Archived,
					Presses:       total,
					EarlyPresses:  early,
					DefaultOnOpen: c.Name == def,
				})
			}
			return outJSON(items)
		}

		if len(list) == 0 {
			if !quiet {
				outln("No presets. Add one with: tminus presets add NAME --target ...")
			}
			return nil
		}
		for _, c := range list {
			if quiet {
				outln(c.Name)
				continue
			}
			marker := " "
			if c.Name == def {
				marker = "*"
			}
			archived := ""
			if c.Archived {
				archived = " (archived)"
			}
			total, _, _ := s.CountPresses(c.ID)
			out("%s %-20s %-25s %-5s %3d presses  %s%s\n",
				marker, c.Name, c.Target.Local().Format("2006-01-02 15:04 MST"), c.FormatAbove, total, c.Title, archived)
		}
		return nil
	},
}

var presetsAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Save a countdown preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagTarget == "" {
			return errors.New("--target is required")
		}
		cd, err := config.DefaultOptions().Merge(flagOptions()).Resolve()
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		c, err := s.CreateCountdown(tui.PresetFromCountdown(args[0], cd))
		if err != nil {
			return err
		}
		if !quiet {
			out("Saved preset %s (%s)\n", c.Name, c.Target.Local().Format(time.RFC3339))
		}
		return nil
	},
}

var presetsArchiveCmd = &cobra.Command{
	Use:   "archive NAME",
	Short: "Hide a preset from the list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPreset(args[0], func(s *store.Store, c *store.Countdown) error {
			if err := s.ArchiveCountdown(c.ID); err != nil {
				return err
			}
			if def, _ := s.GetSetting("default_countdown"); def == c.Name {
				if err := s.SetSetting("default_countdown", ""); err != nil {
					return err
				}
			}
			if !quiet {
				out("Archived preset %s\n", c.Name)
			}
			return nil
		})
	},
}

var presetsUseCmd = &cobra.Command{
	Use:   "use NAME",
	Short: "Open NAME when tminus starts without --preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPreset(args[0], func(s *store.Store, c *store.Countdown) error {
			if err := s.SetSetting("default_countdown", c.Name); err != nil {
				return err
			}
			if !quiet {
				out("tminus now opens %s\n", c.Name)
			}
			return nil
		})
	},
}

func withPreset(name string, fn func(*store.Store, *store.Countdown) error) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	c, err := s.GetCountdownByName(name)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("preset %q not found", name)
	}
	if err != nil {
		return err
	}
	return fn(s, c)
}

func init() {
	presetsListCmd.Flags().BoolVarP(&presetsAll, "all", "a", false, "Include archived presets")
	presetsListCmd.Flags().BoolVar(&presetsJSON, "json", false, "Output as JSON")

	presetsAddCmd.Flags().StringVar(&flagTarget, "target", "", "Target time (RFC3339 or YYYY-MM-DD[THH:MM[:SS]])")
	presetsAddCmd.Flags().StringVar(&flagTitle, "title", "", "Title shown above the counter")
	presetsAddCmd.Flags().StringVar(&flagButton, "button-text", "", "Button label before completion")
	presetsAddCmd.Flags().StringVar(&flagAccent, "accent", "", "Accent color (#RRGGBB or ANSI number)")
	presetsAddCmd.Flags().StringVar(&flagFormat, "format-above", "", "Full layout at or above this width (xs|sm|md|lg|xl or pixels)")
	presetsAddCmd.Flags().StringVar(&flagMessage, "message", "", "Template shown when pressing early")
	presetsAddCmd.Flags().StringVar(&flagLink, "link", "", "URL opened by the button")

	presetsCmd.AddCommand(presetsListCmd)
	presetsCmd.AddCommand(presetsAddCmd)
	presetsCmd.AddCommand(presetsArchiveCmd)
	presetsCmd.AddCommand(presetsUseCmd)
}
