package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/tminus/internal/countdown"
	"github.com/sadopc/tminus/internal/cta"
	"github.com/sadopc/tminus/internal/layout"
	"github.com/sadopc/tminus/internal/tui"
)

var (
	printWidth int
	printJSON  bool
)

// now is replaced in tests.
var now = time.Now

type printOutput struct {
	Title            string `json:"title"`
	Target           string `json:"target"`
	Days             int64  `json:"days"`
	Hours            int64  `json:"hours"`
	Minutes          int64  `json:"minutes"`
	Seconds          int64  `json:"seconds"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	Done             bool   `json:"done"`
	Mode             string `json:"mode"`
	Threshold        string `json:"threshold"`
	Button           string `json:"button"`
}

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Render the countdown once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		cd, _, err := resolveCountdown(s, presetName, flagOptions(), false)
		if err != nil {
			return err
		}

		cellWidth := s.GetIntSetting("cell_width_px", cfg.Display.CellWidthPx)
		mode := layout.Select(cd.Threshold, printWidth*cellWidth)
		b := countdown.Derive(cd.Target, now())

		switch {
		case printJSON:
			return outJSON(printOutput{
				Title:            cd.Title,
				Target:           cd.Target.Format(time.RFC3339),
				Days:             b.Days,
				Hours:            b.Hours,
				Minutes:          b.Minutes,
				Seconds:          b.Seconds,
				RemainingSeconds: b.TotalSeconds(),
				Done:             b.Done(),
				Mode:             mode.String(),
				Threshold:        cd.Threshold.String(),
				Button:           cta.State(b.Done(), cd.ButtonText).Label,
			})
		case quiet:
			outln(b.Compact())
		default:
			outln(tui.Render(tui.NewWidget(cd), b, mode, printWidth))
		}
		return nil
	},
}

func init() {
	printCmd.Flags().IntVarP(&printWidth, "width", "w", 80, "Width in terminal columns")
	printCmd.Flags().BoolVar(&printJSON, "json", false, "Output as JSON")
	addCountdownFlags(printCmd)
}
