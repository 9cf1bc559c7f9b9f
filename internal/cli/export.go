package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/tminus/internal/export"
	"github.com/sadopc/tminus/internal/store"
)

var (
	exportFormat string
	exportOut    string
	exportPreset string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the button press log",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		s, err := openStore()
		if err != nil {
			return err
		}
		defer s.Close()

		var filter store.PressFilter
		if exportPreset != "" {
			c, err := s.GetCountdownByName(exportPreset)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("preset %q not found", exportPreset)
			}
			if err != nil {
				return err
			}
			filter.CountdownID = &c.ID
		}

		path := exportOut
		if path == "" {
			path = export.DefaultFilename(format, now())
		}
		if err := export.Write(s, filter, format, path); err != nil {
			return err
		}
		if !quiet {
			out("Exported to %s\n", path)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "Output format: csv or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output path (default tminus-presses-DATE.FORMAT)")
	exportCmd.Flags().StringVarP(&exportPreset, "preset", "p", "", "Only presses of this preset")
}
