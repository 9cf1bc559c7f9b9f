// Package export writes the button press log to CSV or JSON files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/tminus/internal/countdown"
	"github.com/sadopc/tminus/internal/store"
)

func ToCSV(presses []store.Press, countdowns map[int64]*store.Countdown, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Countdown", "Pressed At", "Status", "Remaining (s)", "Remaining"}); err != nil {
		return err
	}

	for _, p := range presses {
		name, remaining := describe(p, countdowns)
		row := []string{
			fmt.Sprintf("%d", p.ID),
			name,
			p.PressedAt.Local().Format(time.RFC3339),
			status(p),
			fmt.Sprintf("%d", remaining.TotalSeconds()),
			remaining.Compact(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// describe resolves the countdown name and how much time was left when the
// button was pressed.
func describe(p store.Press, countdowns map[int64]*store.Countdown) (string, countdown.Breakdown) {
	c, ok := countdowns[p.CountdownID]
	if !ok {
		return "Unknown", countdown.Breakdown{}
	}
	return c.Name, countdown.Derive(c.Target, p.PressedAt)
}

func status(p store.Press) string {
	if p.Done {
		return "on time"
	}
	return "early"
}
