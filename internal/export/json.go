package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/tminus/internal/store"
)

type jsonExport struct {
	ExportedAt string          `json:"exported_at"`
	Count      int             `json:"count"`
	Countdowns []jsonCountdown `json:"countdowns"`
	Presses    []jsonPress     `json:"presses"`
}

type jsonCountdown struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Title  string `json:"title"`
	Target string `json:"target"`
}

type jsonPress struct {
	ID           int64  `json:"id"`
	Countdown    string `json:"countdown"`
	CountdownID  int64  `json:"countdown_id"`
	PressedAt    string `json:"pressed_at"`
	Status       string `json:"status"`
	RemainingSec int64  `json:"remaining_seconds"`
	Remaining    string `json:"remaining"`
}

func ToJSON(presses []store.Press, countdowns map[int64]*store.Countdown, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(presses),
		Countdowns: []jsonCountdown{},
		Presses:    []jsonPress{},
	}

	seen := make(map[int64]bool)
	for _, p := range presses {
		name, remaining := describe(p, countdowns)
		if c, ok := countdowns[p.CountdownID]; ok && !seen[c.ID] {
			seen[c.ID] = true
			export.Countdowns = append(export.Countdowns, jsonCountdown{
				ID:     c.ID,
				Name:   c.Name,
				Title:  c.Title,
				Target: c.Target.Local().Format(time.RFC3339),
			})
		}

		export.Presses = append(export.Presses, jsonPress{
			ID:           p.ID,
			Countdown:    name,
			CountdownID:  p.CountdownID,
			PressedAt:    p.PressedAt.Local().Format(time.RFC3339),
			Status:       status(p),
			RemainingSec: remaining.TotalSeconds(),
			Remaining:    remaining.Compact(),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
