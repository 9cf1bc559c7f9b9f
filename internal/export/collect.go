package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/sadopc/tminus/internal/store"
)

// Format selects the export file type.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// ParseFormat accepts "csv" or "json".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case CSV, JSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q: want csv or json", s)
}

// Collect loads the press log filtered by f, plus every countdown it may
// reference (archived ones included).
func Collect(s *store.Store, f store.PressFilter) ([]store.Press, map[int64]*store.Countdown, error) {
	presses, err := s.ListPresses(f)
	if err != nil {
		return nil, nil, err
	}
	list, err := s.ListCountdowns(true)
	if err != nil {
		return nil, nil, err
	}
	countdowns := make(map[int64]*store.Countdown, len(list))
	for i := range list {
		countdowns[list[i].ID] = &list[i]
	}
	return presses, countdowns, nil
}

// DefaultFilename names an export written on day now.
func DefaultFilename(format Format, now time.Time) string {
	return fmt.Sprintf("tminus-presses-%s.%s", now.Format("2006-01-02"), format)
}

// Write collects the press log and writes it to path in the given format.
func Write(s *store.Store, f store.PressFilter, format Format, path string) error {
	presses, countdowns, err := Collect(s, f)
	if err != nil {
		return err
	}
	if format == JSON {
		return ToJSON(presses, countdowns, path)
	}
	return ToCSV(presses, countdowns, path)
}

// WriteToDir writes an export with the default filename into dir.
func WriteToDir(s *store.Store, dir string, format Format, now time.Time) (string, error) {
	path := filepath.Join(dir, DefaultFilename(format, now))
	return path, Write(s, store.PressFilter{}, format, path)
}
