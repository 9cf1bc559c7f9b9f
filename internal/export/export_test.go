package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sadopc/tminus/internal/store"
)

var target = time.Date(2025, 11, 7, 0, 0, 0, 0, time.UTC)

func sampleData() ([]store.Press, map[int64]*store.Countdown) {
	presses := []store.Press{
		{ID: 1, CountdownID: 1, PressedAt: target.Add(-90061 * time.Second), Done: false},
		{ID: 2, CountdownID: 1, PressedAt: target.Add(time.Hour), Done: true},
		{ID: 3, CountdownID: 2, PressedAt: target.Add(-time.Minute), Done: false},
	}
	countdowns := map[int64]*store.Countdown{
		1: {ID: 1, Name: "launch", Title: "Launch day", Target: target},
		2: {ID: 2, Name: "release", Title: "Release", Target: target},
	}
	return presses, countdowns
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	presses, countdowns := sampleData()
	path := filepath.Join(t.TempDir(), "presses.csv")

	if err := ToCSV(presses, countdowns, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	records := readCSV(t, path)
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	expectedHeader := []string{"ID", "Countdown", "Pressed At", "Status", "Remaining (s)", "Remaining"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[1] != "launch" || row[3] != "early" {
		t.Fatalf("unexpected first row: %v", row)
	}
	if row[4] != "90061" || row[5] != "1:01:01:01" {
		t.Fatalf("remaining = %q/%q, want 90061/1:01:01:01", row[4], row[5])
	}

	late := records[2]
	if late[3] != "on time" || late[4] != "0" || late[5] != "0:00:00:00" {
		t.Fatalf("press after target should clamp to zero: %v", late)
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := ToCSV(nil, nil, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected header only, got %d rows", len(records))
	}
}

func TestToCSVUnknownCountdown(t *testing.T) {
	presses := []store.Press{{ID: 1, CountdownID: 999, PressedAt: time.Now()}}
	path := filepath.Join(t.TempDir(), "unknown.csv")

	if err := ToCSV(presses, map[int64]*store.Countdown{}, path); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][1] != "Unknown" {
		t.Fatalf("expected 'Unknown', got %q", records[1][1])
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	presses := []store.Press{{ID: 1, CountdownID: 1, PressedAt: target}}
	countdowns := map[int64]*store.Countdown{1: {ID: 1, Name: `say "when", please`, Target: target}}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(presses, countdowns, path); err != nil {
		t.Fatal(err)
	}
	if got := readCSV(t, path)[1][1]; got != `say "when", please` {
		t.Fatalf("name mangled: %q", got)
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, nil, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	presses, countdowns := sampleData()
	path := filepath.Join(t.TempDir(), "presses.json")

	if err := ToJSON(presses, countdowns, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || len(result.Presses) != 3 {
		t.Fatalf("expected 3 presses, got count=%d len=%d", result.Count, len(result.Presses))
	}
	if len(result.Countdowns) != 2 {
		t.Fatalf("expected 2 distinct countdowns, got %d", len(result.Countdowns))
	}
	if result.Presses[0].Remaining != "1:01:01:01" || result.Presses[0].Status != "early" {
		t.Fatalf("unexpected first press: %+v", result.Presses[0])
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at missing")
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := ToJSON(nil, nil, path); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatal(err)
	}
	if result.Count != 0 || result.Presses == nil {
		t.Fatalf("expected empty presses array, got %+v", result)
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, nil, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// Collect / Write
// ============================================================

func newStoreWithPresses(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	c, err := s.CreateCountdown(store.Countdown{Name: "launch", Title: "Launch", Target: target, FormatAbove: "md"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordPress(c.ID, target.Add(-time.Hour), false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordPress(c.ID, target.Add(time.Hour), true); err != nil {
		t.Fatal(err)
	}
	if err := s.ArchiveCountdown(c.ID); err != nil {
		t.Fatal(err)
	}
	return s
}

func TestCollectIncludesArchivedCountdowns(t *testing.T) {
	s := newStoreWithPresses(t)

	presses, countdowns, err := Collect(s, store.PressFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(presses) != 2 {
		t.Fatalf("expected 2 presses, got %d", len(presses))
	}
	c, ok := countdowns[presses[0].CountdownID]
	if !ok || c.Name != "launch" {
		t.Fatal("archived countdown should still resolve")
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"csv", "json"} {
		if f, err := ParseFormat(in); err != nil || string(f) != in {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, f, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatal("expected error for xml")
	}
}

func TestWriteToDir(t *testing.T) {
	s := newStoreWithPresses(t)
	dir := t.TempDir()
	now := time.Date(2025, 11, 8, 9, 0, 0, 0, time.UTC)

	path, err := WriteToDir(s, dir, CSV, now)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "tminus-presses-2025-11-08.csv" {
		t.Fatalf("unexpected filename %s", path)
	}
	records := readCSV(t, path)
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	// Newest first.
	if records[1][3] != "on time" || records[2][3] != "early" {
		t.Fatalf("unexpected status column: %v / %v", records[1], records[2])
	}
}
