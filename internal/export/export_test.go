package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/worktrack/internal/apperr"
	"github.com/sadopc/worktrack/internal/report"
	"github.com/sadopc/worktrack/internal/store"
	"github.com/sadopc/worktrack/internal/timecalc"
)

func sampleReport() *report.MonthlyReport {
	start := time.Date(2024, 3, 6, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 6, 17, 30, 0, 0, time.UTC)
	resumed := time.Date(2024, 3, 6, 13, 0, 0, 0, time.UTC)
	worked := 450
	short := 60
	shortEnd := time.Date(2024, 3, 7, 11, 0, 0, 0, time.UTC)

	entries := []store.Entry{
		{
			ID:              1,
			Activity:        "coding",
			Start:           start,
			End:             &end,
			Pauses:          []timecalc.PauseInterval{{Start: time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC), End: &resumed}},
			DurationMinutes: &worked,
			Tags:            "go",
			Note:            "worked on feature",
		},
		{
			ID:              2,
			Activity:        "review",
			Start:           time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC),
			End:             &shortEnd,
			DurationMinutes: &short,
		},
		{
			ID:       3,
			Activity: "running",
			Start:    time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC),
		},
	}

	r := &report.MonthlyReport{Year: 2024, Month: time.March}
	r.From, r.To = timecalc.MonthBounds(2024, time.March)
	r.Entries = entries
	r.DayOffs = []timecalc.Date{timecalc.NewDate(2024, time.March, 5)}
	r.Vacations = []store.Vacation{}
	r.TotalWorkedMinutes = 510
	r.TotalTargetMinutes = 9600
	r.BalanceMinutes = 510 - 9600
	r.Daily = []report.Day{
		{Date: timecalc.NewDate(2024, time.March, 5), DayOff: true},
		{Date: timecalc.NewDate(2024, time.March, 6), WorkedMinutes: 450, TargetMinutes: 480, BalanceMinutes: -30},
	}
	return r
}

func emptyReport() *report.MonthlyReport {
	r := &report.MonthlyReport{Year: 2024, Month: time.April}
	r.Entries = []store.Entry{}
	return r
}

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("invalid csv: %v", err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ToCSV(sampleReport(), time.UTC, &buf); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	records := readCSV(t, buf.Bytes())

	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}
	for i, h := range csvHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[0] != "2024-03-06" || row[1] != "coding" {
		t.Fatalf("unexpected row %v", row)
	}
	if row[2] != "2024-03-06T09:00:00Z" || row[3] != "2024-03-06T17:30:00Z" {
		t.Fatalf("unexpected times %v", row[2:4])
	}
	if row[4] != "450" || row[5] != "07:30" {
		t.Fatalf("duration = %q/%q, want 450/07:30", row[4], row[5])
	}
	if row[6] != "go" || row[7] != "worked on feature" {
		t.Fatalf("tags/note = %q/%q", row[6], row[7])
	}

	running := records[3]
	if running[3] != "" || running[4] != "0" {
		t.Fatalf("running entry should have no end and zero minutes, got %v", running)
	}
}

func TestToCSVLocation(t *testing.T) {
	var buf bytes.Buffer
	plus3 := time.FixedZone("UTC+3", 3*3600)
	if err := ToCSV(sampleReport(), plus3, &buf); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, buf.Bytes())
	if records[1][2] != "2024-03-06T12:00:00+03:00" {
		t.Fatalf("start not rendered in location: %q", records[1][2])
	}
}

func TestToCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := ToCSV(emptyReport(), time.UTC, &buf); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, buf.Bytes()); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	r := sampleReport()
	r.Entries[0].Activity = `Project "Special"`
	r.Entries[0].Note = `notes with "quotes" and, commas`

	var buf bytes.Buffer
	if err := ToCSV(r, time.UTC, &buf); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, buf.Bytes())
	if records[1][1] != `Project "Special"` {
		t.Fatalf("activity mangled: %q", records[1][1])
	}
	if records[1][7] != `notes with "quotes" and, commas` {
		t.Fatalf("note mangled: %q", records[1][7])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	fixed := time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	var buf bytes.Buffer
	if err := ToJSON(sampleReport(), time.UTC, &buf); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var result jsonExport
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.ExportedAt != "2024-04-01T08:00:00Z" {
		t.Fatalf("exported_at = %q", result.ExportedAt)
	}
	if result.Year != 2024 || result.Month != 3 || result.Count != 3 {
		t.Fatalf("unexpected header %+v", result)
	}
	if result.BalanceMinutes != 510-9600 {
		t.Fatalf("balance = %d", result.BalanceMinutes)
	}

	e := result.Entries[0]
	if e.ID != 1 || e.Activity != "coding" || e.DurationMin != 450 || e.Duration != "07:30" || e.Pauses != 1 {
		t.Fatalf("unexpected entry %+v", e)
	}
	if result.Entries[2].EndTime != "" {
		t.Fatal("running entry end_time should be empty")
	}
	if len(result.DayOffs) != 1 || result.DayOffs[0].String() != "2024-03-05" {
		t.Fatalf("day offs = %v", result.DayOffs)
	}
	if len(result.Daily) != 2 || !result.Daily[0].DayOff || result.Daily[1].BalanceMinutes != -30 {
		t.Fatalf("daily = %+v", result.Daily)
	}
}

func TestToJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := ToJSON(emptyReport(), time.UTC, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"entries": []`) {
		t.Fatalf("empty export should list no entries, got %s", buf.String())
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	var buf bytes.Buffer
	ToJSON(emptyReport(), time.UTC, &buf)
	if !strings.Contains(buf.String(), "\n  ") {
		t.Fatal("JSON should be indented")
	}
}

// ============================================================
// Files and formats
// ============================================================

func TestWriteFile(t *testing.T) {
	r := sampleReport()
	dir := filepath.Join(t.TempDir(), "out")

	for _, f := range []Format{CSV, JSON} {
		path := filepath.Join(dir, FileName(r, f))
		if err := WriteFile(r, time.UTC, f, path); err != nil {
			t.Fatalf("WriteFile(%s): %v", f, err)
		}
		data, err := os.ReadFile(path)
		if err != nil || len(data) == 0 {
			t.Fatalf("%s file missing or empty: %v", f, err)
		}
	}
	if FileName(r, CSV) != "worktrack-2024-03.csv" {
		t.Fatalf("file name = %q", FileName(r, CSV))
	}
}

func TestWriteFileBadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	os.WriteFile(blocker, []byte("x"), 0o644)
	if err := WriteFile(sampleReport(), time.UTC, CSV, filepath.Join(blocker, "x.csv")); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": CSV, " JSON ": JSON} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "00:00"},
		{1, "00:01"},
		{60, "01:00"},
		{450, "07:30"},
		{1500, "25:00"},
	}
	for _, tt := range tests {
		if got := formatMinutes(tt.minutes); got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
