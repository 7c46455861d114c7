// Package export writes monthly reports as CSV or JSON.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sadopc/worktrack/internal/apperr"
	"github.com/sadopc/worktrack/internal/report"
)

// Format is an export file format.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// ParseFormat accepts "csv" or "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, JSON:
		return f, nil
	default:
		return "", apperr.Validationf("unknown export format %q: want csv or json", s)
	}
}

// FileName is the default file name for a month export.
func FileName(r *report.MonthlyReport, f Format) string {
	return fmt.Sprintf("worktrack-%04d-%02d.%s", r.Year, int(r.Month), f)
}

// Write encodes r in format f. Times are rendered in loc.
func Write(r *report.MonthlyReport, loc *time.Location, f Format, w io.Writer) error {
	switch f {
	case CSV:
		return ToCSV(r, loc, w)
	case JSON:
		return ToJSON(r, loc, w)
	default:
		return apperr.Validationf("unknown export format %q", f)
	}
}

// WriteFile writes r to path, creating parent directories.
func WriteFile(r *report.MonthlyReport, loc *time.Location, f Format, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s file: %w", f, err)
	}
	defer file.Close()

	if err := Write(r, loc, f, file); err != nil {
		return err
	}
	return file.Close()
}

// formatMinutes renders minutes as HH:MM.
func formatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func localTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.RFC3339)
}

func locOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
