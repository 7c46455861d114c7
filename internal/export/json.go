package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sadopc/worktrack/internal/report"
	"github.com/sadopc/worktrack/internal/store"
	"github.com/sadopc/worktrack/internal/timecalc"
)

// now is replaced in tests.
var now = time.Now

type jsonExport struct {
	ExportedAt         string           `json:"exported_at"`
	Timezone           string           `json:"timezone"`
	Year               int              `json:"year"`
	Month              int              `json:"month"`
	TotalWorkedMinutes int              `json:"total_worked_minutes"`
	TotalTargetMinutes int              `json:"total_target_minutes"`
	BalanceMinutes     int              `json:"balance_minutes"`
	Count              int              `json:"count"`
	Entries            []jsonEntry      `json:"entries"`
	DayOffs            []timecalc.Date  `json:"day_offs"`
	Vacations          []store.Vacation `json:"vacations"`
	Daily              []jsonDay        `json:"daily"`
}

type jsonEntry struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Activity    string `json:"activity"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	DurationMin int    `json:"duration_minutes"`
	Duration    string `json:"duration"`
	Pauses      int    `json:"pauses"`
	Tags        string `json:"tags,omitempty"`
	Note        string `json:"note,omitempty"`
}

type jsonDay struct {
	Date           string `json:"date"`
	WorkedMinutes  int    `json:"worked_minutes"`
	TargetMinutes  int    `json:"target_minutes"`
	BalanceMinutes int    `json:"balance_minutes"`
	DayOff         bool   `json:"day_off,omitempty"`
	Vacation       bool   `json:"vacation,omitempty"`
}

// ToJSON writes the report as indented JSON with an exported_at stamp.
func ToJSON(r *report.MonthlyReport, loc *time.Location, w io.Writer) error {
	loc = locOrLocal(loc)
	export := jsonExport{
		ExportedAt:         now().UTC().Format(time.RFC3339),
		Timezone:           loc.String(),
		Year:               r.Year,
		Month:              int(r.Month),
		TotalWorkedMinutes: r.TotalWorkedMinutes,
		TotalTargetMinutes: r.TotalTargetMinutes,
		BalanceMinutes:     r.BalanceMinutes,
		Count:              len(r.Entries),
		Entries:            make([]jsonEntry, 0, len(r.Entries)),
		DayOffs:            r.DayOffs,
		Vacations:          r.Vacations,
		Daily:              make([]jsonDay, 0, len(r.Daily)),
	}

	for _, e := range r.Entries {
		endStr := ""
		if e.End != nil {
			endStr = localTime(*e.End, loc)
		}
		minutes := e.WorkedMinutes()
		export.Entries = append(export.Entries, jsonEntry{
			ID:          e.ID,
			Date:        timecalc.DateOf(e.Start, loc).String(),
			Activity:    e.Activity,
			StartTime:   localTime(e.Start, loc),
			EndTime:     endStr,
			DurationMin: minutes,
			Duration:    formatMinutes(minutes),
			Pauses:      len(e.Pauses),
			Tags:        e.Tags,
			Note:        e.Note,
		})
	}
	for _, d := range r.Daily {
		export.Daily = append(export.Daily, jsonDay{
			Date:           d.Date.String(),
			WorkedMinutes:  d.WorkedMinutes,
			TargetMinutes:  d.TargetMinutes,
			BalanceMinutes: d.BalanceMinutes,
			DayOff:         d.DayOff,
			Vacation:       d.Vacation,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
