package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/sadopc/worktrack/internal/report"
	"github.com/sadopc/worktrack/internal/timecalc"
)

var csvHeader = []string{"Date", "Activity", "Start", "End", "Duration (min)", "Duration", "Tags", "Note"}

// ToCSV writes one row per entry of the report. Running entries have an
// empty end and zero duration.
func ToCSV(r *report.MonthlyReport, loc *time.Location, w io.Writer) error {
	loc = locOrLocal(loc)
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, e := range r.Entries {
		endStr := ""
		if e.End != nil {
			endStr = localTime(*e.End, loc)
		}
		minutes := e.WorkedMinutes()

		row := []string{
			timecalc.DateOf(e.Start, loc).String(),
			e.Activity,
			localTime(e.Start, loc),
			endStr,
			strconv.Itoa(minutes),
			formatMinutes(minutes),
			e.Tags,
			e.Note,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
