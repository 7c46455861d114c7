package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktrack/internal/report"
	"github.com/sadopc/worktrack/internal/timecalc"
)

type reportOptions struct {
	month   string
	week    int
	isoYear int
	from    string
	to      string
	asJSON  bool
}

func newReportCmd(a *app) *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compare worked time with targets",
		Long: `Show worked time, target and balance per day.

Without flags the current month is reported.

Examples:
  worktrack report
  worktrack report --month 2024-03
  worktrack report --week 12 --iso-year 2024
  worktrack report --this-week
  worktrack report --from 2024-03-01 --to 2024-03-15`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			thisWeek, _ := cmd.Flags().GetBool("this-week")
			b, err := buildReport(a, opts, thisWeek)
			if err != nil {
				return err
			}
			if opts.asJSON {
				enc := json.NewEncoder(deps.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(b.payload)
			}
			printReport(b.title, b.report)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.month, "month", "m", "", "month as YYYY-MM")
	f.IntVarP(&opts.week, "week", "w", 0, "ISO week number")
	f.IntVar(&opts.isoYear, "iso-year", 0, "ISO year of --week (default current)")
	f.Bool("this-week", false, "report the current week, honoring week_start")
	f.StringVar(&opts.from, "from", "", "first date YYYY-MM-DD")
	f.StringVar(&opts.to, "to", "", "last date YYYY-MM-DD")
	f.BoolVar(&opts.asJSON, "json", false, "print the report as JSON")
	cmd.MarkFlagsMutuallyExclusive("month", "week", "this-week", "from")
	cmd.MarkFlagsRequiredTogether("from", "to")
	return cmd
}

// builtReport pairs the shared totals with the full value printed by --json,
// which keeps the year/month or ISO week of the period.
type builtReport struct {
	title   string
	report  *report.Report
	payload any
}

func buildReport(a *app, opts *reportOptions, thisWeek bool) (*builtReport, error) {
	switch {
	case thisWeek:
		res := a.svc.CurrentWeekReport()
		if err := res.Err(); err != nil {
			return nil, err
		}
		return &builtReport{fmt.Sprintf("Week %s to %s", res.Data.From, res.Data.To), res.Data, res.Data}, nil

	case opts.week != 0:
		year := opts.isoYear
		if year == 0 {
			year, _ = a.now().ISOWeek()
		}
		res := a.svc.WeeklyReport(year, opts.week)
		if err := res.Err(); err != nil {
			return nil, err
		}
		return &builtReport{fmt.Sprintf("Week %d of %d", res.Data.Week, res.Data.ISOYear), &res.Data.Report, res.Data}, nil

	case opts.from != "":
		from, err := timecalc.ParseDate(opts.from)
		if err != nil {
			return nil, err
		}
		to, err := timecalc.ParseDate(opts.to)
		if err != nil {
			return nil, err
		}
		res := a.svc.RangeReport(from, to)
		if err := res.Err(); err != nil {
			return nil, err
		}
		return &builtReport{fmt.Sprintf("%s to %s", from, to), res.Data, res.Data}, nil
	}

	today := a.svc.Today()
	year, month := today.Year, today.Month
	if opts.month != "" {
		var err error
		if year, month, err = parseMonth(opts.month); err != nil {
			return nil, err
		}
	}
	res := a.svc.MonthlyReport(year, month)
	if err := res.Err(); err != nil {
		return nil, err
	}
	return &builtReport{fmt.Sprintf("%s %d", month, year), &res.Data.Report, res.Data}, nil
}

func printReport(title string, r *report.Report) {
	fmt.Fprintln(deps.Stdout, boldStyle.Render(title))
	fmt.Fprintln(deps.Stdout)
	for _, d := range r.Daily {
		if d.WorkedMinutes == 0 && d.TargetMinutes == 0 && !d.DayOff && !d.Vacation {
			continue
		}
		mark := ""
		switch {
		case d.Vacation:
			mark = dimStyle.Render("  vacation")
		case d.DayOff:
			mark = dimStyle.Render("  day off")
		}
		fmt.Fprintf(deps.Stdout, "%s %s  %8s / %-8s %s%s\n",
			d.Date, d.Date.Weekday().String()[:3],
			timecalc.FormatMinutes(d.WorkedMinutes), timecalc.FormatMinutes(d.TargetMinutes),
			balance(d.BalanceMinutes), mark)
	}
	fmt.Fprintln(deps.Stdout)
	fmt.Fprintf(deps.Stdout, "Worked %s of %s  %s\n",
		timecalc.FormatMinutes(r.TotalWorkedMinutes), timecalc.FormatMinutes(r.TotalTargetMinutes),
		balance(r.BalanceMinutes))
	if n := len(r.DayOffs); n > 0 {
		fmt.Fprintf(deps.Stdout, "%d day(s) off, %d vacation(s)\n", n, len(r.Vacations))
	} else if n := len(r.Vacations); n > 0 {
		fmt.Fprintf(deps.Stdout, "%d vacation(s)\n", n)
	}
}
