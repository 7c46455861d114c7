package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktrack/internal/service"
	"github.com/sadopc/worktrack/internal/timecalc"
	"github.com/sadopc/worktrack/internal/tracker"
)

func newStartCmd(a *app) *cobra.Command {
	var req tracker.StartRequest
	cmd := &cobra.Command{
		Use:   "start <activity>",
		Short: "Start tracking an activity",
		Long: `Start tracking an activity. Only one entry can be active at a time.

Examples:
  worktrack start code review
  worktrack start "planning" --tags meeting,team
  worktrack start standup --backdate 15`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Activity = strings.Join(args, " ")
			res := a.svc.Start(req)
			if err := res.Err(); err != nil {
				return err
			}
			e := res.Data
			fmt.Fprintf(deps.Stdout, "Started %q at %s (#%d)\n", e.Activity, clock(e.Start, a.svc.Location()), e.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Tags, "tags", "t", "", "comma separated tags")
	cmd.Flags().StringVarP(&req.Note, "note", "n", "", "free text note")
	cmd.Flags().IntVarP(&req.BackdateMinutes, "backdate", "b", 0, "start this many minutes in the past (at most one week)")
	return cmd
}

// current returns the active status, printing a hint when nothing is tracked.
func current(a *app) (service.Status, bool, error) {
	res := a.svc.Current()
	if err := res.Err(); err != nil {
		return service.Status{}, false, err
	}
	if res.Data.Entry == nil {
		fmt.Fprintln(deps.Stdout, "Nothing is being tracked.")
		return res.Data, false, nil
	}
	return res.Data, true, nil
}

func newPauseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the active entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, found, err := current(a)
			if err != nil || !found {
				return err
			}
			res := a.svc.Pause(st.Entry.ID)
			if err := res.Err(); err != nil {
				return err
			}
			if !res.Data {
				fmt.Fprintf(deps.Stdout, "%q is already paused.\n", st.Entry.Activity)
				return nil
			}
			fmt.Fprintf(deps.Stdout, "Paused %q after %s\n", st.Entry.Activity, timecalc.FormatMinutes(int(st.Elapsed.Minutes())))
			return nil
		},
	}
}

func newResumeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the paused entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, found, err := current(a)
			if err != nil || !found {
				return err
			}
			res := a.svc.Resume(st.Entry.ID)
			if err := res.Err(); err != nil {
				return err
			}
			if !res.Data {
				fmt.Fprintf(deps.Stdout, "%q is not paused.\n", st.Entry.Activity)
				return nil
			}
			fmt.Fprintf(deps.Stdout, "Resumed %q\n", st.Entry.Activity)
			return nil
		},
	}
}

func newStopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the active entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, found, err := current(a)
			if err != nil || !found {
				return err
			}
			if err := a.svc.Stop(st.Entry.ID).Err(); err != nil {
				return err
			}
			res := a.svc.Entry(st.Entry.ID)
			if err := res.Err(); err != nil {
				return err
			}
			e := res.Data
			fmt.Fprintf(deps.Stdout, "Stopped %q: %s worked\n", e.Activity, timecalc.FormatMinutes(e.WorkedMinutes()))
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active entry and today's balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			loc := a.svc.Location()
			st, found, err := current(a)
			if err != nil {
				return err
			}
			today := a.svc.Today()
			running := 0
			if found {
				fmt.Fprintf(deps.Stdout, "%s %q since %s, %s worked\n",
					boldStyle.Render(st.State.String()), st.Entry.Activity,
					clock(st.Entry.Start, loc), timecalc.FormatMinutes(int(st.Elapsed.Minutes())))
				// Reports attribute an entry to its start date.
				if timecalc.DateOf(st.Entry.Start, loc) == today {
					running = int(st.Elapsed.Minutes())
				}
			}

			res := a.svc.RangeReport(today, today)
			if err := res.Err(); err != nil {
				return err
			}
			r := res.Data
			worked := r.TotalWorkedMinutes + running
			fmt.Fprintf(deps.Stdout, "Today %s: %s of %s  %s\n", today,
				timecalc.FormatMinutes(worked), timecalc.FormatMinutes(r.TotalTargetMinutes),
				balance(worked-r.TotalTargetMinutes))
			return nil
		},
	}
}
