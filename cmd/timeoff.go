package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktrack/internal/timecalc"
)

// listWindow resolves --from/--to, defaulting to the current year.
func listWindow(a *app, from, to string) (timecalc.Date, timecalc.Date, error) {
	year := a.svc.Today().Year
	first := timecalc.NewDate(year, 1, 1)
	last := timecalc.NewDate(year, 12, 31)
	var err error
	if from != "" {
		if first, err = timecalc.ParseDate(from); err != nil {
			return first, last, err
		}
	}
	if to != "" {
		if last, err = timecalc.ParseDate(to); err != nil {
			return first, last, err
		}
	}
	return first, last, nil
}

func newDayOffCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dayoff",
		Aliases: []string{"off"},
		Short:   "Manage single days off",
		Long: `A day off has a target of zero.

Examples:
  worktrack dayoff add 2024-03-29
  worktrack dayoff rm 2024-03-29
  worktrack dayoff ls --from 2024-01-01 --to 2024-06-30`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <date>...",
		Short: "Mark dates as days off",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				d, err := timecalc.ParseDate(arg)
				if err != nil {
					return err
				}
				res := a.svc.AddDayOff(d)
				if err := res.Err(); err != nil {
					return err
				}
				if res.Data {
					fmt.Fprintf(deps.Stdout, "Added day off %s\n", d)
				} else {
					fmt.Fprintf(deps.Stdout, "%s is already a day off\n", d)
				}
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <date>",
		Aliases: []string{"remove"},
		Short:   "Remove a day off",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := timecalc.ParseDate(args[0])
			if err != nil {
				return err
			}
			res := a.svc.RemoveDayOff(d)
			if err := res.Err(); err != nil {
				return err
			}
			if !res.Data {
				return fmt.Errorf("%s is not a day off", d)
			}
			fmt.Fprintf(deps.Stdout, "Removed day off %s\n", d)
			return nil
		},
	})

	var from, to string
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List days off",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			first, last, err := listWindow(a, from, to)
			if err != nil {
				return err
			}
			res := a.svc.DayOffs(first, last)
			if err := res.Err(); err != nil {
				return err
			}
			if len(res.Data) == 0 {
				fmt.Fprintln(deps.Stdout, "No days off.")
				return nil
			}
			for _, d := range res.Data {
				fmt.Fprintf(deps.Stdout, "%s %s\n", d, d.Weekday().String()[:3])
			}
			return nil
		},
	}
	ls.Flags().StringVar(&from, "from", "", "first date (default January 1)")
	ls.Flags().StringVar(&to, "to", "", "last date (default December 31)")
	cmd.AddCommand(ls)
	return cmd
}

func newVacationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vacation",
		Short: "Manage vacation ranges",
		Long: `Every date of a vacation has a target of zero.

Examples:
  worktrack vacation add 2024-07-01 2024-07-14
  worktrack vacation ls
  worktrack vacation rm 3`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <start> [end]",
		Short: "Add a vacation; a single date is a one-day vacation",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := timecalc.ParseDate(args[0])
			if err != nil {
				return err
			}
			end := start
			if len(args) == 2 {
				if end, err = timecalc.ParseDate(args[1]); err != nil {
					return err
				}
			}
			res := a.svc.AddVacation(start, end)
			if err := res.Err(); err != nil {
				return err
			}
			v := res.Data
			fmt.Fprintf(deps.Stdout, "Added vacation #%d %s to %s (%d days)\n", v.ID, v.Start, v.End, v.Range().Days())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a vacation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid vacation id %q", args[0])
			}
			res := a.svc.RemoveVacation(id)
			if err := res.Err(); err != nil {
				return err
			}
			if !res.Data {
				return fmt.Errorf("vacation #%d not found", id)
			}
			fmt.Fprintf(deps.Stdout, "Removed vacation #%d\n", id)
			return nil
		},
	})

	var from, to string
	ls := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List vacations overlapping a window",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			first, last, err := listWindow(a, from, to)
			if err != nil {
				return err
			}
			res := a.svc.Vacations(first, last)
			if err := res.Err(); err != nil {
				return err
			}
			if len(res.Data) == 0 {
				fmt.Fprintln(deps.Stdout, "No vacations.")
				return nil
			}
			for _, v := range res.Data {
				fmt.Fprintf(deps.Stdout, "#%d %s to %s (%d days)\n", v.ID, v.Start, v.End, v.Range().Days())
			}
			return nil
		},
	}
	ls.Flags().StringVar(&from, "from", "", "first date (default January 1)")
	ls.Flags().StringVar(&to, "to", "", "last date (default December 31)")
	cmd.AddCommand(ls)
	return cmd
}
