package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktrack/internal/timecalc"
)

func newTargetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "target [weekday duration]",
		Short: "Show or set the daily target per weekday",
		Long: `Without arguments the targets of the whole week are shown.

Durations are minutes or Go durations, at most 24h.

Examples:
  worktrack target
  worktrack target friday 6h
  worktrack target sat 0`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or a weekday and a duration")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				wd, err := parseWeekday(args[0])
				if err != nil {
					return err
				}
				minutes, err := parseDuration(args[1])
				if err != nil {
					return err
				}
				if err := a.svc.SetTarget(wd, minutes).Err(); err != nil {
					return err
				}
				fmt.Fprintf(deps.Stdout, "%s target set to %s\n", wd, timecalc.FormatMinutes(minutes))
				return nil
			}

			res := a.svc.Targets()
			if err := res.Err(); err != nil {
				return err
			}
			first := a.svc.WeekStart()
			for i := 0; i < 7; i++ {
				wd := time.Weekday((int(first) + i) % 7)
				fmt.Fprintf(deps.Stdout, "%-10s %s\n", wd, timecalc.FormatMinutes(res.Data.For(wd)))
			}
			fmt.Fprintf(deps.Stdout, "%-10s %s\n", "Total", timecalc.FormatMinutes(res.Data.WeekTotal()))
			return nil
		},
	}
}

func newSettingsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "settings [key value]",
		Short: "Show or change stored settings",
		Long: `Settings live in the database next to the entries.

Keys:
  idle_timeout  seconds without input before the dashboard acts (0 disables)
  idle_action   pause or stop
  week_start    monday or sunday, overrides the config file

Examples:
  worktrack settings
  worktrack settings idle_action stop`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or a key and a value")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				if err := a.svc.SetSetting(args[0], args[1]).Err(); err != nil {
					return err
				}
				fmt.Fprintf(deps.Stdout, "%s = %s\n", args[0], args[1])
				return nil
			}

			res := a.svc.Settings()
			if err := res.Err(); err != nil {
				return err
			}
			timeout, action := a.svc.IdleConfig()
			values := map[string]string{
				"idle_timeout": fmt.Sprint(int(timeout.Seconds())),
				"idle_action":  action,
				"week_start":   lowerWeekday(a.svc.WeekStart()),
			}
			for k, v := range res.Data {
				values[k] = v
			}
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(deps.Stdout, "%-13s %s\n", k, values[k])
			}
			return nil
		},
	}
}

func lowerWeekday(wd time.Weekday) string {
	if wd == time.Sunday {
		return "sunday"
	}
	return "monday"
}
