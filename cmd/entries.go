package cmd

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktrack/internal/store"
	"github.com/sadopc/worktrack/internal/timecalc"
)

func newEntriesCmd(a *app) *cobra.Command {
	var month string
	var last int
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List tracked entries",
		Long: `List the entries of a month, oldest first, or the most recent entries.

Examples:
  worktrack entries
  worktrack entries --month 2024-03
  worktrack entries --last 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []store.Entry
			if last > 0 {
				res := a.svc.RecentEntries(last)
				if err := res.Err(); err != nil {
					return err
				}
				entries = res.Data
			} else {
				today := a.svc.Today()
				year, m := today.Year, today.Month
				if month != "" {
					var err error
					if year, m, err = parseMonth(month); err != nil {
						return err
					}
				}
				from, to := timecalc.MonthBounds(year, m)
				res := a.svc.Entries(from, to)
				if err := res.Err(); err != nil {
					return err
				}
				entries = res.Data
			}

			if len(entries) == 0 {
				fmt.Fprintln(deps.Stdout, "No entries.")
				return nil
			}
			for i := range entries {
				fmt.Fprintln(deps.Stdout, describe(&entries[i], a.svc.Location()))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month to list as YYYY-MM (default current month)")
	cmd.Flags().IntVarP(&last, "last", "l", 0, "show the N most recent entries instead")
	return cmd
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid entry id %q", s)
	}
	return id, nil
}

func newEditCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the activity, tags or note of an entry",
		Long: `Change descriptive fields of an entry. Times cannot be edited.

Examples:
  worktrack edit 12 --activity "code review"
  worktrack edit 12 --tags "" --note "pairing with Sam"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var patch store.EntryPatch
			for name, dst := range map[string]**string{
				"activity": &patch.Activity,
				"tags":     &patch.Tags,
				"note":     &patch.Note,
			} {
				if cmd.Flags().Changed(name) {
					v, _ := cmd.Flags().GetString(name)
					*dst = &v
				}
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to change: pass --activity, --tags or --note")
			}
			res := a.svc.EditEntry(id, patch)
			if err := res.Err(); err != nil {
				return err
			}
			if !res.Data {
				return fmt.Errorf("entry #%d not found", id)
			}
			fmt.Fprintf(deps.Stdout, "Updated entry #%d\n", id)
			return nil
		},
	}
	cmd.Flags().String("activity", "", "new activity")
	cmd.Flags().String("tags", "", "new comma separated tags")
	cmd.Flags().String("note", "", "new note")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res := a.svc.Entry(id)
			if err := res.Err(); err != nil {
				return err
			}
			if !yes && !confirm(fmt.Sprintf("Delete %s?", describe(res.Data, a.svc.Location()))) {
				fmt.Fprintln(deps.Stdout, "Cancelled.")
				return nil
			}
			if err := a.svc.DeleteEntry(id).Err(); err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "Deleted entry #%d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// confirm asks a yes/no question on stdin; anything but y or yes is no.
func confirm(question string) bool {
	fmt.Fprintf(deps.Stdout, "%s [y/N]: ", question)
	line, _ := bufio.NewReader(deps.Stdin).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
