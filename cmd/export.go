package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(a *app) *cobra.Command {
	var month, format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a month report as CSV or JSON",
		Long: `Write the entries, day offs and daily balances of a month to a file.

Examples:
  worktrack export
  worktrack export --month 2024-03 --format json
  worktrack export --output ~/march.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := a.svc.Today()
			year, m := today.Year, today.Month
			if month != "" {
				var err error
				if year, m, err = parseMonth(month); err != nil {
					return err
				}
			}
			res := a.svc.Export(year, m, format, output)
			if err := res.Err(); err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "Exported %s %d to %s\n", m, year, res.Data)
			return nil
		},
	}
	cmd.Flags().StringVarP(&month, "month", "m", "", "month as YYYY-MM (default current month)")
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default worktrack-YYYY-MM.<format>)")
	return cmd
}
