package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/sadopc/worktrack/internal/logger"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list and restore database backups",
		Long: `Backups are consistent copies of the database taken with VACUUM INTO.
Only the newest max_backups files are kept.

Examples:
  worktrack backup create
  worktrack backup ls
  worktrack backup restore worktrack-20240301-090000.db`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create",
		Short: "Back up the database now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.svc.Backup()
			if err := res.Err(); err != nil {
				return err
			}
			fmt.Fprintf(deps.Stdout, "Backup written to %s (%s)\n", res.Data.Path, humanize.Bytes(uint64(res.Data.Size)))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List backups, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res := a.svc.Backups()
			if err := res.Err(); err != nil {
				return err
			}
			if len(res.Data) == 0 {
				fmt.Fprintf(deps.Stdout, "No backups in %s\n", a.backups.Dir())
				return nil
			}
			for _, b := range res.Data {
				fmt.Fprintf(deps.Stdout, "%s  %s  %s\n", b.Name(),
					humanize.Time(b.Timestamp), humanize.Bytes(uint64(b.Size)))
			}
			return nil
		},
	})

	var yes bool
	restore := &cobra.Command{
		Use:         "restore <file>",
		Short:       "Replace the database with a backup",
		Long:        "The current database is saved as a new backup before it is replaced.",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.backups.Resolve(args[0])
			if !yes && !confirm(fmt.Sprintf("Replace %s with %s?", a.cfg.DBPath, path)) {
				fmt.Fprintln(deps.Stdout, "Cancelled.")
				return nil
			}
			saved, err := a.backups.Restore(path)
			if err != nil {
				logger.Error("restore backup", "path", path, "err", err)
				return fmt.Errorf("restore %s: %w", path, err)
			}
			logger.Info("restored backup", "path", path, "saved", saved.Path)
			fmt.Fprintf(deps.Stdout, "Restored %s\n", path)
			if saved.Path != "" {
				fmt.Fprintf(deps.Stdout, "Previous database saved to %s\n", saved.Path)
			}
			return nil
		},
	}
	restore.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	cmd.AddCommand(restore)
	return cmd
}
