package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/worktrack/internal/backup"
	"github.com/sadopc/worktrack/internal/config"
	"github.com/sadopc/worktrack/internal/logger"
	"github.com/sadopc/worktrack/internal/service"
	"github.com/sadopc/worktrack/internal/store"
)

// skipStore marks commands that must run with the database closed.
const skipStore = "skip-store"

var version = "dev"

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	version = v
}

type rootOptions struct {
	configPath string
	dbPath     string
	timezone   string
	debug      bool
}

// app is what PersistentPreRunE prepares for every subcommand.
type app struct {
	cfg     config.Config
	store   *store.Store
	svc     *service.Service
	backups *backup.Manager
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
}

// NewRootCmd builds the full command tree. The database opened for a
// command stays open until the returned close function is called.
func NewRootCmd() (*cobra.Command, func()) {
	opts := &rootOptions{}
	a := &app{}

	root := &cobra.Command{
		Use:   "worktrack",
		Short: "Track work time against daily targets",
		Long: `worktrack records what you work on and compares it with your daily targets.

Run without arguments to open the interactive dashboard, or use the
subcommands to track and report from the shell.

Examples:
  worktrack start "code review" --tags review
  worktrack pause
  worktrack stop
  worktrack report --month 2024-03
  worktrack dayoff add 2024-03-29`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(a)
		},
	}
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)
	root.SetIn(deps.Stdin)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default <config dir>/worktrack/config.toml)")
	pf.StringVar(&opts.dbPath, "db", "", "database file, overrides db_path")
	pf.StringVar(&opts.timezone, "tz", "", "IANA timezone for day boundaries, overrides timezone")
	pf.BoolVar(&opts.debug, "debug", false, "log debug output to stderr")

	root.AddCommand(
		newStartCmd(a),
		newPauseCmd(a),
		newResumeCmd(a),
		newStopCmd(a),
		newStatusCmd(a),
		newEntriesCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newReportCmd(a),
		newDayOffCmd(a),
		newVacationCmd(a),
		newTargetCmd(a),
		newSettingsCmd(a),
		newExportCmd(a),
		newBackupCmd(a),
		newConfigCmd(a),
	)
	return root, a.close
}

// open loads configuration, starts logging and opens the store.
func (a *app) open(cmd *cobra.Command, opts *rootOptions) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if opts.timezone != "" {
		cfg.Timezone = opts.timezone
	}
	if opts.debug {
		cfg.Debug = true
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Init(logger.Config{Debug: cfg.Debug, Dir: cfg.LogDirOrDefault(), Stderr: deps.Stderr}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.Debug("command", "name", cmd.CommandPath(), "db", cfg.DBPath)

	a.backups = backup.NewManager(cfg.DBPath, cfg.BackupDirOrDefault(), cfg.MaxBackups)
	if cmd.Annotations[skipStore] == "true" {
		return nil
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "path", cfg.DBPath, "err", err)
		return fmt.Errorf("open database: %w", err)
	}
	loc, _ := cfg.Location()
	a.store = s
	a.svc = service.New(s, service.Options{
		Location:  loc,
		WeekStart: cfg.WeekStartDay(),
		Backups:   a.backups,
		Clock:     deps.Now,
	})
	return nil
}

// now is the current instant in the configured zone.
func (a *app) now() time.Time {
	return deps.Now().In(a.svc.Location())
}

// Execute runs the root command
func Execute() error {
	root, closeApp := NewRootCmd()
	defer closeApp()
	err := root.Execute()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
	}
	return err
}
