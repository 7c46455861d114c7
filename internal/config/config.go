package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	// AppName is the application name used for the config directory
	AppName = "worktrack"
	// ConfigFile is the name of the TOML configuration file
	ConfigFile = "config.toml"
	// DBFile is the default database file name
	DBFile = "worktrack.db"
	// DefaultMaxBackups is how many backups are kept when unset
	DefaultMaxBackups = 14
)

// Config is read from config.toml and then overridden by WORKTRACK_*
// environment variables.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `toml:"db_path" env:"WORKTRACK_DB_PATH"`
	// Timezone is an IANA name used to assign entries to calendar days.
	Timezone string `toml:"timezone" env:"WORKTRACK_TIMEZONE"`
	// WeekStart is monday or sunday.
	WeekStart string `toml:"week_start" env:"WORKTRACK_WEEK_START"`
	Debug     bool   `toml:"debug" env:"WORKTRACK_DEBUG"`
	// LogDir defaults to <db dir>/logs.
	LogDir string `toml:"log_dir" env:"WORKTRACK_LOG_DIR"`
	// BackupDir defaults to <db dir>/backups.
	BackupDir  string `toml:"backup_dir" env:"WORKTRACK_BACKUP_DIR"`
	MaxBackups int    `toml:"max_backups" env:"WORKTRACK_MAX_BACKUPS"`
}

// Dir returns <UserConfigDir>/worktrack.
func Dir() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, AppName), nil
}

// DefaultPath returns the location of config.toml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFile), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{
		Timezone:   "Local",
		WeekStart:  "monday",
		MaxBackups: DefaultMaxBackups,
	}
	if dir, err := Dir(); err == nil {
		cfg.DBPath = filepath.Join(dir, DBFile)
	}
	return cfg
}

// LoadDotEnv loads KEY=value pairs from path into the environment. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads the file at path (DefaultPath when empty), applies environment
// overrides and validates the result. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, fmt.Errorf("config path: %w", err)
		}
		path = p
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Normalize trims and lowercases values and fills derived defaults.
func (c *Config) Normalize() {
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	if c.WeekStart == "" {
		c.WeekStart = "monday"
	}
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	c.DBPath = expandHome(strings.TrimSpace(c.DBPath))
	c.LogDir = expandHome(strings.TrimSpace(c.LogDir))
	c.BackupDir = expandHome(strings.TrimSpace(c.BackupDir))
	if c.MaxBackups <= 0 {
		c.MaxBackups = DefaultMaxBackups
	}
}

func (c Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if c.WeekStart != "monday" && c.WeekStart != "sunday" {
		return fmt.Errorf("invalid week_start %q: must be monday or sunday", c.WeekStart)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. "Local" is the system zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// WeekStartDay converts WeekStart to a weekday.
func (c Config) WeekStartDay() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// DataDir is the directory holding the database.
func (c Config) DataDir() string {
	return filepath.Dir(c.DBPath)
}

func (c Config) LogDirOrDefault() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return filepath.Join(c.DataDir(), "logs")
}

func (c Config) BackupDirOrDefault() string {
	if c.BackupDir != "" {
		return c.BackupDir
	}
	return filepath.Join(c.DataDir(), "backups")
}

// Write encodes cfg as TOML to path, creating parent directories.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
