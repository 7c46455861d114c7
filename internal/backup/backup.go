package backup

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// DefaultMaxBackups is the number of backups kept when none is configured
	DefaultMaxBackups = 14
	// FilePrefix is the prefix for backup files
	FilePrefix = "worktrack-"
	// FileSuffix is the suffix for backup files
	FileSuffix = ".db"

	stampLayout = "20060102-150405"
)

// Info describes one backup file.
type Info struct {
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
	Size      int64     `json:"size"`
}

// Name is the file name without directory.
func (i Info) Name() string { return filepath.Base(i.Path) }

// Manager creates, lists and restores copies of the database file.
type Manager struct {
	dbPath     string
	dir        string
	maxBackups int
	now        func() time.Time
}

// NewManager keeps backups in dir, or <db dir>/backups when dir is empty.
func NewManager(dbPath, dir string, maxBackups int) *Manager {
	if dir == "" {
		dir = filepath.Join(filepath.Dir(dbPath), "backups")
	}
	if maxBackups <= 0 {
		maxBackups = DefaultMaxBackups
	}
	return &Manager{dbPath: dbPath, dir: dir, maxBackups: maxBackups, now: time.Now}
}

func (m *Manager) Dir() string     { return m.dir }
func (m *Manager) MaxBackups() int { return m.maxBackups }

// Create writes a consistent copy of the database and prunes old copies.
func (m *Manager) Create() (Info, error) {
	return m.create(true)
}

func (m *Manager) create(rotate bool) (Info, error) {
	if m.dbPath == "" || m.dbPath == ":memory:" {
		return Info{}, errors.New("backup needs a database file")
	}
	if _, err := os.Stat(m.dbPath); err != nil {
		return Info{}, fmt.Errorf("database %s: %w", m.dbPath, err)
	}
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return Info{}, fmt.Errorf("create backup directory: %w", err)
	}

	path, err := m.nextPath()
	if err != nil {
		return Info{}, err
	}
	if err := vacuumInto(m.dbPath, path); err != nil {
		return Info{}, fmt.Errorf("backup database: %w", err)
	}

	if rotate {
		if err := m.rotate(); err != nil {
			return Info{}, fmt.Errorf("rotate backups: %w", err)
		}
	}
	return stat(path)
}

// nextPath picks an unused timestamped file name.
func (m *Manager) nextPath() (string, error) {
	stamp := m.now().Format(stampLayout)
	path := filepath.Join(m.dir, FilePrefix+stamp+FileSuffix)
	for n := 1; fileExists(path); n++ {
		if n > 100 {
			return "", errors.New("could not find a free backup file name")
		}
		path = filepath.Join(m.dir, fmt.Sprintf("%s%s-%d%s", FilePrefix, stamp, n, FileSuffix))
	}
	return path, nil
}

// vacuumInto copies src into dst with SQLite's VACUUM INTO, which produces
// a compact, transactionally consistent file even while WAL is active.
func vacuumInto(src, dst string) error {
	db, err := sql.Open("sqlite", src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&n); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dst); err != nil {
		return err
	}
	return nil
}

// List returns all backups, newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	backups := []Info{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ts, ok := parseName(e.Name())
		if !ok {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.dir, e.Name()),
			Timestamp: ts,
			Size:      fi.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].Path > backups[j].Path
	})
	return backups, nil
}

// parseName extracts the timestamp from worktrack-YYYYMMDD-HHMMSS[-N].db.
func parseName(name string) (time.Time, bool) {
	if !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, FileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), FileSuffix)
	if len(stamp) < len(stampLayout) {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(stampLayout, stamp[:len(stampLayout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.maxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Resolve turns a bare file name into a path inside the backup directory.
func (m *Manager) Resolve(name string) string {
	if filepath.IsAbs(name) || fileExists(name) {
		return name
	}
	return filepath.Join(m.dir, name)
}

// Restore replaces the database with the backup at path. The current
// database is saved first. The store must be closed while this runs.
func (m *Manager) Restore(path string) (saved Info, err error) {
	path = m.Resolve(path)
	if !fileExists(path) {
		return Info{}, fmt.Errorf("backup file does not exist: %s", path)
	}
	if err := verify(path); err != nil {
		return Info{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	if fileExists(m.dbPath) {
		if saved, err = m.create(false); err != nil {
			return Info{}, fmt.Errorf("save current database: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		os.Remove(tmp)
		return saved, fmt.Errorf("copy backup: %w", err)
	}
	// Stale WAL files belong to the database being replaced.
	os.Remove(m.dbPath + "-wal")
	os.Remove(m.dbPath + "-shm")
	if err := os.Rename(tmp, m.dbPath); err != nil {
		os.Remove(tmp)
		return saved, fmt.Errorf("restore database: %w", err)
	}
	return saved, nil
}

func verify(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA quick_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("quick_check: %s", result)
	}
	return nil
}

func stat(path string) (Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	ts, _ := parseName(fi.Name())
	return Info{Path: path, Timestamp: ts, Size: fi.Size()}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
