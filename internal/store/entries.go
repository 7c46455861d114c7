package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/worktrack/internal/timecalc"
)

const entryColumns = `id, activity, start_ms, pause_intervals, end_ms, duration_minutes, tags, note, created_at, updated_at`

// pauseRecord is the persisted form of a pause interval, in unix milliseconds.
type pauseRecord struct {
	Start int64  `json:"start"`
	End   *int64 `json:"end,omitempty"`
}

func encodePauses(pauses []timecalc.PauseInterval) (string, error) {
	records := make([]pauseRecord, 0, len(pauses))
	for _, p := range pauses {
		r := pauseRecord{Start: p.Start.UnixMilli()}
		if p.End != nil {
			end := p.End.UnixMilli()
			r.End = &end
		}
		records = append(records, r)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode pauses: %w", err)
	}
	return string(data), nil
}

func decodePauses(raw string) ([]timecalc.PauseInterval, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}
	var records []pauseRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("decode pauses: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	pauses := make([]timecalc.PauseInterval, 0, len(records))
	for _, r := range records {
		p := timecalc.PauseInterval{Start: fromMillis(r.Start)}
		if r.End != nil {
			end := fromMillis(*r.End)
			p.End = &end
		}
		pauses = append(pauses, p)
	}
	return pauses, nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// parseStamp reads a created_at/updated_at column. Empty means unknown.
func parseStamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	e := &Entry{}
	var startMs int64
	var pauses sql.NullString
	var endMs sql.NullInt64
	var duration sql.NullInt64
	var createdAt, updatedAt string

	if err := row.Scan(&e.ID, &e.Activity, &startMs, &pauses, &endMs, &duration, &e.Tags, &e.Note, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.Start = fromMillis(startMs)
	if endMs.Valid {
		t := fromMillis(endMs.Int64)
		e.End = &t
	}
	if duration.Valid {
		d := int(duration.Int64)
		e.DurationMinutes = &d
	}
	// A damaged pause list keeps the entry readable; WorkedMinutes falls back
	// to the timestamps.
	decoded, err := decodePauses(pauses.String)
	if err != nil {
		e.PausesUnavailable = true
	} else {
		e.Pauses = decoded
	}
	if e.CreatedAt, err = parseStamp(createdAt); err != nil {
		return nil, fmt.Errorf("entry %d: created_at: %w", e.ID, err)
	}
	if e.UpdatedAt, err = parseStamp(updatedAt); err != nil {
		return nil, fmt.Errorf("entry %d: updated_at: %w", e.ID, err)
	}
	return e, nil
}

// InsertEntry stores e and returns its new id. Inserting a second unfinished
// entry fails with ErrActiveExists.
func (s *Store) InsertEntry(e *Entry) (int64, error) {
	pauses, err := encodePauses(e.Pauses)
	if err != nil {
		return 0, err
	}
	var endMs, duration any
	if e.End != nil {
		endMs = e.End.UnixMilli()
	}
	if e.DurationMinutes != nil {
		duration = *e.DurationMinutes
	}
	now := nowStamp()
	res, err := s.db.Exec(
		`INSERT INTO entries (activity, start_ms, pause_intervals, end_ms, duration_minutes, tags, note, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Activity, e.Start.UnixMilli(), pauses, endMs, duration, e.Tags, e.Note, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrActiveExists
		}
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}
	return id, nil
}

func (s *Store) GetEntry(id int64) (*Entry, error) {
	e, err := scanEntry(s.db.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	return e, nil
}

// GetActiveEntry returns the unfinished entry, or nil when none exists.
func (s *Store) GetActiveEntry() (*Entry, error) {
	e, err := scanEntry(s.db.QueryRow(
		`SELECT ` + entryColumns + ` FROM entries WHERE end_ms IS NULL ORDER BY start_ms DESC, id DESC LIMIT 1`,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active entry: %w", err)
	}
	return e, nil
}

func (s *Store) ListEntries(f EntryFilter) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE 1=1`
	var args []any

	if f.From != nil {
		query += ` AND start_ms >= ?`
		args = append(args, f.From.UnixMilli())
	}
	if f.To != nil {
		query += ` AND start_ms < ?`
		args = append(args, f.To.UnixMilli())
	}
	if f.Activity != "" {
		query += ` AND activity = ?`
		args = append(args, f.Activity)
	}
	if f.Ascending {
		query += ` ORDER BY start_ms ASC, id ASC`
	} else {
		query += ` ORDER BY start_ms DESC, id DESC`
	}
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// EntriesInRange returns entries whose start lies in [from, to), oldest first.
func (s *Store) EntriesInRange(from, to time.Time) ([]Entry, error) {
	return s.ListEntries(EntryFilter{From: &from, To: &to, Ascending: true})
}

// UpdateEntry applies a label/tags/note edit. It reports whether a row changed.
func (s *Store) UpdateEntry(id int64, p EntryPatch) (bool, error) {
	if p.Empty() {
		return false, nil
	}
	var sets []string
	var args []any
	if p.Activity != nil {
		sets = append(sets, "activity = ?")
		args = append(args, *p.Activity)
	}
	if p.Tags != nil {
		sets = append(sets, "tags = ?")
		args = append(args, *p.Tags)
	}
	if p.Note != nil {
		sets = append(sets, "note = ?")
		args = append(args, *p.Note)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, nowStamp(), id)

	res, err := s.db.Exec(`UPDATE entries SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, fmt.Errorf("update entry %d: %w", id, err)
	}
	return affected(res)
}

// SavePauses replaces the pause list of an unfinished entry.
func (s *Store) SavePauses(id int64, pauses []timecalc.PauseInterval) (bool, error) {
	encoded, err := encodePauses(pauses)
	if err != nil {
		return false, err
	}
	res, err := s.db.Exec(
		`UPDATE entries SET pause_intervals = ?, updated_at = ? WHERE id = ? AND end_ms IS NULL`,
		encoded, nowStamp(), id,
	)
	if err != nil {
		return false, fmt.Errorf("save pauses %d: %w", id, err)
	}
	return affected(res)
}

// FinishEntry writes end, pauses and cached duration in one statement. It
// does nothing if the entry was already finished.
func (s *Store) FinishEntry(id int64, end time.Time, pauses []timecalc.PauseInterval, minutes int) (bool, error) {
	encoded, err := encodePauses(pauses)
	if err != nil {
		return false, err
	}
	res, err := s.db.Exec(
		`UPDATE entries SET end_ms = ?, pause_intervals = ?, duration_minutes = ?, updated_at = ?
		 WHERE id = ? AND end_ms IS NULL`,
		end.UnixMilli(), encoded, minutes, nowStamp(), id,
	)
	if err != nil {
		return false, fmt.Errorf("finish entry %d: %w", id, err)
	}
	return affected(res)
}

func (s *Store) DeleteEntry(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete entry %d: %w", id, err)
	}
	return affected(res)
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
