package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sadopc/worktrack/internal/timecalc"
)

// AddDayOff marks date as a day off. It reports false if it already was one.
func (s *Store) AddDayOff(date timecalc.Date) (bool, error) {
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO day_offs (date, created_at) VALUES (?, ?)`,
		date.String(), nowStamp(),
	)
	if err != nil {
		return false, fmt.Errorf("add day off %s: %w", date, err)
	}
	return affected(res)
}

func (s *Store) RemoveDayOff(date timecalc.Date) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM day_offs WHERE date = ?`, date.String())
	if err != nil {
		return false, fmt.Errorf("remove day off %s: %w", date, err)
	}
	return affected(res)
}

// ListDayOffs returns day offs in [from, to], ordered by date.
func (s *Store) ListDayOffs(from, to timecalc.Date) ([]timecalc.Date, error) {
	rows, err := s.db.Query(
		`SELECT date FROM day_offs WHERE date >= ? AND date <= ? ORDER BY date`,
		from.String(), to.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list day offs: %w", err)
	}
	defer rows.Close()

	var dates []timecalc.Date
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		d, err := timecalc.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("day off row: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (s *Store) AddVacation(r timecalc.DateRange) (*Vacation, error) {
	res, err := s.db.Exec(
		`INSERT INTO vacations (start_date, end_date, created_at) VALUES (?, ?, ?)`,
		r.Start.String(), r.End.String(), nowStamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert vacation: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetVacation(id)
}

func (s *Store) GetVacation(id int64) (*Vacation, error) {
	v, err := scanVacation(s.db.QueryRow(
		`SELECT id, start_date, end_date, created_at FROM vacations WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get vacation %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get vacation %d: %w", id, err)
	}
	return v, nil
}

func (s *Store) RemoveVacation(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM vacations WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("remove vacation %d: %w", id, err)
	}
	return affected(res)
}

// ListVacations returns vacations sharing at least one day with [from, to].
func (s *Store) ListVacations(from, to timecalc.Date) ([]Vacation, error) {
	rows, err := s.db.Query(
		`SELECT id, start_date, end_date, created_at FROM vacations
		 WHERE start_date <= ? AND end_date >= ?
		 ORDER BY start_date, id`,
		to.String(), from.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list vacations: %w", err)
	}
	defer rows.Close()

	var vacations []Vacation
	for rows.Next() {
		v, err := scanVacation(rows)
		if err != nil {
			return nil, err
		}
		vacations = append(vacations, *v)
	}
	return vacations, rows.Err()
}

func scanVacation(row rowScanner) (*Vacation, error) {
	v := &Vacation{}
	var start, end, createdAt string
	if err := row.Scan(&v.ID, &start, &end, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if v.Start, err = timecalc.ParseDate(start); err != nil {
		return nil, fmt.Errorf("vacation %d: %w", v.ID, err)
	}
	if v.End, err = timecalc.ParseDate(end); err != nil {
		return nil, fmt.Errorf("vacation %d: %w", v.ID, err)
	}
	if v.CreatedAt, err = parseStamp(createdAt); err != nil {
		return nil, fmt.Errorf("vacation %d: created_at: %w", v.ID, err)
	}
	return v, nil
}
