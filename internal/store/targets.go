package store

import (
	"fmt"
	"time"

	"github.com/sadopc/worktrack/internal/timecalc"
)

// GetWeeklyTargets returns the configured minutes per weekday. Missing rows
// count as zero.
func (s *Store) GetWeeklyTargets() (timecalc.WeeklyTargets, error) {
	var targets timecalc.WeeklyTargets
	rows, err := s.db.Query(`SELECT weekday, target_minutes FROM daily_targets ORDER BY weekday`)
	if err != nil {
		return targets, fmt.Errorf("list targets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var wd, minutes int
		if err := rows.Scan(&wd, &minutes); err != nil {
			return targets, err
		}
		if wd >= 0 && wd < len(targets) {
			targets[wd] = minutes
		}
	}
	return targets, rows.Err()
}

func (s *Store) SetDailyTarget(wd time.Weekday, minutes int) error {
	_, err := s.db.Exec(
		`INSERT INTO daily_targets (weekday, target_minutes, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(weekday) DO UPDATE SET target_minutes = excluded.target_minutes, updated_at = excluded.updated_at`,
		int(wd), minutes, nowStamp(),
	)
	if err != nil {
		return fmt.Errorf("set target %s: %w", wd, err)
	}
	return nil
}
