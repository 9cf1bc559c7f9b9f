package store

import (
	"fmt"
	"time"
)

func (s *Store) RecordPress(countdownID int64, at time.Time, done bool) (*Press, error) {
	doneInt := 0
	if done {
		doneInt = 1
	}
	res, err := s.db.Exec(
		`INSERT INTO presses (countdown_id, pressed_at, done) VALUES (?, ?, ?)`,
		countdownID, at.UTC().Format(time.RFC3339), doneInt,
	)
	if err != nil {
		return nil, fmt.Errorf("record press: %w", err)
	}
	id, _ := res.LastInsertId()
	return &Press{ID: id, CountdownID: countdownID, PressedAt: at.UTC().Truncate(time.Second), Done: done}, nil
}

func (s *Store) ListPresses(f PressFilter) ([]Press, error) {
	query := `SELECT id, countdown_id, pressed_at, done FROM presses WHERE 1=1`
	var args []any

	if f.CountdownID != nil {
		query += ` AND countdown_id = ?`
		args = append(args, *f.CountdownID)
	}
	if f.From != nil {
		query += ` AND pressed_at >= ?`
		args = append(args, f.From.UTC().Format(time.RFC3339))
	}
	if f.To != nil {
		query += ` AND pressed_at < ?`
		args = append(args, f.To.UTC().Format(time.RFC3339))
	}
	query += ` ORDER BY pressed_at DESC, id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list presses: %w", err)
	}
	defer rows.Close()

	var presses []Press
	for rows.Next() {
		var p Press
		var pressedAt string
		var done int
		if err := rows.Scan(&p.ID, &p.CountdownID, &pressedAt, &done); err != nil {
			return nil, err
		}
		p.PressedAt, _ = time.Parse(time.RFC3339, pressedAt)
		p.Done = done == 1
		presses = append(presses, p)
	}
	return presses, rows.Err()
}

func (s *Store) CountPresses(countdownID int64) (total, early int, err error) {
	err = s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN done = 0 THEN 1 ELSE 0 END), 0)
		FROM presses WHERE countdown_id = ?`, countdownID,
	).Scan(&total, &early)
	if err != nil {
		err = fmt.Errorf("count presses: %w", err)
	}
	return
}

func (s *Store) GetPressSummary(from, to time.Time) ([]DailyPresses, error) {
	rows, err := s.db.Query(`
		SELECT date(p.pressed_at) AS day, p.countdown_id, c.name, c.accent,
		       COUNT(*), COALESCE(SUM(CASE WHEN p.done = 0 THEN 1 ELSE 0 END), 0)
		FROM presses p
		JOIN countdowns c ON c.id = p.countdown_id
		WHERE p.pressed_at >= ? AND p.pressed_at < ?
		GROUP BY day, p.countdown_id
		ORDER BY day, c.name`,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("press summary: %w", err)
	}
	defer rows.Close()

	var summaries []DailyPresses
	for rows.Next() {
		var d DailyPresses
		if err := rows.Scan(&d.Date, &d.CountdownID, &d.CountdownName, &d.Accent, &d.Presses, &d.EarlyPresses); err != nil {
			return nil, err
		}
		summaries = append(summaries, d)
	}
	return summaries, rows.Err()
}
