package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a countdown lookup matches nothing.
var ErrNotFound = errors.New("not found")

const countdownColumns = `id, name, title, target, button_text, accent, format_above, message, link, archived, created_at, updated_at`

func (s *Store) CreateCountdown(c Countdown) (*Countdown, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO countdowns (name, title, target, button_text, accent, format_above, message, link, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Title, c.Target.UTC().Format(time.RFC3339), c.ButtonText, c.Accent, c.FormatAbove, c.Message, c.Link, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert countdown: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetCountdown(id)
}

func (s *Store) GetCountdown(id int64) (*Countdown, error) {
	row := s.db.QueryRow(`SELECT `+countdownColumns+` FROM countdowns WHERE id = ?`, id)
	c, err := scanCountdown(row)
	if err != nil {
		return nil, fmt.Errorf("get countdown %d: %w", id, err)
	}
	return c, nil
}

func (s *Store) GetCountdownByName(name string) (*Countdown, error) {
	row := s.db.QueryRow(`SELECT `+countdownColumns+` FROM countdowns WHERE name = ?`, name)
	c, err := scanCountdown(row)
	if err != nil {
		return nil, fmt.Errorf("get countdown %q: %w", name, err)
	}
	return c, nil
}

func (s *Store) ListCountdowns(includeArchived bool) ([]Countdown, error) {
	query := `SELECT ` + countdownColumns + ` FROM countdowns`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY target, name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list countdowns: %w", err)
	}
	defer rows.Close()

	var countdowns []Countdown
	for rows.Next() {
		c, err := scanCountdown(rows)
		if err != nil {
			return nil, err
		}
		countdowns = append(countdowns, *c)
	}
	return countdowns, rows.Err()
}

func (s *Store) UpdateCountdown(c Countdown) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`UPDATE countdowns SET name = ?, title = ?, target = ?, button_text = ?, accent = ?, format_above = ?,
		 message = ?, link = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Title, c.Target.UTC().Format(time.RFC3339), c.ButtonText, c.Accent, c.FormatAbove,
		c.Message, c.Link, now, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update countdown %d: %w", c.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update countdown %d: %w", c.ID, ErrNotFound)
	}
	return nil
}

func (s *Store) ArchiveCountdown(id int64) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`UPDATE countdowns SET archived = 1, updated_at = ? WHERE id = ?`, now, id,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCountdown(r rowScanner) (*Countdown, error) {
	c := &Countdown{}
	var target, createdAt, updatedAt string
	var archived int
	err := r.Scan(&c.ID, &c.Name, &c.Title, &target, &c.ButtonText, &c.Accent, &c.FormatAbove,
		&c.Message, &c.Link, &archived, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Archived = archived == 1
	if t, err := time.Parse(time.RFC3339, target); err == nil {
		c.Target = t.Local()
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return c, nil
}
