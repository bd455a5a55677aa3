package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("event not found")

const eventColumns = `id, time, action, strategy, side, price, entry, qty, size, pnl_pct, cash, portfolio, adaptive, reason`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (Event, error) {
	var (
		e      Event
		action string
	)
	err := s.Scan(
		&e.ID,
		&e.Time,
		&action,
		&e.Strategy,
		&e.Side,
		&e.Price,
		&e.Entry,
		&e.Quantity,
		&e.Size,
		&e.PnLPercent,
		&e.Cash,
		&e.Portfolio,
		&e.Adaptive,
		&e.Reason,
	)
	e.Action = Action(action)
	e.Time = e.Time.UTC()
	return e, err
}

func (j *SQLite) query(q string, args ...any) ([]Event, error) {
	rows, err := j.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEvent returns a single event by ID.
func (j *SQLite) GetEvent(id string) (Event, error) {
	row := j.db.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Event{}, fmt.Errorf("%w: %q", ErrNotFound, id)
		}
		return Event{}, err
	}
	return e, nil
}

// ListEventsBetween returns events whose time is within [start, end).
func (j *SQLite) ListEventsBetween(start, end time.Time) ([]Event, error) {
	return j.query(`
		SELECT `+eventColumns+`
		FROM events
		WHERE time >= ? AND time < ?
		ORDER BY time ASC, id ASC`, start.UTC(), end.UTC())
}

// ListClosesBetween returns only close events within [start, end).
func (j *SQLite) ListClosesBetween(start, end time.Time) ([]Event, error) {
	return j.query(`
		SELECT `+eventColumns+`
		FROM events
		WHERE action LIKE 'CLOSE_%' AND time >= ? AND time < ?
		ORDER BY time ASC, id ASC`, start.UTC(), end.UTC())
}

// Tail returns the last n events in chronological order.
func (j *SQLite) Tail(n int) ([]Event, error) {
	if n <= 0 {
		return nil, nil
	}
	out, err := j.query(`
		SELECT `+eventColumns+`
		FROM events
		ORDER BY time DESC, id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// DayBounds returns [00:00, next 00:00) UTC for the day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}
