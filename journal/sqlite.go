package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Record(e Event) error {
	_, err := j.db.Exec(`
		INSERT INTO events
		(id, time, action, strategy, side, price, entry, qty, size, pnl_pct, cash, portfolio, adaptive, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UTC(), string(e.Action), e.Strategy, e.Side,
		e.Price, e.Entry, e.Quantity, e.Size, e.PnLPercent,
		e.Cash, e.Portfolio, e.Adaptive, e.Reason,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
