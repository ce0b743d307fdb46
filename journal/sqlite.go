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
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordOpen(r OpenRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO opens
		(position_id, account, symbol, intent, units, entry_price, entry_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.PositionID, r.Account, r.Symbol, r.Intent,
		r.Units, r.EntryPrice, r.EntryTime,
	)
	return err
}

func (j *SQLite) RecordClose(r CloseRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO closes
		(position_id, account, symbol, intent, units, entry_price, exit_price, entry_time, exit_time, realized_pl, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PositionID, r.Account, r.Symbol, r.Intent, r.Units,
		r.EntryPrice, r.ExitPrice, r.EntryTime, r.ExitTime, r.RealizedPL, r.Reason,
	)
	return err
}

func (j *SQLite) RecordDecision(r DecisionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO decisions
		(day, position_id, account, symbol, action, reason, phase, days_held, peak_return)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Day, r.PositionID, r.Account, r.Symbol,
		r.Action, r.Reason, r.Phase, r.DaysHeld, r.PeakReturn,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
