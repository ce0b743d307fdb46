package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetClose returns the close record for a single position.
func (j *SQLite) GetClose(positionID string) (CloseRecord, error) {
	var rec CloseRecord

	row := j.db.QueryRow(`
		SELECT position_id, account, symbol, intent, units, entry_price, exit_price, entry_time, exit_time, realized_pl, reason
		FROM closes
		WHERE position_id = ?`, positionID)

	err := row.Scan(
		&rec.PositionID,
		&rec.Account,
		&rec.Symbol,
		&rec.Intent,
		&rec.Units,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.EntryTime,
		&rec.ExitTime,
		&rec.RealizedPL,
		&rec.Reason,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return CloseRecord{}, fmt.Errorf("close %q not found", positionID)
		}
		return CloseRecord{}, err
	}
	return rec, nil
}

// ListClosesBetween returns closes whose exit_time is within [start, end).
func (j *SQLite) ListClosesBetween(start, end time.Time) ([]CloseRecord, error) {
	rows, err := j.db.Query(`
		SELECT position_id, account, symbol, intent, units, entry_price, exit_price, entry_time, exit_time, realized_pl, reason
		FROM closes
		WHERE exit_time >= ? AND exit_time < ?
		ORDER BY exit_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CloseRecord
	for rows.Next() {
		var rec CloseRecord
		if err := rows.Scan(
			&rec.PositionID,
			&rec.Account,
			&rec.Symbol,
			&rec.Intent,
			&rec.Units,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.EntryTime,
			&rec.ExitTime,
			&rec.RealizedPL,
			&rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListDecisionsBetween returns decision records with day within [start, end).
func (j *SQLite) ListDecisionsBetween(start, end time.Time) ([]DecisionRecord, error) {
	rows, err := j.db.Query(`
		SELECT day, position_id, account, symbol, action, reason, phase, days_held, peak_return
		FROM decisions
		WHERE day >= ? AND day < ?
		ORDER BY day ASC, position_id ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		if err := rows.Scan(
			&rec.Day,
			&rec.PositionID,
			&rec.Account,
			&rec.Symbol,
			&rec.Action,
			&rec.Reason,
			&rec.Phase,
			&rec.DaysHeld,
			&rec.PeakReturn,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
