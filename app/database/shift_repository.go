package database

import (
	"fmt"
	"time"

	"github.com/lysyi3m/oscar-feed/app/shift"
)

var _ ShiftRepository = (*ShiftRepo)(nil)

// ShiftRepo stores ended shifts so they stay in the calendar after the portal
// stops listing them. Times are stored as unix seconds.
type ShiftRepo struct {
	db  *DB
	now func() time.Time
}

func NewShiftRepository(db *DB) *ShiftRepo {
	return &ShiftRepo{db: db, now: time.Now}
}

// ArchiveShifts stores the given shifts, ignoring ones already archived, and
// returns how many rows were added.
func (r *ShiftRepo) ArchiveShifts(userName string, shifts []shift.Shift) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO archived_shifts (user_name, name, begin_at, end_at, archived_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare archive statement: %w", err)
	}
	defer stmt.Close()

	archivedAt := r.now().Unix()
	added := 0

	for _, s := range shifts {
		if !s.Valid() {
			continue
		}
		res, err := stmt.Exec(userName, s.Name, s.Begin.Unix(), s.End.Unix(), archivedAt)
		if err != nil {
			return 0, fmt.Errorf("failed to archive shift %s: %w", s, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			added += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit archive: %w", err)
	}

	return added, nil
}

// GetArchivedShifts returns the user's archived shifts ending at or after since,
// ordered by begin time and expressed in loc.
func (r *ShiftRepo) GetArchivedShifts(userName string, since time.Time, loc *time.Location) ([]shift.Shift, error) {
	if loc == nil {
		loc = time.UTC
	}

	rows, err := r.db.Query(`
		SELECT user_name, name, begin_at, end_at, archived_at
		FROM archived_shifts
		WHERE user_name = ? AND end_at >= ?
		ORDER BY begin_at, end_at DESC, name
	`, userName, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get archived shifts: %w", err)
	}
	defer rows.Close()

	var shifts []shift.Shift
	for rows.Next() {
		var (
			row                        ArchivedShift
			beginAt, endAt, archivedAt int64
		)
		if err := rows.Scan(&row.UserName, &row.Name, &beginAt, &endAt, &archivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan archived shift row: %w", err)
		}
		row.BeginAt = time.Unix(beginAt, 0)
		row.EndAt = time.Unix(endAt, 0)
		row.ArchivedAt = time.Unix(archivedAt, 0)

		shifts = append(shifts, row.Shift(loc))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archived shift rows: %w", err)
	}

	return shifts, nil
}

// GetShiftCount returns the number of archived shifts for a user
func (r *ShiftRepo) GetShiftCount(userName string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM archived_shifts WHERE user_name = ?`, userName).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get shift count: %w", err)
	}
	return count, nil
}

// PruneShifts deletes the user's archived shifts that ended before the given time.
func (r *ShiftRepo) PruneShifts(userName string, before time.Time) (int, error) {
	res, err := r.db.Exec(`DELETE FROM archived_shifts WHERE user_name = ? AND end_at < ?`, userName, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune archived shifts: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned shifts: %w", err)
	}
	return int(n), nil
}
