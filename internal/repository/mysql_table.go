package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/performance-signup/internal/database"
	"github.com/iliyamo/performance-signup/internal/model"
)

// MySQLTable stores the schedule in the schedule_rows table, one record per
// sheet line.  date_value is set when the organiser entered a real date and
// takes precedence over date_label.
type MySQLTable struct {
	db *sql.DB
}

// NewMySQLTable returns a MySQLTable bound to the provided database.
func NewMySQLTable(db *sql.DB) *MySQLTable { return &MySQLTable{db: db} }

// DB exposes the underlying handle so callers can run health checks.
func (t *MySQLTable) DB() *sql.DB { return t.db }

// ReadTable returns every row ordered by line.
func (t *MySQLTable) ReadTable(ctx context.Context) ([]model.Row, error) {
	const q = `SELECT line, date_label, date_value, guest_artist, name, instrument, piece, duration, remarks
               FROM schedule_rows
               ORDER BY line`
	rs, err := t.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var rows []model.Row
	for rs.Next() {
		var (
			r         model.Row
			dateLabel string
			dateValue sql.NullTime
			guest     string
		)
		if err := rs.Scan(&r.Line, &dateLabel, &dateValue, &guest, &r.Name, &r.Instrument, &r.Piece, &r.Duration, &r.Remarks); err != nil {
			return nil, err
		}
		if dateValue.Valid {
			r.Date = model.DateCell(dateValue.Time)
		} else {
			r.Date = model.TextCell(dateLabel)
		}
		r.GuestArtist = model.TextCell(guest)
		rows = append(rows, r)
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// WriteRow locks the row with SELECT ... FOR UPDATE, verifies it still
// matches expect and updates the slot columns in the same transaction.
func (t *MySQLTable) WriteRow(ctx context.Context, line int, expect, values model.Row) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const sel = `SELECT name, instrument, piece, duration, remarks
                 FROM schedule_rows
                 WHERE line = ?
                 FOR UPDATE`
	var cur model.Row
	err = tx.QueryRowContext(ctx, sel, line).Scan(&cur.Name, &cur.Instrument, &cur.Piece, &cur.Duration, &cur.Remarks)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRowNotFound
	}
	if err != nil {
		return err
	}
	if !cur.SlotEqual(expect) {
		return ErrRowChanged
	}

	const upd = `UPDATE schedule_rows
                 SET name = ?, instrument = ?, piece = ?, duration = ?, remarks = ?, updated_at = ?
                 WHERE line = ?`
	if _, err := tx.ExecContext(ctx, upd,
		values.Name, values.Instrument, values.Piece, values.Duration, values.Remarks,
		time.Now().UTC(), line,
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// EnsureHeader creates the schedule_rows table when it does not exist.
func (t *MySQLTable) EnsureHeader(ctx context.Context) error {
	return database.Migrate(ctx, t.db)
}
