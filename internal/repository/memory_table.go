package repository

import (
	"context"
	"sync"

	"github.com/iliyamo/performance-signup/internal/model"
)

// MemoryTable keeps the schedule in process memory.  It backs local
// development (SCHEDULE_BACKEND=memory) and tests.
type MemoryTable struct {
	mu   sync.RWMutex
	rows []model.Row
}

// NewMemoryTable returns a table seeded with rows.  Line numbers are
// assigned from their position, starting below the header.
func NewMemoryTable(rows ...model.Row) *MemoryTable {
	t := &MemoryTable{rows: make([]model.Row, len(rows))}
	for i, r := range rows {
		r.Line = i + model.HeaderLines + 1
		t.rows[i] = r
	}
	return t
}

// ReadTable returns a copy of every row.
func (t *MemoryTable) ReadTable(ctx context.Context) ([]model.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]model.Row, len(t.rows))
	copy(out, t.rows)
	return out, nil
}

// WriteRow replaces the slot values on line when they still equal expect.
func (t *MemoryTable) WriteRow(ctx context.Context, line int, expect, values model.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.rows {
		if t.rows[i].Line != line {
			continue
		}
		if !t.rows[i].SlotEqual(expect) {
			return ErrRowChanged
		}
		cur := &t.rows[i]
		cur.Name = values.Name
		cur.Instrument = values.Instrument
		cur.Piece = values.Piece
		cur.Duration = values.Duration
		cur.Remarks = values.Remarks
		return nil
	}
	return ErrRowNotFound
}

// EnsureHeader is a no-op; the in-memory table has no physical header.
func (t *MemoryTable) EnsureHeader(ctx context.Context) error {
	return ctx.Err()
}
