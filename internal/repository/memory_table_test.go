package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/performance-signup/internal/model"
)

func TestMemoryTable_AssignsLines(t *testing.T) {
	tbl := NewMemoryTable(
		model.Row{Date: model.TextCell("Oct 4")},
		model.Row{},
	)
	rows, err := tbl.ReadTable(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rows[0].Line != 2 || rows[1].Line != 3 {
		t.Errorf("expected lines 2 and 3, got %d and %d", rows[0].Line, rows[1].Line)
	}
}

func TestMemoryTable_ReadReturnsCopy(t *testing.T) {
	tbl := NewMemoryTable(model.Row{Date: model.TextCell("Oct 4")})
	rows, _ := tbl.ReadTable(context.Background())
	rows[0].Name = "mutated"
	again, _ := tbl.ReadTable(context.Background())
	if again[0].Name != "" {
		t.Errorf("ReadTable leaked internal storage")
	}
}

func TestMemoryTable_ConditionalWrite(t *testing.T) {
	ctx := context.Background()
	tbl := NewMemoryTable(model.Row{Date: model.TextCell("Oct 4")})
	rows, _ := tbl.ReadTable(ctx)

	want := rows[0]
	want.Name = "Ana"
	want.Instrument = "Flute"
	if err := tbl.WriteRow(ctx, 2, rows[0], want); err != nil {
		t.Fatalf("first write failed: %v", err)
	}
	// A second writer still holding the stale image must lose.
	other := rows[0]
	other.Name = "Ben"
	if err := tbl.WriteRow(ctx, 2, rows[0], other); !errors.Is(err, ErrRowChanged) {
		t.Fatalf("expected ErrRowChanged, got %v", err)
	}
	if err := tbl.WriteRow(ctx, 99, rows[0], other); !errors.Is(err, ErrRowNotFound) {
		t.Fatalf("expected ErrRowNotFound, got %v", err)
	}
	final, _ := tbl.ReadTable(ctx)
	if final[0].Name != "Ana" || final[0].Date.String() != "Oct 4" {
		t.Errorf("unexpected final row %+v", final[0])
	}
}

func TestMemoryTable_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemoryTable().ReadTable(ctx); err == nil {
		t.Errorf("expected context error")
	}
}
