package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"deliwaste/server/internal/models"
	"deliwaste/server/internal/store"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestExportWaste(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	rolls := addItem(t, st, "Sausage Roll", models.UnitPieces, true)
	curry := addItem(t, st, "Chicken Curry", models.UnitKg, true)
	addWaste(t, st, rolls.ID, "2024-03-01", 3)
	addWaste(t, st, curry.ID, "2024-03-02", 0.5)
	addWaste(t, st, rolls.ID, "2024-03-03", 1)
	addWaste(t, st, rolls.ID, "2024-04-01", 8) // out of range

	var buf bytes.Buffer
	svc := NewExportService(st, zap.NewNop())
	if err := svc.ExportWaste(ctx, "2024-03-01", "2024-03-31", &buf); err != nil {
		t.Fatalf("ExportWaste() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetWaste)
	if err != nil {
		t.Fatalf("GetRows(%s) error = %v", SheetWaste, err)
	}
	if len(rows) != 4 {
		t.Fatalf("%s has %d rows, want header + 3", SheetWaste, len(rows))
	}
	if rows[0][0] != "Date" || rows[1][0] != "2024-03-03" || rows[1][1] != "Sausage Roll" {
		t.Errorf("%s rows = %v", SheetWaste, rows)
	}

	totals, err := f.GetRows(SheetByItem)
	if err != nil {
		t.Fatalf("GetRows(%s) error = %v", SheetByItem, err)
	}
	if len(totals) != 3 || totals[1][0] != "Sausage Roll" || totals[1][2] != "4" || totals[2][0] != "Chicken Curry" {
		t.Errorf("%s rows = %v", SheetByItem, totals)
	}
}

func TestExportWaste_InvalidRange(t *testing.T) {
	svc := NewExportService(store.NewMemoryStore(), zap.NewNop())
	tests := []struct{ start, end string }{
		{"2024-03-10", "2024-03-01"},
		{"", "2024-03-01"},
		{"2024-03-01", "march"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := svc.ExportWaste(context.Background(), tt.start, tt.end, &buf); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ExportWaste(%q, %q) error = %v, want ErrInvalidArgument", tt.start, tt.end, err)
		}
		if buf.Len() != 0 {
			t.Errorf("ExportWaste(%q, %q) wrote %d bytes on error", tt.start, tt.end, buf.Len())
		}
	}
}
