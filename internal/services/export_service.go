package services

import (
	"context"
	"fmt"
	"io"

	"deliwaste/server/internal/store"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	SheetWaste  = "Waste"
	SheetByItem = "By item"
)

// ExportService writes the waste log of a date range as an XLSX workbook.
type ExportService struct {
	store store.Store
	log   *zap.Logger
}

func NewExportService(st store.Store, log *zap.Logger) *ExportService {
	return &ExportService{store: st, log: log}
}

// ExportWaste writes two sheets: every entry in range, newest first, and the
// per-item totals for the same range.
func (s *ExportService) ExportWaste(ctx context.Context, startDate, endDate string, w io.Writer) error {
	start, err := ParseDate(startDate)
	if err != nil {
		return err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return invalidf("end_date %s is before start_date %s", endDate, startDate)
	}
	rng := DateRange{Start: start, End: end}

	var (
		rows   []WasteRow
		byItem []ItemWaste
	)
	err = s.store.View(ctx, func(r store.Reader) error {
		entries, _, err := r.ListWaste(ctx, store.WasteFilter{StartDate: startDate, EndDate: endDate})
		if err != nil {
			return err
		}
		if rows, err = labelRows(ctx, r, entries); err != nil {
			return err
		}
		byItem, err = SumByItem(ctx, r, rng)
		return err
	})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetWaste); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetByItem); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := setRow(f, SheetWaste, 1, []interface{}{"Date", "Item", "Unit", "Quantity", "Note"}); err != nil {
		return err
	}
	for i, row := range rows {
		note := ""
		if row.Note != nil {
			note = *row.Note
		}
		values := []interface{}{row.EntryDate, row.ItemName, string(row.Unit), row.Quantity, note}
		if err := setRow(f, SheetWaste, i+2, values); err != nil {
			return err
		}
	}

	if err := setRow(f, SheetByItem, 1, []interface{}{"Item", "Unit", "Total waste"}); err != nil {
		return err
	}
	for i, it := range byItem {
		if err := setRow(f, SheetByItem, i+2, []interface{}{it.ItemName, string(it.Unit), it.TotalWaste}); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	s.log.Info("waste exported",
		zap.String("start", startDate),
		zap.String("end", endDate),
		zap.Int("rows", len(rows)))
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
