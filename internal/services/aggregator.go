package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"deliwaste/server/internal/models"
	"deliwaste/server/internal/store"
)

// Placeholder metadata for waste rows whose item is gone.
const (
	UnknownItemName = "Unknown"
	UnknownItemUnit = models.UnitPieces
)

type ItemWaste struct {
	ItemID     string      `json:"item_id"`
	ItemName   string      `json:"item_name"`
	Unit       models.Unit `json:"unit"`
	TotalWaste float64     `json:"total_waste"`
}

type TrendPoint struct {
	Date       string  `json:"date"`
	TotalWaste float64 `json:"total_waste"`
}

// SumTotal is the waste logged in rng; zero when nothing was logged.
func SumTotal(ctx context.Context, r store.Reader, rng DateRange) (float64, error) {
	total, err := r.SumWaste(ctx, rng.StartString(), rng.EndString(), "")
	if err != nil {
		return 0, fmt.Errorf("sum total %s..%s: %w", rng.StartString(), rng.EndString(), err)
	}
	return total, nil
}

// SumByItem groups waste in rng by item, largest total first. Ties are ordered
// by name and then id. Items without waste in rng are left out.
func SumByItem(ctx context.Context, r store.Reader, rng DateRange) ([]ItemWaste, error) {
	rows, err := r.SumWasteByItem(ctx, rng.StartString(), rng.EndString())
	if err != nil {
		return nil, fmt.Errorf("sum by item: %w", err)
	}

	out := make([]ItemWaste, 0, len(rows))
	for _, row := range rows {
		name, unit, err := itemLabel(ctx, r, row.ItemID)
		if err != nil {
			return nil, err
		}
		out = append(out, ItemWaste{
			ItemID:     row.ItemID,
			ItemName:   name,
			Unit:       unit,
			TotalWaste: row.Total,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalWaste != out[j].TotalWaste {
			return out[i].TotalWaste > out[j].TotalWaste
		}
		if out[i].ItemName != out[j].ItemName {
			return out[i].ItemName < out[j].ItemName
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}

// DailyTrend has one point per day of rng, oldest first, zero on days without waste.
func DailyTrend(ctx context.Context, r store.Reader, rng DateRange) ([]TrendPoint, error) {
	rows, err := r.SumWasteByDate(ctx, rng.StartString(), rng.EndString(), "")
	if err != nil {
		return nil, fmt.Errorf("daily trend: %w", err)
	}
	byDate := make(map[string]float64, len(rows))
	for _, row := range rows {
		byDate[row.Date] = row.Total
	}

	out := make([]TrendPoint, 0, rng.Days())
	for d := rng.Start; !d.After(rng.End); d = d.AddDate(0, 0, 1) {
		ds := FormatDate(d)
		out = append(out, TrendPoint{Date: ds, TotalWaste: byDate[ds]})
	}
	return out, nil
}

// itemLabel resolves display metadata, falling back to the placeholder.
func itemLabel(ctx context.Context, r store.Reader, itemID string) (string, models.Unit, error) {
	item, err := r.GetItem(ctx, itemID)
	if errors.Is(err, store.ErrNotFound) {
		return UnknownItemName, UnknownItemUnit, nil
	}
	if err != nil {
		return "", "", fmt.Errorf("load item %s: %w", itemID, err)
	}
	return item.Name, item.Unit, nil
}
