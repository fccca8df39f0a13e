package services

import (
	"context"
	"fmt"
	"time"

	"deliwaste/server/internal/config"
	"deliwaste/server/internal/models"
	"deliwaste/server/internal/store"

	"github.com/shopspring/decimal"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Estimator names reported with each plan line.
const (
	MethodWeekday         = "weekday"
	MethodTrailingAverage = "trailing_average"
)

// Cook quantity floors applied to any nonzero recommendation.
const (
	minPiecesCook = 1.0
	minKgCook     = 0.1
)

// PlanSettings are the business assumptions behind the plan.
type PlanSettings struct {
	// WasteRate is the share of cooked quantity expected to be thrown away.
	WasteRate           float64
	WeekdayLookbackDays int
	WeekdaySamples      int
	// MinWeekdaySamples is the least weekday history trusted over the trailing average.
	MinWeekdaySamples  int
	FallbackWindowDays int
}

func DefaultPlanSettings() PlanSettings {
	return PlanSettings{
		WasteRate:           config.DefaultWasteRate,
		WeekdayLookbackDays: config.DefaultWeekdayLookbackDays,
		WeekdaySamples:      config.DefaultWeekdaySamples,
		MinWeekdaySamples:   config.DefaultMinWeekdaySamples,
		FallbackWindowDays:  config.DefaultFallbackWindowDays,
	}
}

// PlanSettingsFromConfig copies the already sanitised forecast settings.
func PlanSettingsFromConfig(cfg *config.Config) PlanSettings {
	return PlanSettings{
		WasteRate:           cfg.WasteRate,
		WeekdayLookbackDays: cfg.WeekdayLookbackDays,
		WeekdaySamples:      cfg.WeekdaySamples,
		MinWeekdaySamples:   cfg.MinWeekdaySamples,
		FallbackWindowDays:  cfg.FallbackWindowDays,
	}
}

// ForecastSample is an average and the number of data points behind it.
type ForecastSample struct {
	Average float64
	Count   int
}

// weekdaySample averages the daily totals of the most recent days in the
// lookback window that fall on weekday, newest first.
func weekdaySample(ctx context.Context, r store.Reader, itemID string, today time.Time, weekday time.Weekday, s PlanSettings) (ForecastSample, error) {
	start := today.AddDate(0, 0, -s.WeekdayLookbackDays)
	rows, err := r.SumWasteByDate(ctx, FormatDate(start), FormatDate(today), itemID)
	if err != nil {
		return ForecastSample{}, fmt.Errorf("weekday history for %s: %w", itemID, err)
	}

	var sum float64
	n := 0
	for i := len(rows) - 1; i >= 0 && n < s.WeekdaySamples; i-- {
		d, err := time.Parse(models.DateLayout, rows[i].Date)
		if err != nil {
			return ForecastSample{}, fmt.Errorf("weekday history for %s: stored date %q: %w", itemID, rows[i].Date, err)
		}
		if d.Weekday() == weekday {
			sum += rows[i].Total
			n++
		}
	}
	if n == 0 {
		return ForecastSample{}, nil
	}
	return ForecastSample{Average: sum / float64(n), Count: n}, nil
}

// trailingSample is the flat daily average over the fallback window ending
// today. Count is the number of distinct days with any waste in the window.
func trailingSample(ctx context.Context, r store.Reader, itemID string, today time.Time, s PlanSettings) (ForecastSample, error) {
	start := FormatDate(today.AddDate(0, 0, -(s.FallbackWindowDays - 1)))
	end := FormatDate(today)

	total, err := r.SumWaste(ctx, start, end, itemID)
	if err != nil {
		return ForecastSample{}, fmt.Errorf("trailing total for %s: %w", itemID, err)
	}
	n, err := r.CountWasteDates(ctx, start, end, itemID)
	if err != nil {
		return ForecastSample{}, fmt.Errorf("trailing days for %s: %w", itemID, err)
	}
	return ForecastSample{Average: total / float64(s.FallbackWindowDays), Count: n}, nil
}

// estimateWaste tries the weekday estimator first and falls back to the
// trailing average when the weekday history is too thin.
func estimateWaste(ctx context.Context, r store.Reader, itemID string, today, target time.Time, s PlanSettings) (ForecastSample, string, error) {
	wd, err := weekdaySample(ctx, r, itemID, today, target.Weekday(), s)
	if err != nil {
		return ForecastSample{}, "", err
	}
	if wd.Count >= s.MinWeekdaySamples {
		return wd, MethodWeekday, nil
	}
	fb, err := trailingSample(ctx, r, itemID, today, s)
	if err != nil {
		return ForecastSample{}, "", err
	}
	return fb, MethodTrailingAverage, nil
}

// CookQuantity converts expected waste into what should be cooked, then
// applies the unit floor and rounding.
func CookQuantity(unit models.Unit, predictedWaste, wasteRate float64) float64 {
	if predictedWaste <= 0 || wasteRate <= 0 {
		return 0
	}
	cook := predictedWaste / wasteRate

	if unit == models.UnitPieces {
		if cook < minPiecesCook {
			cook = minPiecesCook
		}
		return roundHalfEven(cook, 0)
	}
	if cook < minKgCook {
		cook = minKgCook
	}
	return roundHalfEven(cook, 2)
}

func ConfidenceFor(samples int) Confidence {
	switch {
	case samples >= 4:
		return ConfidenceHigh
	case samples >= 2:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// roundHalfEven rounds the exact binary value of v, so 2.675 (stored as
// 2.67499...) becomes 2.67. Only exactly representable ties go to even.
func roundHalfEven(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloatWithExponent(v, -exactDigits).RoundBank(places).Float64()
	return f
}

// exactDigits is enough fractional digits to tell a float tie from a near tie.
const exactDigits = 30
