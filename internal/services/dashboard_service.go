package services

import (
	"context"
	"time"

	"deliwaste/server/internal/store"

	"go.uber.org/zap"
)

// Dashboard is the analytics payload for one view around an anchor day.
type Dashboard struct {
	View        View         `json:"view"`
	AnchorDate  string       `json:"anchor_date"`
	RangeStart  string       `json:"range_start"`
	RangeEnd    string       `json:"range_end"`
	TotalWaste  float64      `json:"total_waste"`
	ByItem      []ItemWaste  `json:"by_item"`
	Trend       []TrendPoint `json:"trend"`
	Comparisons []Comparison `json:"comparisons"`
}

const (
	LabelDayComparison   = "Today vs Yesterday"
	LabelWeekComparison  = "This Week vs Last Week"
	LabelMonthComparison = "This Month vs Last Month"
)

type DashboardService struct {
	store store.Store
	cache ResultCache
	loc   *time.Location
	now   func() time.Time
	log   *zap.Logger
}

func NewDashboardService(st store.Store, cache ResultCache, loc *time.Location, log *zap.Logger) *DashboardService {
	if cache == nil {
		cache = NopCache{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{store: st, cache: cache, loc: loc, now: time.Now, log: log}
}

// Today is the current calendar day in the business timezone.
func (s *DashboardService) Today() time.Time {
	return DateIn(s.now(), s.loc)
}

// BuildDashboard aggregates waste for the view containing anchorDate. An empty
// anchorDate means today. The comparisons always cover the anchor's day, week
// and month, whatever the view.
func (s *DashboardService) BuildDashboard(ctx context.Context, view, anchorDate string) (*Dashboard, error) {
	v, err := ParseView(view)
	if err != nil {
		return nil, err
	}
	anchor := s.Today()
	if anchorDate != "" {
		if anchor, err = ParseDate(anchorDate); err != nil {
			return nil, err
		}
	}
	rng, err := ResolveRange(v, anchor)
	if err != nil {
		return nil, err
	}

	key := "dashboard:" + string(v) + ":" + FormatDate(anchor)
	var cached Dashboard
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	d := &Dashboard{
		View:       v,
		AnchorDate: FormatDate(anchor),
		RangeStart: rng.StartString(),
		RangeEnd:   rng.EndString(),
	}

	err = s.store.View(ctx, func(r store.Reader) error {
		var err error
		if d.TotalWaste, err = SumTotal(ctx, r, rng); err != nil {
			return err
		}
		if d.ByItem, err = SumByItem(ctx, r, rng); err != nil {
			return err
		}
		if d.Trend, err = DailyTrend(ctx, r, rng); err != nil {
			return err
		}
		d.Comparisons, err = s.comparisons(ctx, r, anchor)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, d)
	s.log.Debug("dashboard built",
		zap.String("view", string(v)),
		zap.String("anchor", d.AnchorDate),
		zap.Int("items", len(d.ByItem)))
	return d, nil
}

func (s *DashboardService) comparisons(ctx context.Context, r store.Reader, anchor time.Time) ([]Comparison, error) {
	pairs := []struct {
		label             string
		current, previous DateRange
	}{
		{LabelDayComparison, DayRange(anchor), DayRange(anchor.AddDate(0, 0, -1))},
		{LabelWeekComparison, WeekRange(anchor), PreviousWeek(anchor)},
		{LabelMonthComparison, MonthRange(anchor), PreviousMonth(anchor)},
	}

	out := make([]Comparison, 0, len(pairs))
	for _, p := range pairs {
		cur, err := SumTotal(ctx, r, p.current)
		if err != nil {
			return nil, err
		}
		prev, err := SumTotal(ctx, r, p.previous)
		if err != nil {
			return nil, err
		}
		out = append(out, Compare(p.label, cur, prev))
	}
	return out, nil
}
