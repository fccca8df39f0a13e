package services

import (
	"context"
	"time"

	"deliwaste/server/internal/models"
	"deliwaste/server/internal/store"

	"go.uber.org/zap"
)

type PlanItem struct {
	ItemID             string      `json:"item_id"`
	ItemName           string      `json:"item_name"`
	Unit               models.Unit `json:"unit"`
	TargetDate         string      `json:"target_date"`
	RecommendedCookQty float64     `json:"recommended_cook_qty"`
	Confidence         Confidence  `json:"confidence"`
	HistoryPointsUsed  int         `json:"history_points_used"`
	PredictedWaste     float64     `json:"predicted_waste"`
	Method             string      `json:"method"`
}

type PlanResult struct {
	TargetDate string     `json:"target_date"`
	Items      []PlanItem `json:"items"`
}

// TomorrowPlanService recommends cook quantities for active items from their
// waste history.
type TomorrowPlanService struct {
	store    store.Store
	cache    ResultCache
	settings PlanSettings
	loc      *time.Location
	now      func() time.Time
	log      *zap.Logger
}

func NewTomorrowPlanService(st store.Store, cache ResultCache, settings PlanSettings, loc *time.Location, log *zap.Logger) *TomorrowPlanService {
	if cache == nil {
		cache = NopCache{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &TomorrowPlanService{store: st, cache: cache, settings: settings, loc: loc, now: time.Now, log: log}
}

func (s *TomorrowPlanService) Today() time.Time {
	return DateIn(s.now(), s.loc)
}

// BuildTomorrowPlan plans targetDate, tomorrow when empty. History always
// ends at today, whatever the target.
func (s *TomorrowPlanService) BuildTomorrowPlan(ctx context.Context, targetDate string) (*PlanResult, error) {
	today := s.Today()
	target := today.AddDate(0, 0, 1)
	if targetDate != "" {
		var err error
		if target, err = ParseDate(targetDate); err != nil {
			return nil, err
		}
	}

	key := "plan:" + FormatDate(target) + ":" + FormatDate(today)
	var cached PlanResult
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	plan := &PlanResult{TargetDate: FormatDate(target), Items: []PlanItem{}}
	err := s.store.View(ctx, func(r store.Reader) error {
		items, err := r.ListItems(ctx, false)
		if err != nil {
			return err
		}
		for _, item := range items {
			sample, method, err := estimateWaste(ctx, r, item.ID, today, target, s.settings)
			if err != nil {
				return err
			}
			plan.Items = append(plan.Items, PlanItem{
				ItemID:             item.ID,
				ItemName:           item.Name,
				Unit:               item.Unit,
				TargetDate:         plan.TargetDate,
				RecommendedCookQty: CookQuantity(item.Unit, sample.Average, s.settings.WasteRate),
				Confidence:         ConfidenceFor(sample.Count),
				HistoryPointsUsed:  sample.Count,
				PredictedWaste:     roundHalfEven(sample.Average, 2),
				Method:             method,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, key, plan)
	s.log.Debug("tomorrow plan built",
		zap.String("target", plan.TargetDate),
		zap.Int("items", len(plan.Items)))
	return plan, nil
}
