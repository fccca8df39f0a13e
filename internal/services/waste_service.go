package services

import (
	"context"
	"math"
	"strings"
	"time"

	"deliwaste/server/internal/models"
	"deliwaste/server/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultWasteListLimit = 50
	MaxWasteListLimit     = 200
)

// EventPublisher delivers events about stored waste to other parts of the system.
type EventPublisher interface {
	Publish(ctx context.Context, event models.WasteEvent) error
}

type LogWasteInput struct {
	EntryDate string  `json:"entry_date"`
	ItemID    string  `json:"item_id"`
	Quantity  float64 `json:"quantity"`
	Note      *string `json:"note"`
}

// WasteQuery filters the waste log. Empty strings disable a filter.
type WasteQuery struct {
	StartDate string
	EndDate   string
	ItemID    string
	Limit     int
	Offset    int
}

type WasteRow struct {
	ID        string      `json:"id"`
	EntryDate string      `json:"entry_date"`
	ItemID    string      `json:"item_id"`
	Quantity  float64     `json:"quantity"`
	Note      *string     `json:"note"`
	ItemName  string      `json:"item_name"`
	Unit      models.Unit `json:"unit"`
}

type WasteList struct {
	Rows  []WasteRow `json:"rows"`
	Total int64      `json:"total"`
}

type WasteService struct {
	store     store.Store
	cache     ResultCache
	publisher EventPublisher
	now       func() time.Time
	log       *zap.Logger
}

// NewWasteService wires the waste log. publisher may be nil.
func NewWasteService(st store.Store, cache ResultCache, publisher EventPublisher, log *zap.Logger) *WasteService {
	if cache == nil {
		cache = NopCache{}
	}
	return &WasteService{store: st, cache: cache, publisher: publisher, now: time.Now, log: log}
}

// LogWaste stores one entry and returns its id.
func (s *WasteService) LogWaste(ctx context.Context, in LogWasteInput) (string, error) {
	if _, err := ParseDate(in.EntryDate); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.ItemID) == "" {
		return "", invalidf("item_id is required")
	}
	if math.IsNaN(in.Quantity) || math.IsInf(in.Quantity, 0) || in.Quantity <= 0 {
		return "", invalidf("quantity must be greater than 0")
	}

	entry := &models.WasteEntry{
		EntryDate: in.EntryDate,
		ItemID:    strings.TrimSpace(in.ItemID),
		Quantity:  in.Quantity,
		Note:      normalizeNote(in.Note),
	}
	if err := s.store.CreateWaste(ctx, entry); err != nil {
		return "", fromStore(err)
	}

	s.cache.Invalidate(ctx)
	s.log.Info("waste logged",
		zap.String("entry_id", entry.ID),
		zap.String("item_id", entry.ItemID),
		zap.String("date", entry.EntryDate),
		zap.Float64("quantity", entry.Quantity))

	if s.publisher != nil {
		event := models.WasteEvent{
			ID:         uuid.New().String(),
			Type:       models.EventWasteLogged,
			EntryID:    entry.ID,
			ItemID:     entry.ItemID,
			EntryDate:  entry.EntryDate,
			Quantity:   entry.Quantity,
			OccurredAt: s.now().UTC(),
		}
		// best effort, the entry is already stored
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Warn("publish waste event failed", zap.String("entry_id", entry.ID), zap.Error(err))
		}
	}
	return entry.ID, nil
}

// ListWaste pages through the log, newest first.
func (s *WasteService) ListWaste(ctx context.Context, q WasteQuery) (*WasteList, error) {
	if q.Limit < 1 || q.Limit > MaxWasteListLimit {
		return nil, invalidf("limit must be between 1 and %d", MaxWasteListLimit)
	}
	if q.Offset < 0 {
		return nil, invalidf("offset must not be negative")
	}
	for _, d := range []string{q.StartDate, q.EndDate} {
		if d == "" {
			continue
		}
		if _, err := ParseDate(d); err != nil {
			return nil, err
		}
	}

	out := &WasteList{Rows: []WasteRow{}}
	err := s.store.View(ctx, func(r store.Reader) error {
		entries, total, err := r.ListWaste(ctx, store.WasteFilter{
			StartDate: q.StartDate,
			EndDate:   q.EndDate,
			ItemID:    q.ItemID,
			Limit:     q.Limit,
			Offset:    q.Offset,
		})
		if err != nil {
			return err
		}
		out.Total = total
		out.Rows, err = labelRows(ctx, r, entries)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// labelRows attaches item name and unit to entries, one lookup per item.
func labelRows(ctx context.Context, r store.Reader, entries []models.WasteEntry) ([]WasteRow, error) {
	type label struct {
		name string
		unit models.Unit
	}
	labels := make(map[string]label)

	rows := make([]WasteRow, 0, len(entries))
	for _, e := range entries {
		l, ok := labels[e.ItemID]
		if !ok {
			name, unit, err := itemLabel(ctx, r, e.ItemID)
			if err != nil {
				return nil, err
			}
			l = label{name: name, unit: unit}
			labels[e.ItemID] = l
		}
		rows = append(rows, WasteRow{
			ID:        e.ID,
			EntryDate: e.EntryDate,
			ItemID:    e.ItemID,
			Quantity:  e.Quantity,
			Note:      e.Note,
			ItemName:  l.name,
			Unit:      l.unit,
		})
	}
	return rows, nil
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
