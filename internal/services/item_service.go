package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"deliwaste/server/internal/models"
	"deliwaste/server/internal/store"

	"go.uber.org/zap"
)

const maxItemNameLength = 120

// ErrItemNameTaken is returned when another item already uses the name.
var ErrItemNameTaken = fmt.Errorf("%w: item name already exists", ErrConflict)

type CreateItemInput struct {
	Name     string      `json:"name"`
	Unit     models.Unit `json:"unit"`
	IsActive *bool       `json:"is_active"`
}

type UpdateItemInput struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Unit     models.Unit `json:"unit"`
	IsActive bool        `json:"is_active"`
}

type ItemService struct {
	store store.Store
	cache ResultCache
	log   *zap.Logger
}

func NewItemService(st store.Store, cache ResultCache, log *zap.Logger) *ItemService {
	if cache == nil {
		cache = NopCache{}
	}
	return &ItemService{store: st, cache: cache, log: log}
}

// ListItems returns items ordered by name.
func (s *ItemService) ListItems(ctx context.Context, includeInactive bool) ([]models.Item, error) {
	var items []models.Item
	err := s.store.View(ctx, func(r store.Reader) error {
		var err error
		items, err = r.ListItems(ctx, includeInactive)
		return err
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, nil
}

func (s *ItemService) CreateItem(ctx context.Context, in CreateItemInput) (*models.Item, error) {
	name, err := validateItem(in.Name, in.Unit)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	item := &models.Item{Name: name, Unit: in.Unit, IsActive: true}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, fromStore(err)
	}

	s.cache.Invalidate(ctx)
	s.log.Info("item created", zap.String("item_id", item.ID), zap.String("name", item.Name))
	return item, nil
}

func (s *ItemService) UpdateItem(ctx context.Context, in UpdateItemInput) (*models.Item, error) {
	if strings.TrimSpace(in.ID) == "" {
		return nil, invalidf("id is required")
	}
	name, err := validateItem(in.Name, in.Unit)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, name, in.ID); err != nil {
		return nil, err
	}

	item := &models.Item{ID: in.ID, Name: name, Unit: in.Unit, IsActive: in.IsActive}
	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, fromStore(err)
	}

	s.cache.Invalidate(ctx)
	s.log.Info("item updated", zap.String("item_id", item.ID), zap.Bool("active", item.IsActive))
	return item, nil
}

// ensureNameFree fails with ErrConflict when an item other than exceptID has name.
func (s *ItemService) ensureNameFree(ctx context.Context, name, exceptID string) error {
	return s.store.View(ctx, func(r store.Reader) error {
		existing, err := r.FindItemByName(ctx, name)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if existing.ID != exceptID {
			return ErrItemNameTaken
		}
		return nil
	})
}

func validateItem(rawName string, unit models.Unit) (string, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return "", invalidf("name is required")
	}
	if utf8.RuneCountInString(name) > maxItemNameLength {
		return "", invalidf("name must be at most %d characters", maxItemNameLength)
	}
	if !unit.Valid() {
		return "", invalidf("unit must be pieces or kg, got %q", unit)
	}
	return name, nil
}
