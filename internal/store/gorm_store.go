package store

import (
	"context"
	"errors"
	"fmt"

	"deliwaste/server/internal/models"

	"gorm.io/gorm"
)

// GormStore keeps items and waste entries in a SQL database through GORM.
// It works with both the postgres and the sqlite dialector.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a store over an already migrated database.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// View pins a single pooled connection for fn and returns it to the pool afterwards.
func (s *GormStore) View(ctx context.Context, fn func(r Reader) error) error {
	return s.db.WithContext(ctx).Connection(func(tx *gorm.DB) error {
		return fn(&gormReader{db: tx})
	})
}

func (s *GormStore) CreateItem(ctx context.Context, item *models.Item) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return translateError(err, "create item")
	}
	return nil
}

func (s *GormStore) UpdateItem(ctx context.Context, item *models.Item) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Item
		if err := tx.First(&existing, "id = ?", item.ID).Error; err != nil {
			return translateError(err, "load item")
		}

		err := tx.Model(&existing).Updates(map[string]interface{}{
			"name":      item.Name,
			"unit":      item.Unit,
			"is_active": item.IsActive,
		}).Error
		if err != nil {
			return translateError(err, "update item")
		}

		*item = existing
		return nil
	})
}

func (s *GormStore) CreateWaste(ctx context.Context, entry *models.WasteEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Item{}).Where("id = ?", entry.ItemID).Count(&count).Error; err != nil {
			return fmt.Errorf("check item: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("item %s: %w", entry.ItemID, ErrNotFound)
		}
		if err := tx.Create(entry).Error; err != nil {
			return translateError(err, "create waste entry")
		}
		return nil
	})
}

// translateError maps GORM errors onto the store sentinels.
func translateError(err error, op string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

type gormReader struct {
	db *gorm.DB
}

// q starts a fresh statement on the pinned connection so conditions never
// leak between queries.
func (r *gormReader) q(ctx context.Context) *gorm.DB {
	return r.db.Session(&gorm.Session{NewDB: true, Context: ctx})
}

func (r *gormReader) wasteInRange(ctx context.Context, start, end, itemID string) *gorm.DB {
	q := r.q(ctx).Model(&models.WasteEntry{}).
		Where("entry_date >= ? AND entry_date <= ?", start, end)
	if itemID != "" {
		q = q.Where("item_id = ?", itemID)
	}
	return q
}

func (r *gormReader) SumWaste(ctx context.Context, start, end, itemID string) (float64, error) {
	var total float64
	err := r.wasteInRange(ctx, start, end, itemID).
		Select("COALESCE(SUM(quantity), 0.0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum waste: %w", err)
	}
	return total, nil
}

func (r *gormReader) SumWasteByItem(ctx context.Context, start, end string) ([]ItemTotal, error) {
	var rows []ItemTotal
	err := r.wasteInRange(ctx, start, end, "").
		Select("item_id, COALESCE(SUM(quantity), 0.0) AS total").
		Group("item_id").
		Order("item_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sum waste by item: %w", err)
	}
	return rows, nil
}

func (r *gormReader) SumWasteByDate(ctx context.Context, start, end, itemID string) ([]DateTotal, error) {
	var rows []DateTotal
	err := r.wasteInRange(ctx, start, end, itemID).
		Select("entry_date, COALESCE(SUM(quantity), 0.0) AS total").
		Group("entry_date").
		Order("entry_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sum waste by date: %w", err)
	}
	return rows, nil
}

func (r *gormReader) CountWasteDates(ctx context.Context, start, end, itemID string) (int, error) {
	var n int64
	err := r.wasteInRange(ctx, start, end, itemID).
		Select("COUNT(DISTINCT entry_date)").
		Scan(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count waste dates: %w", err)
	}
	return int(n), nil
}

func (r *gormReader) GetItem(ctx context.Context, id string) (*models.Item, error) {
	var item models.Item
	if err := r.q(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateError(err, "get item")
	}
	return &item, nil
}

func (r *gormReader) FindItemByName(ctx context.Context, name string) (*models.Item, error) {
	var item models.Item
	if err := r.q(ctx).First(&item, "name = ?", name).Error; err != nil {
		return nil, translateError(err, "find item by name")
	}
	return &item, nil
}

func (r *gormReader) ListItems(ctx context.Context, includeInactive bool) ([]models.Item, error) {
	var items []models.Item
	q := r.q(ctx).Order("name ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (r *gormReader) ListWaste(ctx context.Context, filter WasteFilter) ([]models.WasteEntry, int64, error) {
	q := r.q(ctx).Model(&models.WasteEntry{})
	if filter.StartDate != "" {
		q = q.Where("entry_date >= ?", filter.StartDate)
	}
	if filter.EndDate != "" {
		q = q.Where("entry_date <= ?", filter.EndDate)
	}
	if filter.ItemID != "" {
		q = q.Where("item_id = ?", filter.ItemID)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count waste: %w", err)
	}

	var rows []models.WasteEntry
	page := q.Order("entry_date DESC").Order("created_at DESC").Order("id DESC")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	if err := page.Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list waste: %w", err)
	}
	return rows, total, nil
}
