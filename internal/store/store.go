// Package store is the record store for items and waste entries. The analytics
// services only see it through Reader, borrowed for the duration of one
// computation via Store.View.
package store

import (
	"context"
	"errors"

	"deliwaste/server/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// ItemTotal is the summed waste of one item over a date range.
type ItemTotal struct {
	ItemID string  `gorm:"column:item_id"`
	Total  float64 `gorm:"column:total"`
}

// DateTotal is the summed waste of one calendar day.
type DateTotal struct {
	Date  string  `gorm:"column:entry_date"`
	Total float64 `gorm:"column:total"`
}

// WasteFilter narrows ListWaste. Empty strings mean "no filter".
type WasteFilter struct {
	StartDate string
	EndDate   string
	ItemID    string
	Limit     int
	Offset    int
}

// Reader is the read side of the store. All date bounds are inclusive
// YYYY-MM-DD strings; an empty itemID matches every item.
type Reader interface {
	SumWaste(ctx context.Context, start, end, itemID string) (float64, error)
	SumWasteByItem(ctx context.Context, start, end string) ([]ItemTotal, error)
	// SumWasteByDate returns only dates that have entries, oldest first.
	SumWasteByDate(ctx context.Context, start, end, itemID string) ([]DateTotal, error)
	CountWasteDates(ctx context.Context, start, end, itemID string) (int, error)

	GetItem(ctx context.Context, id string) (*models.Item, error)
	FindItemByName(ctx context.Context, name string) (*models.Item, error)
	// ListItems is ordered by name ascending.
	ListItems(ctx context.Context, includeInactive bool) ([]models.Item, error)
	ListWaste(ctx context.Context, filter WasteFilter) ([]models.WasteEntry, int64, error)
}

// Store hands out scoped readers and performs single-row writes.
type Store interface {
	// View lends fn a Reader and releases it when fn returns, error or not.
	View(ctx context.Context, fn func(r Reader) error) error

	CreateItem(ctx context.Context, item *models.Item) error
	UpdateItem(ctx context.Context, item *models.Item) error
	// CreateWaste fails with ErrNotFound, creating nothing, when the item does not exist.
	CreateWaste(ctx context.Context, entry *models.WasteEntry) error
}
