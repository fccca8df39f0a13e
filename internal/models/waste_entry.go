package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DateLayout is the only date format accepted and produced at the boundaries.
const DateLayout = "2006-01-02"

// WasteEntry is one logged waste event. EntryDate is stored as a fixed-width
// YYYY-MM-DD string, so string comparison equals date comparison.
type WasteEntry struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	EntryDate string    `json:"entry_date" gorm:"type:varchar(10);not null;index;index:idx_waste_date_item,priority:1"`
	ItemID    string    `json:"item_id" gorm:"type:varchar(36);not null;index;index:idx_waste_date_item,priority:2"`
	Quantity  float64   `json:"quantity" gorm:"not null"`
	Note      *string   `json:"note" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (WasteEntry) TableName() string {
	return "waste_entries"
}

// BeforeCreate assigns a UUID when the caller did not.
func (w *WasteEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}
