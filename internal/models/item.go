package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Unit is the unit of measure waste for an item is logged in.
type Unit string

const (
	UnitPieces Unit = "pieces"
	UnitKg     Unit = "kg"
)

// Valid reports whether u is one of the supported units.
func (u Unit) Valid() bool {
	return u == UnitPieces || u == UnitKg
}

// Item is a product the deli cooks and may throw away.
type Item struct {
	ID        string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(120);not null;uniqueIndex"`
	Unit      Unit      `json:"unit" gorm:"type:varchar(20);not null"`
	IsActive  bool      `json:"is_active" gorm:"not null"` // no gorm default: false must be persisted as-is
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	WasteEntries []WasteEntry `json:"-" gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE"`
}

func (Item) TableName() string {
	return "items"
}

// BeforeCreate assigns a UUID when the caller did not.
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
