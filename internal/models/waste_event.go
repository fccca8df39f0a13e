package models

import "time"

const EventWasteLogged = "waste.logged"

// WasteEvent is published after a waste entry is stored. Consumers use it to
// drop cached dashboards and to push live updates.
type WasteEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	EntryID    string    `json:"entry_id"`
	ItemID     string    `json:"item_id"`
	EntryDate  string    `json:"entry_date"`
	Quantity   float64   `json:"quantity"`
	OccurredAt time.Time `json:"occurred_at"`
}
