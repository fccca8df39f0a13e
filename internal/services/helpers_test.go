package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"deliwaste/server/internal/models"
	"deliwaste/server/internal/store"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) error = %v", s, err)
	}
	return d
}

// fixedClock returns noon UTC of the given day.
func fixedClock(t *testing.T, day string) func() time.Time {
	d := mustDate(t, day)
	return func() time.Time { return d.Add(12 * time.Hour) }
}

func addItem(t *testing.T, st store.Store, name string, unit models.Unit, active bool) models.Item {
	t.Helper()
	item := models.Item{Name: name, Unit: unit, IsActive: active}
	if err := st.CreateItem(context.Background(), &item); err != nil {
		t.Fatalf("CreateItem(%s) error = %v", name, err)
	}
	return item
}

func addWaste(t *testing.T, st store.Store, itemID, date string, qty float64) {
	t.Helper()
	entry := models.WasteEntry{ItemID: itemID, EntryDate: date, Quantity: qty}
	if err := st.CreateWaste(context.Background(), &entry); err != nil {
		t.Fatalf("CreateWaste(%s, %s) error = %v", itemID, date, err)
	}
}

// mapCache is a ResultCache that round-trips through JSON like Redis does.
type mapCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	hits        int
	invalidated int
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]byte)}
}

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.data[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false
	}
	c.hits++
	return true
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(value)
	if err == nil {
		c.data[key] = b
	}
}

func (c *mapCache) Invalidate(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.invalidated++
}

// stubReader answers the grouped queries with canned rows, which may point at
// unknown items or carry malformed dates.
type stubReader struct {
	store.Reader
	byItem []store.ItemTotal
	byDate []store.DateTotal
	items  map[string]models.Item
}

func (r stubReader) SumWasteByDate(context.Context, string, string, string) ([]store.DateTotal, error) {
	return r.byDate, nil
}

func (r stubReader) SumWasteByItem(context.Context, string, string) ([]store.ItemTotal, error) {
	return r.byItem, nil
}

func (r stubReader) GetItem(_ context.Context, id string) (*models.Item, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &it, nil
}

type recordingPublisher struct {
	events []models.WasteEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e models.WasteEvent) error {
	p.events = append(p.events, e)
	return p.err
}
