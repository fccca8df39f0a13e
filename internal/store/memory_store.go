package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"deliwaste/server/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is a process-local Store used by tests and by DATABASE_DRIVER=memory.
type MemoryStore struct {
	mu      sync.RWMutex
	items   map[string]models.Item
	entries []memoryEntry
	seq     int64
	now     func() time.Time
}

type memoryEntry struct {
	models.WasteEntry
	seq int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]models.Item),
		now:   time.Now,
	}
}

// View holds the read lock while fn runs, so fn sees a consistent snapshot.
// fn must not call write methods on the same store.
func (s *MemoryStore) View(ctx context.Context, fn func(r Reader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(memoryReader{s: s})
}

func (s *MemoryStore) CreateItem(ctx context.Context, item *models.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(item.Name, "") {
		return fmt.Errorf("create item %q: %w", item.Name, ErrDuplicate)
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if _, ok := s.items[item.ID]; ok {
		return fmt.Errorf("create item %s: %w", item.ID, ErrDuplicate)
	}
	now := s.now()
	item.CreatedAt = now
	item.UpdatedAt = now
	s.items[item.ID] = *item
	return nil
}

func (s *MemoryStore) UpdateItem(ctx context.Context, item *models.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.items[item.ID]
	if !ok {
		return fmt.Errorf("update item %s: %w", item.ID, ErrNotFound)
	}
	if s.nameTaken(item.Name, item.ID) {
		return fmt.Errorf("update item %q: %w", item.Name, ErrDuplicate)
	}
	existing.Name = item.Name
	existing.Unit = item.Unit
	existing.IsActive = item.IsActive
	existing.UpdatedAt = s.now()
	s.items[item.ID] = existing
	*item = existing
	return nil
}

func (s *MemoryStore) CreateWaste(ctx context.Context, entry *models.WasteEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[entry.ItemID]; !ok {
		return fmt.Errorf("item %s: %w", entry.ItemID, ErrNotFound)
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	entry.CreatedAt = s.now()
	s.seq++
	s.entries = append(s.entries, memoryEntry{WasteEntry: *entry, seq: s.seq})
	return nil
}

func (s *MemoryStore) nameTaken(name, exceptID string) bool {
	for id, it := range s.items {
		if id != exceptID && it.Name == name {
			return true
		}
	}
	return false
}

// memoryReader is only valid inside View, while the read lock is held.
type memoryReader struct {
	s *MemoryStore
}

func (r memoryReader) match(e memoryEntry, start, end, itemID string) bool {
	if start != "" && e.EntryDate < start {
		return false
	}
	if end != "" && e.EntryDate > end {
		return false
	}
	return itemID == "" || e.ItemID == itemID
}

func (r memoryReader) SumWaste(ctx context.Context, start, end, itemID string) (float64, error) {
	var total float64
	for _, e := range r.s.entries {
		if r.match(e, start, end, itemID) {
			total += e.Quantity
		}
	}
	return total, nil
}

func (r memoryReader) SumWasteByItem(ctx context.Context, start, end string) ([]ItemTotal, error) {
	sums := make(map[string]float64)
	for _, e := range r.s.entries {
		if r.match(e, start, end, "") {
			sums[e.ItemID] += e.Quantity
		}
	}
	out := make([]ItemTotal, 0, len(sums))
	for id, total := range sums {
		out = append(out, ItemTotal{ItemID: id, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out, nil
}

func (r memoryReader) SumWasteByDate(ctx context.Context, start, end, itemID string) ([]DateTotal, error) {
	sums := make(map[string]float64)
	for _, e := range r.s.entries {
		if r.match(e, start, end, itemID) {
			sums[e.EntryDate] += e.Quantity
		}
	}
	out := make([]DateTotal, 0, len(sums))
	for d, total := range sums {
		out = append(out, DateTotal{Date: d, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r memoryReader) CountWasteDates(ctx context.Context, start, end, itemID string) (int, error) {
	seen := make(map[string]struct{})
	for _, e := range r.s.entries {
		if r.match(e, start, end, itemID) {
			seen[e.EntryDate] = struct{}{}
		}
	}
	return len(seen), nil
}

func (r memoryReader) GetItem(ctx context.Context, id string) (*models.Item, error) {
	it, ok := r.s.items[id]
	if !ok {
		return nil, fmt.Errorf("get item %s: %w", id, ErrNotFound)
	}
	return &it, nil
}

func (r memoryReader) FindItemByName(ctx context.Context, name string) (*models.Item, error) {
	for _, it := range r.s.items {
		if it.Name == name {
			found := it
			return &found, nil
		}
	}
	return nil, fmt.Errorf("find item %q: %w", name, ErrNotFound)
}

func (r memoryReader) ListItems(ctx context.Context, includeInactive bool) ([]models.Item, error) {
	out := make([]models.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		if includeInactive || it.IsActive {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if c := strings.Compare(out[i].Name, out[j].Name); c != 0 {
			return c < 0
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r memoryReader) ListWaste(ctx context.Context, filter WasteFilter) ([]models.WasteEntry, int64, error) {
	var matched []memoryEntry
	for _, e := range r.s.entries {
		if r.match(e, filter.StartDate, filter.EndDate, filter.ItemID) {
			matched = append(matched, e)
		}
	}
	// newest date first, then most recently logged
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].EntryDate != matched[j].EntryDate {
			return matched[i].EntryDate > matched[j].EntryDate
		}
		return matched[i].seq > matched[j].seq
	})

	total := int64(len(matched))
	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	rows := make([]models.WasteEntry, len(matched))
	for i, e := range matched {
		rows[i] = e.WasteEntry
	}
	return rows, total, nil
}
