package services

import (
	"context"
	"math"
	"math/rand"
	"time"

	"deliwaste/server/internal/models"
	"deliwaste/server/internal/store"

	"go.uber.org/zap"
)

// DefaultItems is the starter menu created by Seed.
var DefaultItems = []struct {
	Name string
	Unit models.Unit
}{
	{"Chicken Fillet Roll", models.UnitPieces},
	{"Sausage Roll", models.UnitPieces},
	{"Breakfast Roll", models.UnitPieces},
	{"Hot Wedges (tray)", models.UnitPieces},
	{"Chicken Curry", models.UnitKg},
}

const (
	seedEntryChance  = 0.88
	seedWeekendBoost = 1.6
	seedStdDev       = 1.2
	seedMinQuantity  = 0.05
)

type SeedResult struct {
	ItemsCreated   int
	EntriesCreated int
}

// Seeder fills an empty database with demo items and random waste history.
type Seeder struct {
	store store.Store
	rnd   *rand.Rand
	loc   *time.Location
	now   func() time.Time
	log   *zap.Logger
}

func NewSeeder(st store.Store, rnd *rand.Rand, loc *time.Location, log *zap.Logger) *Seeder {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Seeder{store: st, rnd: rnd, loc: loc, now: time.Now, log: log}
}

// Seed creates missing default items, then logs random waste for every item
// on each of the last days days, today included. Weekends waste more.
func (s *Seeder) Seed(ctx context.Context, days int) (SeedResult, error) {
	var res SeedResult
	if days <= 0 {
		return res, invalidf("days must be positive")
	}

	var existing []models.Item
	err := s.store.View(ctx, func(r store.Reader) error {
		var err error
		existing, err = r.ListItems(ctx, true)
		return err
	})
	if err != nil {
		return res, err
	}
	byName := make(map[string]bool, len(existing))
	for _, it := range existing {
		byName[it.Name] = true
	}

	all := existing
	for _, def := range DefaultItems {
		if byName[def.Name] {
			continue
		}
		item := models.Item{Name: def.Name, Unit: def.Unit, IsActive: true}
		if err := s.store.CreateItem(ctx, &item); err != nil {
			return res, fromStore(err)
		}
		all = append(all, item)
		res.ItemsCreated++
	}

	today := DateIn(s.now(), s.loc)
	for back := 0; back < days; back++ {
		day := today.AddDate(0, 0, -back)
		for i, item := range all {
			if s.rnd.Float64() >= seedEntryChance {
				continue
			}
			qty := s.quantity(day, item.Unit, i)
			if qty <= seedMinQuantity {
				continue
			}
			entry := models.WasteEntry{EntryDate: FormatDate(day), ItemID: item.ID, Quantity: qty}
			if err := s.store.CreateWaste(ctx, &entry); err != nil {
				return res, fromStore(err)
			}
			res.EntriesCreated++
		}
	}

	s.log.Info("seed complete",
		zap.Int("items_created", res.ItemsCreated),
		zap.Int("entries_created", res.EntriesCreated),
		zap.Int("days", days))
	return res, nil
}

func (s *Seeder) quantity(day time.Time, unit models.Unit, position int) float64 {
	base := 2.0 + float64((position+1)%3)
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		base *= seedWeekendBoost
	}
	qty := math.Max(0, s.rnd.NormFloat64()*seedStdDev+base)
	if unit == models.UnitKg {
		qty /= 10
	}
	return roundHalfEven(qty, 2)
}
