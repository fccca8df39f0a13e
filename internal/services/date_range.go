package services

import (
	"strings"
	"time"

	"deliwaste/server/internal/models"
)

// View is the dashboard granularity.
type View string

const (
	ViewDay   View = "day"
	ViewWeek  View = "week"
	ViewMonth View = "month"
)

// ParseView accepts day, week or month.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewDay, ViewWeek, ViewMonth:
		return v, nil
	default:
		return "", invalidf("invalid view %q (use day/week/month)", s)
	}
}

// DateRange is an inclusive pair of calendar days, both at UTC midnight.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) StartString() string { return FormatDate(r.Start) }
func (r DateRange) EndString() string   { return FormatDate(r.End) }

// Days is the number of calendar days covered, end included.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Shift moves both endpoints by n days.
func (r DateRange) Shift(days int) DateRange {
	return DateRange{Start: r.Start.AddDate(0, 0, days), End: r.End.AddDate(0, 0, days)}
}

// ParseDate parses a strict YYYY-MM-DD string into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(models.DateLayout) {
		return time.Time{}, invalidf("invalid date %q (want YYYY-MM-DD)", s)
	}
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, invalidf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(models.DateLayout)
}

// DateIn returns the calendar day of t as seen in loc, at UTC midnight.
func DateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ResolveRange returns the range of the given view that contains anchor.
func ResolveRange(view View, anchor time.Time) (DateRange, error) {
	switch view {
	case ViewDay:
		return DayRange(anchor), nil
	case ViewWeek:
		return WeekRange(anchor), nil
	case ViewMonth:
		return MonthRange(anchor), nil
	default:
		return DateRange{}, invalidf("invalid view %q (use day/week/month)", view)
	}
}

func DayRange(anchor time.Time) DateRange {
	return DateRange{Start: anchor, End: anchor}
}

// WeekRange is Monday through Sunday around anchor.
func WeekRange(anchor time.Time) DateRange {
	offset := (int(anchor.Weekday()) + 6) % 7 // days since Monday
	start := anchor.AddDate(0, 0, -offset)
	return DateRange{Start: start, End: start.AddDate(0, 0, 6)}
}

func MonthRange(anchor time.Time) DateRange {
	start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	return DateRange{Start: start, End: start.AddDate(0, 1, -1)}
}

// PreviousWeek is the week before the one containing anchor.
func PreviousWeek(anchor time.Time) DateRange {
	return WeekRange(anchor).Shift(-7)
}

// PreviousMonth is the month containing the day before this month's first day.
func PreviousMonth(anchor time.Time) DateRange {
	return MonthRange(MonthRange(anchor).Start.AddDate(0, 0, -1))
}
