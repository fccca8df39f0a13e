package services

import (
	"errors"
	"testing"
	"time"
)

func TestResolveRange(t *testing.T) {
	tests := []struct {
		name      string
		view      View
		anchor    string
		wantStart string
		wantEnd   string
	}{
		{"day", ViewDay, "2024-03-13", "2024-03-13", "2024-03-13"},
		{"week midweek", ViewWeek, "2024-03-13", "2024-03-11", "2024-03-17"},
		{"week on monday", ViewWeek, "2024-03-11", "2024-03-11", "2024-03-17"},
		{"week on sunday", ViewWeek, "2024-03-17", "2024-03-11", "2024-03-17"},
		{"week across year", ViewWeek, "2025-01-01", "2024-12-30", "2025-01-05"},
		{"month leap february", ViewMonth, "2024-02-10", "2024-02-01", "2024-02-29"},
		{"month plain february", ViewMonth, "2023-02-28", "2023-02-01", "2023-02-28"},
		{"month december", ViewMonth, "2024-12-31", "2024-12-01", "2024-12-31"},
		{"month thirty days", ViewMonth, "2024-04-30", "2024-04-01", "2024-04-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveRange(tt.view, mustDate(t, tt.anchor))
			if err != nil {
				t.Fatalf("ResolveRange() error = %v", err)
			}
			if got.StartString() != tt.wantStart || got.EndString() != tt.wantEnd {
				t.Errorf("ResolveRange(%s, %s) = %s..%s, want %s..%s",
					tt.view, tt.anchor, got.StartString(), got.EndString(), tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestWeekRange_AlwaysMondayToSunday(t *testing.T) {
	d := mustDate(t, "2023-12-01")
	for i := 0; i < 120; i++ {
		r := WeekRange(d)
		if r.Start.Weekday() != time.Monday {
			t.Fatalf("WeekRange(%s).Start is %s", FormatDate(d), r.Start.Weekday())
		}
		if r.Days() != 7 {
			t.Fatalf("WeekRange(%s) spans %d days", FormatDate(d), r.Days())
		}
		if d.Before(r.Start) || d.After(r.End) {
			t.Fatalf("WeekRange(%s) = %s..%s does not contain anchor", FormatDate(d), r.StartString(), r.EndString())
		}
		d = d.AddDate(0, 0, 1)
	}
}

func TestResolveRange_UnknownView(t *testing.T) {
	_, err := ResolveRange(View("year"), mustDate(t, "2024-01-01"))
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ResolveRange(year) error = %v, want ErrInvalidArgument", err)
	}
	if _, err := ParseView("fortnight"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ParseView(fortnight) error = %v, want ErrInvalidArgument", err)
	}
	if v, err := ParseView(" Week "); err != nil || v != ViewWeek {
		t.Errorf("ParseView(\" Week \") = %q, %v", v, err)
	}
}

func TestPreviousPeriods(t *testing.T) {
	tests := []struct {
		name      string
		got       DateRange
		wantStart string
		wantEnd   string
	}{
		{"previous week", PreviousWeek(mustDate(t, "2024-03-13")), "2024-03-04", "2024-03-10"},
		{"previous month from march 31", PreviousMonth(mustDate(t, "2024-03-31")), "2024-02-01", "2024-02-29"},
		{"previous month across year", PreviousMonth(mustDate(t, "2025-01-15")), "2024-12-01", "2024-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got.StartString() != tt.wantStart || tt.got.EndString() != tt.wantEnd {
				t.Errorf("got %s..%s, want %s..%s", tt.got.StartString(), tt.got.EndString(), tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"", "2024-3-01", "2024/03/01", "2024-02-30", "20240301", "2024-03-01T00:00:00Z"} {
		if _, err := ParseDate(s); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ParseDate(%q) error = %v, want ErrInvalidArgument", s, err)
		}
	}
	if d, err := ParseDate("2024-02-29"); err != nil || FormatDate(d) != "2024-02-29" {
		t.Errorf("ParseDate(2024-02-29) = %v, %v", d, err)
	}
}

func TestDateIn(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	instant := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	if got := FormatDate(DateIn(instant, loc)); got != "2024-03-11" {
		t.Errorf("DateIn() = %s, want 2024-03-11", got)
	}
	if got := FormatDate(DateIn(instant, time.UTC)); got != "2024-03-10" {
		t.Errorf("DateIn(UTC) = %s, want 2024-03-10", got)
	}
}
