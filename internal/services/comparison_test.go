package services

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		name      string
		current   float64
		previous  float64
		wantDelta float64
		wantPct   *float64
	}{
		{"no baseline", 100, 0, 100, nil},
		{"increase", 150, 100, 50, floatPtr(50)},
		{"decrease", 75, 100, -25, floatPtr(-25)},
		{"tiny baseline", 1, 1e-12, 1 - 1e-12, nil},
		{"both empty", 0, 0, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare("L", tt.current, tt.previous)
			if got.Label != "L" || got.CurrentTotal != tt.current || got.PreviousTotal != tt.previous {
				t.Errorf("Compare() = %+v", got)
			}
			if got.Delta != tt.wantDelta {
				t.Errorf("Delta = %v, want %v", got.Delta, tt.wantDelta)
			}
			switch {
			case tt.wantPct == nil && got.DeltaPct != nil:
				t.Errorf("DeltaPct = %v, want nil", *got.DeltaPct)
			case tt.wantPct != nil && got.DeltaPct == nil:
				t.Errorf("DeltaPct = nil, want %v", *tt.wantPct)
			case tt.wantPct != nil && *got.DeltaPct != *tt.wantPct:
				t.Errorf("DeltaPct = %v, want %v", *got.DeltaPct, *tt.wantPct)
			}
		})
	}
}

func floatPtr(f float64) *float64 { return &f }
