package services

import "math"

const deltaEpsilon = 1e-9

// Comparison of two period totals. DeltaPct is nil without a usable baseline.
type Comparison struct {
	Label         string   `json:"label"`
	CurrentTotal  float64  `json:"current_total"`
	PreviousTotal float64  `json:"previous_total"`
	Delta         float64  `json:"delta"`
	DeltaPct      *float64 `json:"delta_pct"`
}

func Compare(label string, current, previous float64) Comparison {
	c := Comparison{
		Label:         label,
		CurrentTotal:  current,
		PreviousTotal: previous,
		Delta:         current - previous,
	}
	if math.Abs(previous) > deltaEpsilon {
		pct := c.Delta / previous * 100
		c.DeltaPct = &pct
	}
	return c
}
