package engine

import (
	"math"

	"shark-tank-api/internal/models"
)

// BusinessScore rates a pitch on its own merits, independent of any investor,
// on a 0-100 scale.
func BusinessScore(pitch models.Pitch) float64 {
	score := 50.0

	switch {
	case pitch.CurrentRevenue > 500_000:
		score += 20
	case pitch.CurrentRevenue > 100_000:
		score += 10
	case pitch.CurrentRevenue > 10_000:
		score += 5
	}

	growth := pitch.ProjectedRevenue / math.Max(pitch.CurrentRevenue, 1)
	switch {
	case growth > 3:
		score += 15
	case growth > 2:
		score += 10
	case growth > 1.5:
		score += 5
	}

	switch {
	case pitch.MarketSize > 1_000_000_000:
		score += 15
	case pitch.MarketSize > 100_000_000:
		score += 10
	case pitch.MarketSize > 10_000_000:
		score += 5
	}

	score += float64(pitch.TeamExperience)

	multiple := revenueMultiple(pitch)
	if multiple <= 5 {
		score += 10
	} else if multiple > 20 {
		score -= 10
	}

	return math.Max(0, math.Min(100, score))
}
