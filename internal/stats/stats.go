package stats

import "shark-tank-api/internal/models"

const (
	// InitialScore is a new player's entrepreneur score.
	InitialScore = 100
	// MaxScore and MinScore bound the entrepreneur score.
	MaxScore = 1000
	MinScore = 0

	successBonus   = 10
	failurePenalty = 5
)

// NewGameData returns the state of a player who has not pitched yet.
func NewGameData() models.GameData {
	return models.GameData{
		History: []models.Deal{},
		Stats: models.PlayerStats{
			EntrepreneurScore: InitialScore,
		},
	}
}

// Apply folds deal into data and returns the new state. data is not modified.
func Apply(data models.GameData, deal models.Deal) models.GameData {
	history := make([]models.Deal, len(data.History), len(data.History)+1)
	copy(history, data.History)
	history = append(history, deal)

	s := data.Stats
	s.TotalDeals++
	if deal.Accepted {
		s.SuccessfulDeals++
		s.TotalMoneyRaised += deal.FinalTerms.Amount
		s.EntrepreneurScore += successBonus
	} else {
		s.EntrepreneurScore -= failurePenalty
	}
	s.EntrepreneurScore = clamp(s.EntrepreneurScore, MinScore, MaxScore)

	if avg, ok := averageEquity(history); ok {
		s.AverageEquity = avg
	}

	return models.GameData{History: history, Stats: s}
}

// Replay rebuilds state from a deal history, oldest first.
func Replay(history []models.Deal) models.GameData {
	data := NewGameData()
	for _, deal := range history {
		data = Apply(data, deal)
	}
	return data
}

func averageEquity(history []models.Deal) (float64, bool) {
	var (
		sum float64
		n   int
	)
	for _, d := range history {
		if d.Accepted {
			sum += d.FinalTerms.Equity
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
