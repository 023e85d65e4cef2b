package engine

import (
	"math"

	"shark-tank-api/internal/models"
)

const (
	baseAcceptance  = 0.8
	floorAcceptance = 0.1
	// equity points per unit of lost acceptance probability
	acceptanceSlope = 20.0

	minSuggestedEquity = 5.0
	suggestedDiscount  = 5.0
)

// Resolution is the outcome of a counter-offer.
type Resolution struct {
	Accepted    bool              `json:"accepted"`
	Probability float64           `json:"probability"`
	Draw        float64           `json:"draw"`
	FinalTerms  models.FinalTerms `json:"final_terms"`
}

// AcceptanceProbability is the chance an investor takes a counter asking for
// counterEquity instead of offerEquity. It never drops below 0.1 and is
// capped at 1.
func AcceptanceProbability(offerEquity, counterEquity float64) float64 {
	diff := offerEquity - counterEquity
	p := math.Max(floorAcceptance, baseAcceptance-diff/acceptanceSlope)
	return math.Min(1, p)
}

// ResolveCounter decides whether the investor accepts counter in place of
// offer. A rejected counter ends the negotiation with no deal; it does not
// fall back to the original offer.
func ResolveCounter(offer models.Offer, counter models.CounterOffer, rng RNG) Resolution {
	p := AcceptanceProbability(offer.Equity, counter.Equity)
	draw := rng.Float64()

	res := Resolution{
		Probability: p,
		Draw:        draw,
	}
	if draw < p {
		res.Accepted = true
		res.FinalTerms = models.FinalTerms{
			Amount:    counter.Amount,
			Equity:    counter.Equity,
			Valuation: Valuation(counter.Amount, counter.Equity),
		}
	}
	return res
}

// SuggestCounter proposes a default counter: same money, five points less
// equity, never below 5%.
func SuggestCounter(offer models.Offer) models.CounterOffer {
	return models.CounterOffer{
		Amount: offer.Amount,
		Equity: math.Max(minSuggestedEquity, offer.Equity-suggestedDiscount),
	}
}
