package engine

import (
	"time"

	"github.com/google/uuid"

	"shark-tank-api/internal/models"
)

// AcceptOffer records the player taking investorID's offer as-is.
func AcceptOffer(pitch models.Pitch, investorID string, offer models.Offer, now time.Time) models.Deal {
	return models.Deal{
		ID:         uuid.NewString(),
		Pitch:      pitch,
		FinalOffer: finalOffer(investorID, offer),
		Accepted:   true,
		FinalTerms: models.FinalTerms{
			Amount:    offer.Amount,
			Equity:    offer.Equity,
			Valuation: Valuation(offer.Amount, offer.Equity),
		},
		CompletedAt: now,
	}
}

// CounterDeal records a negotiated outcome. FinalOffer keeps the investor's
// original terms whether or not the counter was accepted.
func CounterDeal(pitch models.Pitch, investorID string, offer models.Offer, counter models.CounterOffer, res Resolution, now time.Time) models.Deal {
	c := counter
	deal := models.Deal{
		ID:                 uuid.NewString(),
		Pitch:              pitch,
		FinalOffer:         finalOffer(investorID, offer),
		Accepted:           res.Accepted,
		PlayerCounterOffer: &c,
		CompletedAt:        now,
	}
	if res.Accepted {
		deal.FinalTerms = res.FinalTerms
	}
	return deal
}

// WalkAway records the player leaving without a deal. The best available
// offer is kept for the record; with no offers at all FinalOffer carries no
// investor and the pitch's own ask.
func WalkAway(pitch models.Pitch, decisions []models.Decision, now time.Time) models.Deal {
	fo := models.FinalOffer{
		Amount: pitch.FundingRequest,
		Equity: pitch.EquityOffered,
	}
	if best, ok := BestOffer(decisions); ok {
		fo = finalOffer(best.InvestorID, *best.Offer)
	}
	return models.Deal{
		ID:          uuid.NewString(),
		Pitch:       pitch,
		FinalOffer:  fo,
		Accepted:    false,
		CompletedAt: now,
	}
}

// BestOffer picks the most generous offer: largest amount, then least
// equity, then earliest in decision order.
func BestOffer(decisions []models.Decision) (models.Decision, bool) {
	var (
		best  models.Decision
		found bool
	)
	for _, d := range decisions {
		if d.IsOut || d.Offer == nil {
			continue
		}
		if !found ||
			d.Offer.Amount > best.Offer.Amount ||
			(d.Offer.Amount == best.Offer.Amount && d.Offer.Equity < best.Offer.Equity) {
			best = d
			found = true
		}
	}
	return best, found
}

func finalOffer(investorID string, offer models.Offer) models.FinalOffer {
	return models.FinalOffer{
		InvestorID: investorID,
		Amount:     offer.Amount,
		Equity:     offer.Equity,
		Conditions: offer.Conditions,
	}
}
