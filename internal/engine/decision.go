package engine

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"shark-tank-api/internal/models"
)

const (
	// OutThreshold is the score below which an investor passes.
	OutThreshold = 50.0
	// MaxOfferEquity caps the equity any investor asks for.
	MaxOfferEquity = 50.0

	conditionProbability = 0.7
	outSuffix            = "Unfortunately, I'm out."
)

// conditionPool holds the conditions an investor may attach to an offer.
// The empty entry is the "no condition" outcome.
var conditionPool = []string{
	"I want to be involved in key strategic decisions",
	"Monthly board meetings are required",
	"I need right of first refusal on future funding rounds",
	"Let's include a performance milestone",
	"",
}

var printer = message.NewPrinter(language.English)

// Breakdown holds each weighted factor of an investor's score.
type Breakdown struct {
	Category  float64 `json:"category"`
	Revenue   float64 `json:"revenue"`
	Valuation float64 `json:"valuation"`
	Market    float64 `json:"market"`
	Team      float64 `json:"team"`
	Variance  float64 `json:"variance"`
}

// Total sums all factors.
func (b Breakdown) Total() float64 {
	return b.Category + b.Revenue + b.Valuation + b.Market + b.Team + b.Variance
}

// ScorePitch computes the factor breakdown for investor evaluating pitch.
// draw is a uniform value in [0, 1) feeding the persona variance.
func ScorePitch(investor models.InvestorProfile, pitch models.Pitch, draw float64) Breakdown {
	var b Breakdown

	if investor.Prefers(pitch.Category) {
		b.Category = 30
	} else {
		b.Category = -10
	}

	// No floor on the shortfall penalty.
	if investor.RevenueRequirement <= 0 || pitch.CurrentRevenue >= investor.RevenueRequirement {
		b.Revenue = 25
	} else {
		b.Revenue = (pitch.CurrentRevenue/investor.RevenueRequirement)*25 - 15
	}

	multiple := revenueMultiple(pitch)
	switch {
	case multiple <= 10:
		b.Valuation = 20
	case multiple <= 20:
		b.Valuation = 10
	default:
		b.Valuation = -10
	}

	switch {
	case pitch.MarketSize >= 100_000_000:
		b.Market = 15
	case pitch.MarketSize >= 10_000_000:
		b.Market = 10
	default:
		b.Market = 5
	}

	// (experience/10) * 10 points
	b.Team = float64(pitch.TeamExperience)
	b.Variance = (draw - 0.5) * 20 * investor.RiskTolerance

	return b
}

// revenueMultiple is the implied valuation over current revenue. A pitch
// offering no equity has an unbounded multiple.
func revenueMultiple(pitch models.Pitch) float64 {
	if pitch.EquityOffered <= 0 {
		return math.Inf(1)
	}
	return Valuation(pitch.FundingRequest, pitch.EquityOffered) / math.Max(pitch.CurrentRevenue, 1)
}

// Decide runs one investor's evaluation of pitch. The engine draws once from
// rng for persona variance and, when making an offer, up to twice more for
// the offer's condition.
func Decide(investor models.InvestorProfile, pitch models.Pitch, rng RNG) models.Decision {
	b := ScorePitch(investor, pitch, rng.Float64())
	score := b.Total()
	reasoning := explain(investor, pitch, b)

	if score < OutThreshold {
		return models.Decision{
			InvestorID: investor.ID,
			IsOut:      true,
			Reasoning:  reasoning + outSuffix,
			Score:      score,
		}
	}

	equity := math.Max(pitch.EquityOffered*1.2, investor.EquityPreference*100)
	equity = math.Round(math.Max(0, math.Min(equity, MaxOfferEquity)))

	offer := &models.Offer{
		Amount:     pitch.FundingRequest,
		Equity:     equity,
		Conditions: drawCondition(rng),
	}

	return models.Decision{
		InvestorID: investor.ID,
		IsOut:      false,
		Offer:      offer,
		Reasoning:  reasoning + fmt.Sprintf("I'll offer %s for %g%% equity.", FormatMoney(offer.Amount), offer.Equity),
		Score:      score,
	}
}

// DecideAll evaluates pitch against every investor, in catalog order.
func DecideAll(investors []models.InvestorProfile, pitch models.Pitch, rng RNG) []models.Decision {
	decisions := make([]models.Decision, 0, len(investors))
	for _, investor := range investors {
		decisions = append(decisions, Decide(investor, pitch, rng))
	}
	return decisions
}

func drawCondition(rng RNG) string {
	if rng.Float64() >= conditionProbability {
		return ""
	}
	idx := int(rng.Float64() * float64(len(conditionPool)))
	if idx >= len(conditionPool) {
		idx = len(conditionPool) - 1
	}
	return conditionPool[idx]
}

func explain(investor models.InvestorProfile, pitch models.Pitch, b Breakdown) string {
	var sb strings.Builder

	if b.Category > 0 {
		fmt.Fprintf(&sb, "%s loves the %s space. ", investor.Name, pitch.Category)
	} else {
		fmt.Fprintf(&sb, "%s is less familiar with %s. ", investor.Name, pitch.Category)
	}

	if b.Revenue > 15 {
		sb.WriteString("Strong revenue traction is impressive. ")
	} else {
		sb.WriteString("Revenue numbers are concerning. ")
	}

	if b.Valuation > 10 {
		sb.WriteString("Valuation seems reasonable. ")
	} else {
		sb.WriteString("Valuation appears too high. ")
	}

	switch b.Market {
	case 15:
		sb.WriteString("The market opportunity is massive. ")
	case 10:
		sb.WriteString("The market is a decent size. ")
	default:
		sb.WriteString("The market feels small. ")
	}

	switch {
	case pitch.TeamExperience >= 7:
		sb.WriteString("The team has the experience to execute. ")
	case pitch.TeamExperience <= 3:
		sb.WriteString("The team looks too green. ")
	default:
		sb.WriteString("The team shows some promise. ")
	}

	return sb.String()
}

// FormatMoney renders a dollar amount with thousands separators, e.g. $100,000.
// Amounts beyond the int64 range are formatted as floats, not truncated.
func FormatMoney(amount float64) string {
	return printer.Sprintf("$%.0f", math.Round(amount))
}
