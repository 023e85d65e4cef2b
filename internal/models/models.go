package models

import "time"

// Category is a business category a pitch belongs to.
type Category string

const (
	CategoryTech          Category = "tech"
	CategoryFood          Category = "food"
	CategoryRetail        Category = "retail"
	CategoryManufacturing Category = "manufacturing"
	CategoryHealth        Category = "health"
	CategoryEducation     Category = "education"
	CategoryEntertainment Category = "entertainment"
	CategoryServices      Category = "services"
)

// AllCategories returns every known category in display order.
func AllCategories() []Category {
	return []Category{
		CategoryTech,
		CategoryFood,
		CategoryRetail,
		CategoryManufacturing,
		CategoryHealth,
		CategoryEducation,
		CategoryEntertainment,
		CategoryServices,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// Pitch is the entrepreneur's business proposal and funding ask.
type Pitch struct {
	ID               string    `json:"id"`
	BusinessName     string    `json:"business_name"`
	Description      string    `json:"description"`
	Category         Category  `json:"category"`
	FundingRequest   float64   `json:"funding_request"`   // dollars
	EquityOffered    float64   `json:"equity_offered"`    // percent, (0, 100]
	CurrentRevenue   float64   `json:"current_revenue"`   // annualized dollars
	ProjectedRevenue float64   `json:"projected_revenue"` // annualized dollars
	MarketSize       float64   `json:"market_size"`       // total addressable market
	Competition      string    `json:"competition"`
	TeamExperience   int       `json:"team_experience"` // 1-10
	CreatedAt        time.Time `json:"created_at"`
}

// InvestorProfile is a static investor persona.
type InvestorProfile struct {
	ID                  string     `json:"id" yaml:"id"`
	Name                string     `json:"name" yaml:"name"`
	Avatar              string     `json:"avatar" yaml:"avatar"`
	Background          string     `json:"background" yaml:"background"`
	NetWorth            float64    `json:"net_worth" yaml:"net_worth"`
	PreferredCategories []Category `json:"preferred_categories" yaml:"preferred_categories"`
	RiskTolerance       float64    `json:"risk_tolerance" yaml:"risk_tolerance"`       // 0-1
	EquityPreference    float64    `json:"equity_preference" yaml:"equity_preference"` // 0-1
	RevenueRequirement  float64    `json:"revenue_requirement" yaml:"revenue_requirement"`
	PersonalityTraits   []string   `json:"personality_traits" yaml:"personality_traits"`
	Catchphrase         string     `json:"catchphrase" yaml:"catchphrase"`
}

// Prefers reports whether the investor favors the given category.
func (p InvestorProfile) Prefers(c Category) bool {
	for _, pc := range p.PreferredCategories {
		if pc == c {
			return true
		}
	}
	return false
}

// Offer is the set of terms an investor proposes.
type Offer struct {
	Amount     float64 `json:"amount"`
	Equity     float64 `json:"equity"` // percent, [0, 50]
	Conditions string  `json:"conditions,omitempty"`
}

// Decision is one investor's verdict on a pitch. Offer is set iff IsOut is false.
type Decision struct {
	InvestorID string  `json:"investor_id"`
	IsOut      bool    `json:"is_out"`
	Offer      *Offer  `json:"offer,omitempty"`
	Reasoning  string  `json:"reasoning"`
	Score      float64 `json:"score"`
}

// CounterOffer is the player's revision of an accepted offer.
type CounterOffer struct {
	Amount float64 `json:"amount"`
	Equity float64 `json:"equity"`
}

// FinalOffer is the offer a deal was resolved against. An empty InvestorID
// means no investor made an offer at all.
type FinalOffer struct {
	InvestorID string  `json:"investor_id,omitempty"`
	Amount     float64 `json:"amount"`
	Equity     float64 `json:"equity"`
	Conditions string  `json:"conditions,omitempty"`
}

// FinalTerms are the agreed terms of a deal; all zero when no deal was made.
type FinalTerms struct {
	Amount    float64 `json:"amount"`
	Equity    float64 `json:"equity"`
	Valuation float64 `json:"valuation"`
}

// Deal is the immutable record of how a pitch ended.
type Deal struct {
	ID                 string        `json:"id"`
	Pitch              Pitch         `json:"pitch"`
	FinalOffer         FinalOffer    `json:"final_offer"`
	Accepted           bool          `json:"accepted"`
	PlayerCounterOffer *CounterOffer `json:"player_counter_offer,omitempty"`
	FinalTerms         FinalTerms    `json:"final_terms"`
	CompletedAt        time.Time     `json:"completed_at"`
}

// PlayerStats are the running totals folded from the deal history.
type PlayerStats struct {
	TotalDeals        int     `json:"total_deals"`
	SuccessfulDeals   int     `json:"successful_deals"`
	TotalMoneyRaised  float64 `json:"total_money_raised"`
	AverageEquity     float64 `json:"average_equity"`
	EntrepreneurScore int     `json:"entrepreneur_score"`
}

// GameData is the persisted player state: deal history plus stats.
type GameData struct {
	History []Deal      `json:"history"`
	Stats   PlayerStats `json:"stats"`
}

// DealAction is what the player chose to do with the decisions.
type DealAction string

const (
	ActionAccept   DealAction = "accept"
	ActionCounter  DealAction = "counter"
	ActionWalkAway DealAction = "walk_away"
)

// EvaluatePitchRequest represents the request body for submitting a pitch.
type EvaluatePitchRequest struct {
	Pitch Pitch  `json:"pitch"`
	Seed  *int64 `json:"seed,omitempty"`
}

// EvaluatePitchResponse is returned after every investor has decided.
type EvaluatePitchResponse struct {
	Pitch         Pitch      `json:"pitch"`
	Decisions     []Decision `json:"decisions"`
	BusinessScore *float64   `json:"business_score,omitempty"`
}

// DealRequest represents the request body for resolving a pitch.
type DealRequest struct {
	Action     DealAction    `json:"action"`
	InvestorID string        `json:"investor_id,omitempty"`
	Counter    *CounterOffer `json:"counter,omitempty"`
	Seed       *int64        `json:"seed,omitempty"`
}

// InvestorsResponse lists the active investor catalog.
type InvestorsResponse struct {
	Investors []InvestorProfile `json:"investors"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
