package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"shark-tank-api/internal/models"
)

const (
	MinFundingRequest = 10_000
	MinEquityOffered  = 5
	MaxEquityOffered  = 50
	MinMarketSize     = 100_000
	MinTeamExperience = 1
	MaxTeamExperience = 10

	maxTextLength = 2000
)

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ValidatePitch applies the pitch-entry rules. The engine itself assumes
// these hold.
func ValidatePitch(p models.Pitch) error {
	if err := requireText(p.BusinessName, "business_name"); err != nil {
		return err
	}
	if err := requireText(p.Description, "description"); err != nil {
		return err
	}

	if !p.Category.Valid() {
		return &ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("unknown category %q", p.Category),
		}
	}

	if p.FundingRequest < MinFundingRequest {
		return &ValidationError{
			Field:   "funding_request",
			Message: fmt.Sprintf("must be at least $%d", MinFundingRequest),
		}
	}

	if p.EquityOffered < MinEquityOffered || p.EquityOffered > MaxEquityOffered {
		return &ValidationError{
			Field:   "equity_offered",
			Message: fmt.Sprintf("must be between %d%% and %d%%", MinEquityOffered, MaxEquityOffered),
		}
	}

	if p.CurrentRevenue < 0 {
		return &ValidationError{
			Field:   "current_revenue",
			Message: "cannot be negative",
		}
	}

	if p.ProjectedRevenue <= p.CurrentRevenue {
		return &ValidationError{
			Field:   "projected_revenue",
			Message: "must be higher than current revenue",
		}
	}

	if p.MarketSize < MinMarketSize {
		return &ValidationError{
			Field:   "market_size",
			Message: fmt.Sprintf("must be at least $%d", MinMarketSize),
		}
	}

	if err := requireText(p.Competition, "competition"); err != nil {
		return err
	}

	if p.TeamExperience < MinTeamExperience || p.TeamExperience > MaxTeamExperience {
		return &ValidationError{
			Field:   "team_experience",
			Message: fmt.Sprintf("must be between %d and %d", MinTeamExperience, MaxTeamExperience),
		}
	}

	return nil
}

// ValidateCounterOffer checks a player's counter terms.
func ValidateCounterOffer(c models.CounterOffer) error {
	if c.Amount <= 0 {
		return &ValidationError{
			Field:   "counter.amount",
			Message: "must be positive",
		}
	}
	if c.Equity <= 0 || c.Equity > 100 {
		return &ValidationError{
			Field:   "counter.equity",
			Message: "must be within (0, 100]",
		}
	}
	return nil
}

// ValidateDealRequest checks that the request is complete for its action.
func ValidateDealRequest(req models.DealRequest) error {
	switch req.Action {
	case models.ActionAccept:
		if req.InvestorID == "" {
			return &ValidationError{Field: "investor_id", Message: "is required to accept an offer"}
		}
	case models.ActionCounter:
		if req.InvestorID == "" {
			return &ValidationError{Field: "investor_id", Message: "is required to counter an offer"}
		}
		if req.Counter == nil {
			return &ValidationError{Field: "counter", Message: "is required"}
		}
		return ValidateCounterOffer(*req.Counter)
	case models.ActionWalkAway:
	default:
		return &ValidationError{
			Field:   "action",
			Message: fmt.Sprintf("must be one of %s, %s, %s", models.ActionAccept, models.ActionCounter, models.ActionWalkAway),
		}
	}
	return nil
}

func requireText(s, field string) error {
	s = SanitizeString(s)
	if s == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	if len(s) > maxTextLength {
		return &ValidationError{Field: field, Message: fmt.Sprintf("cannot exceed %d characters", maxTextLength)}
	}
	return nil
}

func SanitizeString(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}

// SanitizePitch trims and strips control characters from the free-text fields.
func SanitizePitch(p *models.Pitch) {
	p.BusinessName = SanitizeString(p.BusinessName)
	p.Description = SanitizeString(p.Description)
	p.Competition = SanitizeString(p.Competition)
	p.Category = models.Category(strings.ToLower(SanitizeString(string(p.Category))))
}

func ValidateUUID(id, fieldName string) error {
	if id == "" {
		return &ValidationError{
			Field:   fieldName,
			Message: "is required",
		}
	}

	id = SanitizeString(id)

	if !uuidRegex.MatchString(strings.ToLower(id)) {
		return &ValidationError{
			Field:   fieldName,
			Message: "must be a valid UUID v4",
		}
	}

	return nil
}
