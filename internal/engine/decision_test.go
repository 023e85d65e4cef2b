package engine

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"shark-tank-api/internal/models"
)

func scenarioPitch() models.Pitch {
	return models.Pitch{
		ID:               "pitch-1",
		BusinessName:     "Widgetly",
		Description:      "Widgets as a service",
		Category:         models.CategoryTech,
		FundingRequest:   100000,
		EquityOffered:    10,
		CurrentRevenue:   60000,
		ProjectedRevenue: 200000,
		MarketSize:       200000000,
		Competition:      "Nobody serious",
		TeamExperience:   8,
	}
}

func techInvestor() models.InvestorProfile {
	return models.InvestorProfile{
		ID:                  "tech_mogul",
		Name:                "Alex Chen",
		PreferredCategories: []models.Category{models.CategoryTech},
		RiskTolerance:       0,
		EquityPreference:    0.25,
		RevenueRequirement:  50000,
	}
}

func TestDecide_ScenarioA_Offer(t *testing.T) {
	d := Decide(techInvestor(), scenarioPitch(), NewSequenceRNG(0.5, 0.9))

	if d.IsOut {
		t.Fatalf("Expected an offer, got out with score %.2f", d.Score)
	}
	if d.Score < OutThreshold {
		t.Errorf("Expected score >= %v, got %v", OutThreshold, d.Score)
	}
	if d.Offer == nil {
		t.Fatal("Expected offer to be present")
	}
	if d.Offer.Amount != 100000 {
		t.Errorf("Expected amount 100000, got %v", d.Offer.Amount)
	}
	if d.Offer.Equity != 25 {
		t.Errorf("Expected equity 25, got %v", d.Offer.Equity)
	}
	// 0.9 >= 0.7 means no condition was drawn
	if d.Offer.Conditions != "" {
		t.Errorf("Expected no conditions, got %q", d.Offer.Conditions)
	}
	if !strings.HasSuffix(d.Reasoning, "I'll offer $100,000 for 25% equity.") {
		t.Errorf("Unexpected reasoning: %s", d.Reasoning)
	}
	if !strings.Contains(d.Reasoning, "Alex Chen loves the tech space.") {
		t.Errorf("Expected category praise in reasoning: %s", d.Reasoning)
	}
}

func TestDecide_ScenarioB_Out(t *testing.T) {
	investor := techInvestor()
	investor.PreferredCategories = []models.Category{models.CategoryFood}
	investor.RevenueRequirement = 500000

	d := Decide(investor, scenarioPitch(), NewSequenceRNG(0.5))

	if !d.IsOut {
		t.Fatalf("Expected investor to be out, got offer %+v", d.Offer)
	}
	if d.Offer != nil {
		t.Errorf("Expected no offer when out, got %+v", d.Offer)
	}
	if !strings.HasSuffix(d.Reasoning, "Unfortunately, I'm out.") {
		t.Errorf("Expected rejection suffix, got %s", d.Reasoning)
	}
	if !strings.Contains(d.Reasoning, "Revenue numbers are concerning.") {
		t.Errorf("Expected revenue concern in reasoning: %s", d.Reasoning)
	}
}

func TestScorePitch_Factors(t *testing.T) {
	b := ScorePitch(techInvestor(), scenarioPitch(), 0.5)

	want := Breakdown{Category: 30, Revenue: 25, Valuation: 10, Market: 15, Team: 8, Variance: 0}
	if b != want {
		t.Errorf("Expected %+v, got %+v", want, b)
	}
	if b.Total() != 88 {
		t.Errorf("Expected total 88, got %v", b.Total())
	}
}

func TestScorePitch_RevenueBoundary(t *testing.T) {
	pitch := scenarioPitch()
	pitch.CurrentRevenue = 50000

	b := ScorePitch(techInvestor(), pitch, 0.5)
	if b.Revenue != 25 {
		t.Errorf("Expected revenue score 25 at the requirement, got %v", b.Revenue)
	}

	pitch.CurrentRevenue = 25000
	b = ScorePitch(techInvestor(), pitch, 0.5)
	if b.Revenue != -2.5 {
		t.Errorf("Expected revenue score -2.5 at half the requirement, got %v", b.Revenue)
	}

	pitch.CurrentRevenue = 0
	b = ScorePitch(techInvestor(), pitch, 0.5)
	if b.Revenue != -15 {
		t.Errorf("Expected revenue score -15 with no revenue, got %v", b.Revenue)
	}
}

func TestScorePitch_CategoryMonotonic(t *testing.T) {
	investor := techInvestor()
	investor.RiskTolerance = 0.8

	for _, draw := range []float64{0, 0.25, 0.5, 0.99} {
		matching := ScorePitch(investor, scenarioPitch(), draw).Total()

		pitch := scenarioPitch()
		pitch.Category = models.CategoryRetail
		other := ScorePitch(investor, pitch, draw).Total()

		if matching <= other {
			t.Errorf("draw %v: expected matching category to score higher (%v <= %v)", draw, matching, other)
		}
	}
}

func TestScorePitch_ValuationBands(t *testing.T) {
	tests := []struct {
		name    string
		revenue float64
		equity  float64
		want    float64
	}{
		{"multiple of 10", 100000, 10, 20},
		{"multiple of 20", 50000, 10, 10},
		{"multiple above 20", 10000, 10, -10},
		{"no revenue", 0, 10, -10},
		{"zero equity", 60000, 0, -10},
		{"negative equity", 60000, -5, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pitch := scenarioPitch()
			pitch.CurrentRevenue = tt.revenue
			pitch.EquityOffered = tt.equity

			b := ScorePitch(techInvestor(), pitch, 0.5)
			if b.Valuation != tt.want {
				t.Errorf("Expected valuation score %v, got %v", tt.want, b.Valuation)
			}
		})
	}
}

func TestScorePitch_MarketBands(t *testing.T) {
	tests := []struct {
		market float64
		want   float64
	}{
		{100_000_000, 15},
		{99_999_999, 10},
		{10_000_000, 10},
		{9_999_999, 5},
	}

	for _, tt := range tests {
		pitch := scenarioPitch()
		pitch.MarketSize = tt.market
		if got := ScorePitch(techInvestor(), pitch, 0.5).Market; got != tt.want {
			t.Errorf("market %v: expected %v, got %v", tt.market, tt.want, got)
		}
	}
}

func TestScorePitch_VarianceScalesWithRisk(t *testing.T) {
	investor := techInvestor()
	investor.RiskTolerance = 1

	if v := ScorePitch(investor, scenarioPitch(), 0).Variance; v != -10 {
		t.Errorf("Expected variance -10 at draw 0, got %v", v)
	}
	if v := ScorePitch(investor, scenarioPitch(), 0.75).Variance; v != 5 {
		t.Errorf("Expected variance 5 at draw 0.75, got %v", v)
	}

	investor.RiskTolerance = 0.5
	if v := ScorePitch(investor, scenarioPitch(), 0).Variance; v != -5 {
		t.Errorf("Expected variance -5 at half risk, got %v", v)
	}
}

func TestDecide_EquityClampedToFifty(t *testing.T) {
	pitch := scenarioPitch()
	pitch.EquityOffered = 45 // 45 * 1.2 = 54
	pitch.CurrentRevenue = 1_000_000

	d := Decide(techInvestor(), pitch, NewSequenceRNG(0.5, 0.9))
	if d.IsOut {
		t.Fatalf("Expected an offer, got out: %s", d.Reasoning)
	}
	if d.Offer.Equity != MaxOfferEquity {
		t.Errorf("Expected equity clamped to %v, got %v", MaxOfferEquity, d.Offer.Equity)
	}
}

func TestDecide_EquityRounded(t *testing.T) {
	pitch := scenarioPitch()
	pitch.EquityOffered = 23 // 27.6 -> 28
	pitch.CurrentRevenue = 1_000_000

	d := Decide(techInvestor(), pitch, NewSequenceRNG(0.5, 0.9))
	if d.IsOut {
		t.Fatalf("Expected an offer, got out: %s", d.Reasoning)
	}
	if d.Offer.Equity != 28 {
		t.Errorf("Expected equity 28, got %v", d.Offer.Equity)
	}
}

func TestDecide_ConditionDrawn(t *testing.T) {
	// 0.5 variance, 0.1 < 0.7 attaches a condition, 0.2 * 5 picks index 1
	d := Decide(techInvestor(), scenarioPitch(), NewSequenceRNG(0.5, 0.1, 0.2))
	if d.Offer == nil {
		t.Fatal("Expected offer")
	}
	if d.Offer.Conditions != "Monthly board meetings are required" {
		t.Errorf("Unexpected condition %q", d.Offer.Conditions)
	}

	// index 4 is the no-condition entry
	d = Decide(techInvestor(), scenarioPitch(), NewSequenceRNG(0.5, 0.1, 0.95))
	if d.Offer.Conditions != "" {
		t.Errorf("Expected no-condition entry, got %q", d.Offer.Conditions)
	}
}

func TestDecide_OfferIffNotOut(t *testing.T) {
	rng := NewRNG(7)
	categories := models.AllCategories()

	for i := 0; i < 500; i++ {
		investor := models.InvestorProfile{
			ID:                  "p",
			Name:                "P",
			PreferredCategories: []models.Category{categories[i%len(categories)]},
			RiskTolerance:       rng.Float64(),
			EquityPreference:    rng.Float64(),
			RevenueRequirement:  rng.Float64() * 300000,
		}
		pitch := models.Pitch{
			Category:         categories[(i/3)%len(categories)],
			FundingRequest:   10000 + rng.Float64()*1_000_000,
			EquityOffered:    5 + rng.Float64()*45,
			CurrentRevenue:   rng.Float64() * 800000,
			ProjectedRevenue: 1_000_000,
			MarketSize:       rng.Float64() * 500_000_000,
			TeamExperience:   1 + i%10,
		}

		d := Decide(investor, pitch, rng)
		if d.IsOut == (d.Offer != nil) {
			t.Fatalf("iteration %d: isOut=%v but offer=%+v", i, d.IsOut, d.Offer)
		}
		if d.Offer != nil && (d.Offer.Equity < 0 || d.Offer.Equity > 50) {
			t.Fatalf("iteration %d: equity %v out of range", i, d.Offer.Equity)
		}
	}
}

func TestDecide_Deterministic(t *testing.T) {
	investor := techInvestor()
	investor.RiskTolerance = 0.8

	first := DecideAll([]models.InvestorProfile{investor, investor}, scenarioPitch(), NewRNG(42))
	second := DecideAll([]models.InvestorProfile{investor, investor}, scenarioPitch(), NewRNG(42))

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical decisions for the same seed:\n%+v\n%+v", first, second)
	}
}

func TestDecideAll_CatalogOrder(t *testing.T) {
	a := techInvestor()
	b := techInvestor()
	b.ID = "generalist"
	b.PreferredCategories = models.AllCategories()

	decisions := DecideAll([]models.InvestorProfile{b, a}, scenarioPitch(), NewSequenceRNG(0.5))
	if len(decisions) != 2 {
		t.Fatalf("Expected 2 decisions, got %d", len(decisions))
	}
	if decisions[0].InvestorID != "generalist" || decisions[1].InvestorID != "tech_mogul" {
		t.Errorf("Decisions out of catalog order: %s, %s", decisions[0].InvestorID, decisions[1].InvestorID)
	}
}

func TestDecideAll_EmptyCatalog(t *testing.T) {
	decisions := DecideAll(nil, scenarioPitch(), NewSequenceRNG(0.5))
	if decisions == nil || len(decisions) != 0 {
		t.Errorf("Expected empty non-nil decisions, got %v", decisions)
	}
}

func TestBusinessScore(t *testing.T) {
	got := BusinessScore(scenarioPitch())
	// base 50, revenue 60000 > 10000: +5, growth 3.33: +15, market 200M: +10,
	// team: +8, multiple 16.7: +0
	if got != 88 {
		t.Errorf("Expected 88, got %v", got)
	}

	pitch := scenarioPitch()
	pitch.CurrentRevenue = 600000
	pitch.ProjectedRevenue = 3_000_000
	pitch.MarketSize = 2_000_000_000
	pitch.TeamExperience = 10
	if got := BusinessScore(pitch); got != 100 {
		t.Errorf("Expected score capped at 100, got %v", got)
	}

	pitch = scenarioPitch()
	pitch.EquityOffered = 0
	if got := BusinessScore(pitch); math.IsNaN(got) || got < 0 || got > 100 {
		t.Errorf("Expected bounded score for zero equity, got %v", got)
	}
}

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(100000); got != "$100,000" {
		t.Errorf("Expected $100,000, got %s", got)
	}
	if got := FormatMoney(1234567.6); got != "$1,234,568" {
		t.Errorf("Expected $1,234,568, got %s", got)
	}
	if got := FormatMoney(1e20); got != "$100,000,000,000,000,000,000" {
		t.Errorf("Expected $100,000,000,000,000,000,000, got %s", got)
	}
}

func TestDecide_HugeFundingKeepsPositiveMoney(t *testing.T) {
	pitch := scenarioPitch()
	pitch.FundingRequest = 1e20
	pitch.CurrentRevenue = 1e20
	pitch.ProjectedRevenue = 2e20

	d := Decide(techInvestor(), pitch, NewSequenceRNG(0.5, 0.9))
	if d.IsOut {
		t.Fatalf("Expected an offer, got %q", d.Reasoning)
	}
	if strings.Contains(d.Reasoning, "$-") {
		t.Errorf("Expected positive money in reasoning, got %q", d.Reasoning)
	}
	if !strings.Contains(d.Reasoning, "I'll offer $100,000,000,000,000,000,000 for ") {
		t.Errorf("Unexpected offer sentence in %q", d.Reasoning)
	}
}
