package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"shark-tank-api/internal/engine"
	"shark-tank-api/internal/models"
)

//go:embed investors.yaml
var builtin []byte

// Catalog is the fixed set of investor personas. It is never mutated after
// loading and is safe for concurrent reads.
type Catalog struct {
	investors []models.InvestorProfile
	byID      map[string]int
}

// Default returns the built-in investor panel.
func Default() (*Catalog, error) {
	return Parse(builtin)
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML list of investor profiles.
func Parse(data []byte) (*Catalog, error) {
	var investors []models.InvestorProfile
	if err := yaml.Unmarshal(data, &investors); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(investors)
}

// New builds a catalog from investors, preserving their order.
func New(investors []models.InvestorProfile) (*Catalog, error) {
	c := &Catalog{
		investors: make([]models.InvestorProfile, 0, len(investors)),
		byID:      make(map[string]int, len(investors)),
	}
	for i, inv := range investors {
		if err := validate(inv); err != nil {
			return nil, fmt.Errorf("investor %d: %w", i, err)
		}
		if _, dup := c.byID[inv.ID]; dup {
			return nil, fmt.Errorf("investor %d: duplicate id %q", i, inv.ID)
		}
		c.byID[inv.ID] = len(c.investors)
		c.investors = append(c.investors, inv)
	}
	return c, nil
}

func validate(inv models.InvestorProfile) error {
	if inv.ID == "" {
		return fmt.Errorf("id is required")
	}
	if inv.Name == "" {
		return fmt.Errorf("%s: name is required", inv.ID)
	}
	if inv.RiskTolerance < 0 || inv.RiskTolerance > 1 {
		return fmt.Errorf("%s: risk_tolerance must be within [0,1]", inv.ID)
	}
	if inv.EquityPreference < 0 || inv.EquityPreference > 1 {
		return fmt.Errorf("%s: equity_preference must be within [0,1]", inv.ID)
	}
	if inv.RevenueRequirement < 0 {
		return fmt.Errorf("%s: revenue_requirement must be non-negative", inv.ID)
	}
	for _, c := range inv.PreferredCategories {
		if !c.Valid() {
			return fmt.Errorf("%s: unknown category %q", inv.ID, c)
		}
	}
	return nil
}

// Investors returns a deep copy of the panel in catalog order.
func (c *Catalog) Investors() []models.InvestorProfile {
	out := make([]models.InvestorProfile, len(c.investors))
	for i, inv := range c.investors {
		out[i] = clone(inv)
	}
	return out
}

// clone detaches the profile's slices from the catalog's backing arrays.
func clone(inv models.InvestorProfile) models.InvestorProfile {
	inv.PreferredCategories = append([]models.Category(nil), inv.PreferredCategories...)
	inv.PersonalityTraits = append([]string(nil), inv.PersonalityTraits...)
	return inv
}

// Len returns the number of investors.
func (c *Catalog) Len() int {
	return len(c.investors)
}

// Get looks up an investor by id.
func (c *Catalog) Get(id string) (models.InvestorProfile, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.InvestorProfile{}, false
	}
	return clone(c.investors[i]), true
}

// Random picks count distinct investors in shuffled order. A count larger
// than the catalog returns the whole catalog shuffled.
func (c *Catalog) Random(count int, rng engine.RNG) []models.InvestorProfile {
	pool := c.Investors()
	for i := len(pool) - 1; i > 0; i-- {
		j := int(rng.Float64() * float64(i+1))
		pool[i], pool[j] = pool[j], pool[i]
	}
	if count < 0 {
		count = 0
	}
	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count]
}
