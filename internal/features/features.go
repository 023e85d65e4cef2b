package features

import (
	"sort"
	"sync"
)

// FeatureFlag represents a feature flag configuration.
type FeatureFlag struct {
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description"`
}

// Manager manages feature flags.
type Manager struct {
	mu    sync.RWMutex
	flags map[string]*FeatureFlag
}

// NewManager creates a new feature flag manager.
func NewManager() *Manager {
	return &Manager{
		flags: make(map[string]*FeatureFlag),
	}
}

// NewDefaultManager registers the known flags with the given states; flags
// missing from enabled start off.
func NewDefaultManager(enabled map[string]bool) *Manager {
	m := NewManager()
	for name, desc := range descriptions {
		m.Register(name, enabled[name], desc)
	}
	return m
}

// Register registers a new feature flag.
func (m *Manager) Register(name string, enabled bool, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.flags[name] = &FeatureFlag{
		Name:        name,
		Enabled:     enabled,
		Description: description,
	}
}

// IsEnabled checks if a feature flag is enabled. Unknown flags are disabled.
func (m *Manager) IsEnabled(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	flag, exists := m.flags[name]
	return exists && flag.Enabled
}

// Set toggles a registered flag and reports whether it exists.
func (m *Manager) Set(name string, enabled bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	flag, exists := m.flags[name]
	if exists {
		flag.Enabled = enabled
	}
	return exists
}

// List returns a snapshot of all flags sorted by name.
func (m *Manager) List() []FeatureFlag {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]FeatureFlag, 0, len(m.flags))
	for _, f := range m.flags {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

const (
	// FeatureCacheEnabled keeps decision rounds in the cache in front of the database
	FeatureCacheEnabled = "cache_enabled"
	// FeatureEventHooksEnabled enables event-driven hooks
	FeatureEventHooksEnabled = "event_hooks_enabled"
	// FeatureRandomPanel seats a random subset of the catalog for each pitch
	FeatureRandomPanel = "random_panel"
	// FeatureBusinessScore adds the investor-independent business score to evaluations
	FeatureBusinessScore = "business_score"
)

var descriptions = map[string]string{
	FeatureCacheEnabled:      "Cache decision rounds in front of the database",
	FeatureEventHooksEnabled: "Publish pitch, deal and stats events",
	FeatureRandomPanel:       "Seat a random subset of investors for each pitch",
	FeatureBusinessScore:     "Include the business score in pitch evaluations",
}
