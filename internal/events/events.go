package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"shark-tank-api/internal/models"
)

// EventType represents the type of event.
type EventType string

const (
	// EventPitchEvaluated is emitted after every investor has decided on a pitch
	EventPitchEvaluated EventType = "pitch.evaluated"
	// EventDealCompleted is emitted when a pitch ends in a deal record
	EventDealCompleted EventType = "deal.completed"
	// EventStatsUpdated is emitted after a deal is folded into player stats
	EventStatsUpdated EventType = "stats.updated"
)

// Event represents an event in the system.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Data      interface{}
}

// PitchEvaluatedData contains data for pitch evaluated events.
type PitchEvaluatedData struct {
	Pitch     models.Pitch
	Decisions []models.Decision
	Offers    int
}

// DealCompletedData contains data for deal completed events.
type DealCompletedData struct {
	Deal models.Deal
}

// StatsUpdatedData contains data for stats updated events.
type StatsUpdatedData struct {
	Stats models.PlayerStats
}

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Manager manages event handlers and event publishing.
type Manager struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	enabled  bool
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewManager creates a new event manager. A nil logger discards handler errors.
func NewManager(enabled bool, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		handlers: make(map[EventType][]Handler),
		enabled:  enabled,
		logger:   logger,
	}
}

// Subscribe subscribes a handler to a specific event type.
func (m *Manager) Subscribe(eventType EventType, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.enabled {
		return
	}
	m.handlers[eventType] = append(m.handlers[eventType], handler)
}

// Publish delivers an event to every subscribed handler asynchronously.
func (m *Manager) Publish(ctx context.Context, eventType EventType, data interface{}) {
	m.mu.RLock()
	enabled := m.enabled
	handlers := m.handlers[eventType]
	m.mu.RUnlock()

	if !enabled || len(handlers) == 0 {
		return
	}

	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	// Handlers must not hold up the request that produced the event.
	ctx = context.WithoutCancel(ctx)
	for _, handler := range handlers {
		m.wg.Add(1)
		go func(h Handler) {
			defer m.wg.Done()
			if err := h(ctx, event); err != nil {
				m.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
			}
		}(handler)
	}
}

// PublishPitchEvaluated publishes a pitch evaluated event.
func (m *Manager) PublishPitchEvaluated(ctx context.Context, pitch models.Pitch, decisions []models.Decision) {
	offers := 0
	for _, d := range decisions {
		if !d.IsOut {
			offers++
		}
	}
	m.Publish(ctx, EventPitchEvaluated, PitchEvaluatedData{
		Pitch:     pitch,
		Decisions: decisions,
		Offers:    offers,
	})
}

// PublishDealCompleted publishes a deal completed event.
func (m *Manager) PublishDealCompleted(ctx context.Context, deal models.Deal) {
	m.Publish(ctx, EventDealCompleted, DealCompletedData{Deal: deal})
}

// PublishStatsUpdated publishes a stats updated event.
func (m *Manager) PublishStatsUpdated(ctx context.Context, s models.PlayerStats) {
	m.Publish(ctx, EventStatsUpdated, StatsUpdatedData{Stats: s})
}

// Wait blocks until every in-flight handler has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Shutdown stops accepting events and waits for running handlers.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.enabled = false
	m.handlers = make(map[EventType][]Handler)
	m.mu.Unlock()

	m.wg.Wait()
}

// LogSubscribers registers handlers that log every event at info level.
func LogSubscribers(m *Manager, logger *zap.Logger) {
	m.Subscribe(EventPitchEvaluated, func(ctx context.Context, e Event) error {
		d := e.Data.(PitchEvaluatedData)
		logger.Info("pitch evaluated",
			zap.String("pitch_id", d.Pitch.ID),
			zap.String("category", string(d.Pitch.Category)),
			zap.Int("investors", len(d.Decisions)),
			zap.Int("offers", d.Offers),
		)
		return nil
	})
	m.Subscribe(EventDealCompleted, func(ctx context.Context, e Event) error {
		d := e.Data.(DealCompletedData)
		logger.Info("deal completed",
			zap.String("deal_id", d.Deal.ID),
			zap.String("pitch_id", d.Deal.Pitch.ID),
			zap.String("investor_id", d.Deal.FinalOffer.InvestorID),
			zap.Bool("accepted", d.Deal.Accepted),
			zap.Bool("countered", d.Deal.PlayerCounterOffer != nil),
			zap.Float64("amount", d.Deal.FinalTerms.Amount),
			zap.Float64("equity", d.Deal.FinalTerms.Equity),
		)
		return nil
	})
	m.Subscribe(EventStatsUpdated, func(ctx context.Context, e Event) error {
		d := e.Data.(StatsUpdatedData)
		logger.Info("player stats updated",
			zap.Int("total_deals", d.Stats.TotalDeals),
			zap.Int("successful_deals", d.Stats.SuccessfulDeals),
			zap.Int("entrepreneur_score", d.Stats.EntrepreneurScore),
		)
		return nil
	})
}
