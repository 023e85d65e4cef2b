package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"shark-tank-api/internal/cache"
	"shark-tank-api/internal/catalog"
	"shark-tank-api/internal/database"
	"shark-tank-api/internal/engine"
	"shark-tank-api/internal/events"
	"shark-tank-api/internal/features"
	"shark-tank-api/internal/models"
	"shark-tank-api/internal/stats"
	"shark-tank-api/internal/tracing"
	"shark-tank-api/internal/validation"
)

var (
	// ErrNotFound is returned for an unknown pitch.
	ErrNotFound = errors.New("pitch not found")
	// ErrNoOffer is returned when the chosen investor did not make an offer.
	ErrNoOffer = errors.New("investor made no offer on this pitch")
	// ErrAlreadyResolved is returned when a pitch already ended in a deal.
	ErrAlreadyResolved = errors.New("pitch already resolved")
)

// Options carries the optional collaborators of a Service. Zero values get
// working defaults.
type Options struct {
	Cache     cache.Cache
	CacheTTL  time.Duration
	Events    *events.Manager
	Features  *features.Manager
	Tracer    *tracing.Tracer
	Logger    *zap.Logger
	PanelSize int
	// Seed fixes the random source for every request that brings none.
	Seed *int64
}

// Service provides the game's business logic on top of the engine.
type Service struct {
	db        *database.DB
	catalog   *catalog.Catalog
	cache     cache.Cache
	cacheTTL  time.Duration
	events    *events.Manager
	features  *features.Manager
	tracer    *tracing.Tracer
	logger    *zap.Logger
	panelSize int
	seed      *int64

	now       func() time.Time
	clockSeed func() int64
	newRNG    func(seed int64) engine.RNG

	// serializes read-modify-write of player stats
	mu sync.Mutex
}

// NewService creates a new service instance.
func NewService(db *database.DB, cat *catalog.Catalog, opts Options) *Service {
	s := &Service{
		db:        db,
		catalog:   cat,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		events:    opts.Events,
		features:  opts.Features,
		tracer:    opts.Tracer,
		logger:    opts.Logger,
		panelSize: opts.PanelSize,
		seed:      opts.Seed,
		now:       func() time.Time { return time.Now().UTC() },
		clockSeed: func() int64 { return time.Now().UnixNano() },
		newRNG:    engine.NewRNG,
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryCache()
	}
	if s.events == nil {
		s.events = events.NewManager(false, nil)
	}
	if s.features == nil {
		s.features = features.NewDefaultManager(nil)
	}
	if s.tracer == nil {
		s.tracer = tracing.Noop()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.panelSize <= 0 {
		s.panelSize = cat.Len()
	}
	return s
}

// Investors returns the full investor catalog.
func (s *Service) Investors() []models.InvestorProfile {
	return s.catalog.Investors()
}

// EvaluatePitch runs every seated investor's decision on a new pitch and
// stores the round.
func (s *Service) EvaluatePitch(ctx context.Context, pitch models.Pitch, seed *int64) (models.EvaluatePitchResponse, error) {
	ctx, span := s.tracer.StartSpan(ctx, "service.EvaluatePitch")
	defer span.End()

	validation.SanitizePitch(&pitch)
	if err := validation.ValidatePitch(pitch); err != nil {
		return models.EvaluatePitchResponse{}, err
	}

	pitch.ID = uuid.NewString()
	pitch.CreatedAt = s.now()
	span.SetAttributes(
		attribute.String("pitch.id", pitch.ID),
		attribute.String("pitch.category", string(pitch.Category)),
	)

	rng := s.newRNG(s.resolveSeed(seed))
	panel := s.catalog.Investors()
	if s.features.IsEnabled(features.FeatureRandomPanel) {
		panel = s.catalog.Random(s.panelSize, rng)
	}
	decisions := engine.DecideAll(panel, pitch, rng)

	if err := s.db.SavePitch(ctx, pitch, decisions); err != nil {
		return models.EvaluatePitchResponse{}, failSpan(span, fmt.Errorf("failed to save pitch: %w", err))
	}
	s.cacheRound(ctx, cache.Round{Pitch: pitch, Decisions: decisions})

	if s.features.IsEnabled(features.FeatureEventHooksEnabled) {
		s.events.PublishPitchEvaluated(ctx, pitch, decisions)
	}

	resp := models.EvaluatePitchResponse{Pitch: pitch, Decisions: decisions}
	if s.features.IsEnabled(features.FeatureBusinessScore) {
		score := engine.BusinessScore(pitch)
		resp.BusinessScore = &score
	}

	s.logger.Debug("pitch evaluated",
		zap.String("pitch_id", pitch.ID),
		zap.Int("investors", len(decisions)),
	)

	return resp, nil
}

// GetDecisions returns a stored pitch and its decision round.
func (s *Service) GetDecisions(ctx context.Context, pitchID string) (models.EvaluatePitchResponse, error) {
	ctx, span := s.tracer.StartSpan(ctx, "service.GetDecisions", trace.WithAttributes(attribute.String("pitch.id", pitchID)))
	defer span.End()

	if err := validation.ValidateUUID(pitchID, "pitch_id"); err != nil {
		return models.EvaluatePitchResponse{}, err
	}

	round, err := s.loadRound(ctx, pitchID)
	if err != nil {
		return models.EvaluatePitchResponse{}, failSpan(span, err)
	}
	return models.EvaluatePitchResponse{Pitch: round.Pitch, Decisions: round.Decisions}, nil
}

// CompleteDeal ends a pitch with the player's choice and folds the result
// into player stats.
func (s *Service) CompleteDeal(ctx context.Context, pitchID string, req models.DealRequest) (models.Deal, error) {
	ctx, span := s.tracer.StartSpan(ctx, "service.CompleteDeal", trace.WithAttributes(
		attribute.String("pitch.id", pitchID),
		attribute.String("deal.action", string(req.Action)),
	))
	defer span.End()

	if err := validation.ValidateUUID(pitchID, "pitch_id"); err != nil {
		return models.Deal{}, err
	}
	if err := validation.ValidateDealRequest(req); err != nil {
		return models.Deal{}, err
	}

	round, err := s.loadRound(ctx, pitchID)
	if err != nil {
		return models.Deal{}, failSpan(span, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.GetDealByPitch(ctx, pitchID); err == nil {
		return models.Deal{}, ErrAlreadyResolved
	} else if !errors.Is(err, database.ErrNotFound) {
		return models.Deal{}, failSpan(span, fmt.Errorf("failed to check deal: %w", err))
	}

	now := s.now()
	var deal models.Deal

	switch req.Action {
	case models.ActionAccept:
		offer, err := findOffer(round.Decisions, req.InvestorID)
		if err != nil {
			return models.Deal{}, err
		}
		deal = engine.AcceptOffer(round.Pitch, req.InvestorID, offer, now)

	case models.ActionCounter:
		offer, err := findOffer(round.Decisions, req.InvestorID)
		if err != nil {
			return models.Deal{}, err
		}
		res := engine.ResolveCounter(offer, *req.Counter, s.newRNG(s.resolveSeed(req.Seed)))
		span.SetAttributes(
			attribute.Float64("counter.probability", res.Probability),
			attribute.Bool("counter.accepted", res.Accepted),
		)
		deal = engine.CounterDeal(round.Pitch, req.InvestorID, offer, *req.Counter, res, now)

	case models.ActionWalkAway:
		deal = engine.WalkAway(round.Pitch, round.Decisions, now)
	}

	data, err := s.db.GetGameData(ctx)
	if err != nil {
		return models.Deal{}, failSpan(span, fmt.Errorf("failed to load game data: %w", err))
	}
	next := stats.Apply(data, deal)

	if err := s.db.SaveDeal(ctx, deal, next.Stats); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return models.Deal{}, ErrAlreadyResolved
		}
		if errors.Is(err, database.ErrNotFound) {
			return models.Deal{}, ErrNotFound
		}
		return models.Deal{}, failSpan(span, fmt.Errorf("failed to save deal: %w", err))
	}

	if s.features.IsEnabled(features.FeatureEventHooksEnabled) {
		s.events.PublishDealCompleted(ctx, deal)
		s.events.PublishStatsUpdated(ctx, next.Stats)
	}

	return deal, nil
}

// History returns the player's completed deals, oldest first.
func (s *Service) History(ctx context.Context) ([]models.Deal, error) {
	ctx, span := s.tracer.StartSpan(ctx, "service.History")
	defer span.End()

	deals, err := s.db.ListDeals(ctx)
	if err != nil {
		return nil, failSpan(span, err)
	}
	return deals, nil
}

// Stats returns the player's aggregate statistics.
func (s *Service) Stats(ctx context.Context) (models.PlayerStats, error) {
	ctx, span := s.tracer.StartSpan(ctx, "service.Stats")
	defer span.End()

	st, err := s.db.GetStats(ctx)
	if err != nil {
		return models.PlayerStats{}, failSpan(span, err)
	}
	return st, nil
}

// Reset clears all pitches, deals and stats.
func (s *Service) Reset(ctx context.Context) error {
	ctx, span := s.tracer.StartSpan(ctx, "service.Reset")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	// cached rounds go first so none outlive their pitch
	if err := s.cache.Clear(ctx); err != nil {
		return failSpan(span, fmt.Errorf("failed to clear cache: %w", err))
	}
	if err := s.db.Reset(ctx); err != nil {
		return failSpan(span, err)
	}

	if s.features.IsEnabled(features.FeatureEventHooksEnabled) {
		s.events.PublishStatsUpdated(ctx, stats.NewGameData().Stats)
	}
	return nil
}

func (s *Service) resolveSeed(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	if s.seed != nil {
		return *s.seed
	}
	return s.clockSeed()
}

// loadRound reads a decision round from the cache, falling back to the
// database and refilling the cache.
func (s *Service) loadRound(ctx context.Context, pitchID string) (cache.Round, error) {
	if s.features.IsEnabled(features.FeatureCacheEnabled) {
		round, err := cache.GetRound(ctx, s.cache, pitchID)
		if err == nil {
			return round, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("cache read failed", zap.String("pitch_id", pitchID), zap.Error(err))
		}
	}

	pitch, err := s.db.GetPitch(ctx, pitchID)
	if errors.Is(err, database.ErrNotFound) {
		return cache.Round{}, ErrNotFound
	}
	if err != nil {
		return cache.Round{}, fmt.Errorf("failed to load pitch: %w", err)
	}
	decisions, err := s.db.GetDecisions(ctx, pitchID)
	if err != nil {
		return cache.Round{}, fmt.Errorf("failed to load decisions: %w", err)
	}

	round := cache.Round{Pitch: pitch, Decisions: decisions}
	s.cacheRound(ctx, round)
	return round, nil
}

func (s *Service) cacheRound(ctx context.Context, round cache.Round) {
	if !s.features.IsEnabled(features.FeatureCacheEnabled) {
		return
	}
	if err := cache.SetRound(ctx, s.cache, round, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", zap.String("pitch_id", round.Pitch.ID), zap.Error(err))
	}
}

func findOffer(decisions []models.Decision, investorID string) (models.Offer, error) {
	for _, d := range decisions {
		if d.InvestorID != investorID {
			continue
		}
		if d.IsOut || d.Offer == nil {
			return models.Offer{}, ErrNoOffer
		}
		return *d.Offer, nil
	}
	return models.Offer{}, ErrNoOffer
}

func failSpan(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
