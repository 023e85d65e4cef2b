package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shark-tank-api/internal/models"
	"shark-tank-api/internal/service"
	"shark-tank-api/internal/validation"
)

// Handler provides HTTP handlers for the API.
type Handler struct {
	service     *service.Service
	maxBodySize int64
	logger      *zap.Logger
}

// NewHandlerOptions holds options for creating a handler.
type NewHandlerOptions struct {
	MaxBodySize int64
	Logger      *zap.Logger
}

// DefaultHandlerOptions returns default handler options.
func DefaultHandlerOptions() NewHandlerOptions {
	return NewHandlerOptions{
		MaxBodySize: 1 << 20,
	}
}

// NewHandler creates a new handler instance.
func NewHandler(svc *service.Service) *Handler {
	return NewHandlerWithOptions(svc, DefaultHandlerOptions())
}

// NewHandlerWithOptions creates a new handler instance with custom options.
func NewHandlerWithOptions(svc *service.Service, opts NewHandlerOptions) *Handler {
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultHandlerOptions().MaxBodySize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Handler{
		service:     svc,
		maxBodySize: opts.MaxBodySize,
		logger:      opts.Logger,
	}
}

// Routes mounts every endpoint on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/investors", h.ListInvestors)

	r.Route("/pitches", func(r chi.Router) {
		r.Post("/", h.EvaluatePitch)
		r.Get("/{pitch_id}/decisions", h.GetDecisions)
		r.Post("/{pitch_id}/deal", h.CompleteDeal)
	})

	r.Get("/history", h.GetHistory)
	r.Delete("/history", h.ResetHistory)
	r.Get("/stats", h.GetStats)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// ListInvestors handles GET /investors
func (h *Handler) ListInvestors(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, models.InvestorsResponse{Investors: h.service.Investors()})
}

// EvaluatePitch handles POST /pitches
func (h *Handler) EvaluatePitch(w http.ResponseWriter, r *http.Request) {
	var req models.EvaluatePitchRequest
	if !h.decode(w, r, &req) {
		return
	}

	resp, err := h.service.EvaluatePitch(r.Context(), req.Pitch, req.Seed)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, resp)
}

// GetDecisions handles GET /pitches/{pitch_id}/decisions
func (h *Handler) GetDecisions(w http.ResponseWriter, r *http.Request) {
	pitchID := validation.SanitizeString(chi.URLParam(r, "pitch_id"))

	resp, err := h.service.GetDecisions(r.Context(), pitchID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

// CompleteDeal handles POST /pitches/{pitch_id}/deal
func (h *Handler) CompleteDeal(w http.ResponseWriter, r *http.Request) {
	pitchID := validation.SanitizeString(chi.URLParam(r, "pitch_id"))

	var req models.DealRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.InvestorID = validation.SanitizeString(req.InvestorID)

	deal, err := h.service.CompleteDeal(r.Context(), pitchID, req)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusCreated, deal)
}

// GetHistory handles GET /history
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.History(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, history)
}

// ResetHistory handles DELETE /history
func (h *Handler) ResetHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reset(r.Context()); err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /stats
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Stats(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, st)
}

// decode reads a size-limited JSON body into dest, answering 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			h.respondError(w, http.StatusBadRequest, "request body is required")
		case errors.As(err, &maxErr):
			h.respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		default:
			h.respondError(w, http.StatusBadRequest, "invalid JSON in request body")
		}
		return false
	}
	return true
}

// respondServiceError maps service errors onto status codes.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	var vErr *validation.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoOffer), errors.Is(err, service.ErrAlreadyResolved):
		h.respondError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("request failed", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// respondJSON sends a JSON response with the given status code.
func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response with the given status code and message.
func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, models.ErrorResponse{Error: message})
}
