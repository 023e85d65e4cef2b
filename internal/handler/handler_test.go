package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shark-tank-api/internal/catalog"
	"shark-tank-api/internal/database"
	"shark-tank-api/internal/features"
	"shark-tank-api/internal/models"
	"shark-tank-api/internal/service"
)

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()

	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cat, err := catalog.New([]models.InvestorProfile{
		{
			ID:                  "fan",
			Name:                "Fan",
			PreferredCategories: []models.Category{models.CategoryTech},
			EquityPreference:    0.25,
		},
		{
			ID:                 "skeptic",
			Name:               "Skeptic",
			RevenueRequirement: 1_000_000_000,
		},
	})
	if err != nil {
		t.Fatalf("Failed to build catalog: %v", err)
	}

	svc := service.NewService(db, cat, service.Options{
		Features: features.NewDefaultManager(map[string]bool{
			features.FeatureCacheEnabled:  true,
			features.FeatureBusinessScore: true,
		}),
	})

	r := chi.NewRouter()
	NewHandlerWithOptions(svc, NewHandlerOptions{MaxBodySize: 4096}).Routes(r)
	return r
}

const pitchBody = `{"pitch":{
	"business_name":"Widgetly",
	"description":"Widgets as a service",
	"category":"tech",
	"funding_request":100000,
	"equity_offered":10,
	"current_revenue":60000,
	"projected_revenue":200000,
	"market_size":200000000,
	"competition":"Nobody serious",
	"team_experience":8
}}`

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func createPitch(t *testing.T, r http.Handler) models.EvaluatePitchResponse {
	t.Helper()
	rr := do(r, http.MethodPost, "/pitches", pitchBody)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp models.EvaluatePitchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestHealthCheck(t *testing.T) {
	r := setupRouter(t)
	rr := do(r, http.MethodGet, "/health", "")

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", rr.Body.String())
	}
}

func TestListInvestors(t *testing.T) {
	r := setupRouter(t)
	rr := do(r, http.MethodGet, "/investors", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp models.InvestorsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Investors) != 2 {
		t.Errorf("Expected 2 investors, got %d", len(resp.Investors))
	}
}

func TestEvaluatePitch_Success(t *testing.T) {
	r := setupRouter(t)
	resp := createPitch(t, r)

	if _, err := uuid.Parse(resp.Pitch.ID); err != nil {
		t.Errorf("Expected uuid pitch id, got %q", resp.Pitch.ID)
	}
	if len(resp.Decisions) != 2 {
		t.Fatalf("Expected 2 decisions, got %d", len(resp.Decisions))
	}
	if resp.Decisions[0].Offer == nil || !resp.Decisions[1].IsOut {
		t.Errorf("Expected fan in and skeptic out, got %+v", resp.Decisions)
	}
	if resp.BusinessScore == nil {
		t.Error("Expected business score in response")
	}
}

func TestEvaluatePitch_InvalidJSON(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"malformed", `{"pitch":`, http.StatusBadRequest},
		{"too large", `{"pitch":{"description":"` + strings.Repeat("x", 5000) + `"}}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(r, http.MethodPost, "/pitches", tt.body)
			if rr.Code != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, rr.Code)
			}
		})
	}
}

func TestEvaluatePitch_ValidationError(t *testing.T) {
	r := setupRouter(t)
	body := strings.Replace(pitchBody, `"team_experience":8`, `"team_experience":11`, 1)

	rr := do(r, http.MethodPost, "/pitches", body)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}

	var resp models.ErrorResponse
	json.Unmarshal(rr.Body.Bytes(), &resp)
	if !strings.Contains(resp.Error, "team_experience") {
		t.Errorf("Expected error to name team_experience, got %q", resp.Error)
	}
}

func TestGetDecisions(t *testing.T) {
	r := setupRouter(t)
	created := createPitch(t, r)

	rr := do(r, http.MethodGet, "/pitches/"+created.Pitch.ID+"/decisions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var resp models.EvaluatePitchResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Pitch.ID != created.Pitch.ID || len(resp.Decisions) != 2 {
		t.Errorf("Expected stored round, got %+v", resp)
	}
}

func TestGetDecisions_Errors(t *testing.T) {
	r := setupRouter(t)

	if rr := do(r, http.MethodGet, "/pitches/"+uuid.New().String()+"/decisions", ""); rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown pitch, got %d", rr.Code)
	}
	if rr := do(r, http.MethodGet, "/pitches/bogus/decisions", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for bad id, got %d", rr.Code)
	}
}

func TestCompleteDeal_Accept(t *testing.T) {
	r := setupRouter(t)
	created := createPitch(t, r)

	rr := do(r, http.MethodPost, "/pitches/"+created.Pitch.ID+"/deal", `{"action":"accept","investor_id":"fan"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var deal models.Deal
	if err := json.Unmarshal(rr.Body.Bytes(), &deal); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !deal.Accepted || deal.FinalTerms.Equity != 25 {
		t.Errorf("Expected accepted deal at 25%%, got %+v", deal)
	}

	rr = do(r, http.MethodGet, "/stats", "")
	var st models.PlayerStats
	json.Unmarshal(rr.Body.Bytes(), &st)
	if st.TotalDeals != 1 || st.SuccessfulDeals != 1 || st.EntrepreneurScore != 110 {
		t.Errorf("Unexpected stats %+v", st)
	}
}

func TestCompleteDeal_Conflicts(t *testing.T) {
	r := setupRouter(t)
	created := createPitch(t, r)
	path := "/pitches/" + created.Pitch.ID + "/deal"

	if rr := do(r, http.MethodPost, path, `{"action":"accept","investor_id":"skeptic"}`); rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for investor without offer, got %d", rr.Code)
	}
	if rr := do(r, http.MethodPost, path, `{"action":"walk_away"}`); rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rr.Code)
	}
	if rr := do(r, http.MethodPost, path, `{"action":"walk_away"}`); rr.Code != http.StatusConflict {
		t.Errorf("Expected status 409 for resolved pitch, got %d", rr.Code)
	}
}

func TestCompleteDeal_BadRequests(t *testing.T) {
	r := setupRouter(t)
	created := createPitch(t, r)
	path := "/pitches/" + created.Pitch.ID + "/deal"

	tests := []struct {
		name string
		body string
	}{
		{"unknown action", `{"action":"haggle"}`},
		{"counter without terms", `{"action":"counter","investor_id":"fan"}`},
		{"counter with zero equity", `{"action":"counter","investor_id":"fan","counter":{"amount":1000,"equity":0}}`},
		{"accept without investor", `{"action":"accept"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := do(r, http.MethodPost, path, tt.body); rr.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", rr.Code)
			}
		})
	}
}

func TestCompleteDeal_UnknownPitch(t *testing.T) {
	r := setupRouter(t)

	rr := do(r, http.MethodPost, "/pitches/"+uuid.New().String()+"/deal", `{"action":"walk_away"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestHistory_ListAndReset(t *testing.T) {
	r := setupRouter(t)
	created := createPitch(t, r)
	do(r, http.MethodPost, "/pitches/"+created.Pitch.ID+"/deal", `{"action":"walk_away"}`)

	rr := do(r, http.MethodGet, "/history", "")
	var history []models.Deal
	if err := json.Unmarshal(rr.Body.Bytes(), &history); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 deal, got %d", len(history))
	}

	if rr := do(r, http.MethodDelete, "/history", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rr.Code)
	}

	rr = do(r, http.MethodGet, "/history", "")
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Errorf("Expected empty history, got %s", rr.Body.String())
	}
}
