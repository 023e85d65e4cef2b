package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shark-tank-api/internal/engine"
	"shark-tank-api/internal/models"
)

func execute(t *testing.T, argv ...string) (string, error) {
	t.Helper()

	// flag values persist between runs of the package-level command
	args.catalog, args.seed, args.json = "", 0, false
	args.counterAmount, args.counterEquity = 0, 0
	Cmd.PersistentFlags().Lookup("seed").Changed = false
	counterCmd.Flags().Lookup("counter-equity").Changed = false

	var out bytes.Buffer
	Cmd.SetOut(&out)
	Cmd.SetErr(&out)
	Cmd.SetArgs(argv)
	err := Cmd.Execute()
	return out.String(), err
}

func TestInvestors(t *testing.T) {
	out, err := execute(t, "investors", "--json")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}

	var resp models.InvestorsResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("Failed to decode output: %v\n%s", err, out)
	}
	if len(resp.Investors) != 5 {
		t.Errorf("Expected 5 investors, got %d", len(resp.Investors))
	}
}

func TestEvaluate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pitch.json")
	pitch := `{"business_name":"Widgetly","description":"Widgets","category":"tech",
		"funding_request":100000,"equity_offered":10,"current_revenue":60000,
		"projected_revenue":200000,"market_size":200000000,"competition":"None","team_experience":8}`
	if err := os.WriteFile(path, []byte(pitch), 0o600); err != nil {
		t.Fatalf("Failed to write pitch: %v", err)
	}

	out, err := execute(t, "evaluate", "--pitch", path, "--seed", "3", "--json")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}

	var resp models.EvaluatePitchResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("Failed to decode output: %v\n%s", err, out)
	}
	if len(resp.Decisions) != 5 {
		t.Errorf("Expected 5 decisions, got %d", len(resp.Decisions))
	}
	if resp.BusinessScore == nil {
		t.Error("Expected business score")
	}
}

func TestEvaluate_InvalidPitch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pitch.json")
	if err := os.WriteFile(path, []byte(`{"business_name":"x"}`), 0o600); err != nil {
		t.Fatalf("Failed to write pitch: %v", err)
	}

	if _, err := execute(t, "evaluate", "--pitch", path); err == nil {
		t.Error("Expected validation error")
	}
}

func TestCounter_AlwaysAcceptedAboveOffer(t *testing.T) {
	// asking for more equity than offered caps the probability at 1
	out, err := execute(t, "counter", "--amount", "100000", "--equity", "20", "--counter-equity", "30", "--json")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}

	var res engine.Resolution
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("Failed to decode output: %v\n%s", err, out)
	}
	if !res.Accepted || res.Probability != 1 {
		t.Errorf("Expected certain acceptance, got %+v", res)
	}
}

func TestCounter_TextOutput(t *testing.T) {
	out, err := execute(t, "counter", "--amount", "100000", "--equity", "20", "--seed", "1")
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}
	// default counter is five points under the offer
	if !strings.Contains(out, "for 15% against $100,000 for 20%") {
		t.Errorf("Unexpected output %q", out)
	}
}
