package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"shark-tank-api/internal/catalog"
	"shark-tank-api/internal/engine"
	"shark-tank-api/internal/models"
	"shark-tank-api/internal/validation"
)

var Cmd = &cobra.Command{
	Use:          "pitchsim",
	Long:         "Play pitches against the investor panel offline, without the API server",
	SilenceUsage: true,
}

var args struct {
	catalog string
	seed    int64
	json    bool

	pitch string

	amount        float64
	equity        float64
	counterAmount float64
	counterEquity float64
}

var investorsCmd = &cobra.Command{
	Use:   "investors",
	Short: "List the investor panel",
	RunE:  runInvestors,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a pitch read from a JSON file",
	RunE:  runEvaluate,
}

var counterCmd = &cobra.Command{
	Use:   "counter",
	Short: "Resolve a counter-offer against an investor's offer",
	RunE:  runCounter,
}

func init() {
	Cmd.PersistentFlags().StringVar(&args.catalog, "catalog", "", "YAML investor catalog (defaults to the built-in panel)")
	Cmd.PersistentFlags().Int64Var(&args.seed, "seed", 0, "random seed (defaults to the clock)")
	Cmd.PersistentFlags().BoolVar(&args.json, "json", false, "print JSON instead of text")

	evaluateCmd.Flags().StringVar(&args.pitch, "pitch", "", "pitch JSON file")
	evaluateCmd.MarkFlagRequired("pitch")

	counterCmd.Flags().Float64Var(&args.amount, "amount", 0, "offered amount in dollars")
	counterCmd.Flags().Float64Var(&args.equity, "equity", 0, "offered equity percent")
	counterCmd.Flags().Float64Var(&args.counterAmount, "counter-amount", 0, "countered amount (defaults to --amount)")
	counterCmd.Flags().Float64Var(&args.counterEquity, "counter-equity", 0, "countered equity percent (defaults to five points less)")
	counterCmd.MarkFlagRequired("amount")
	counterCmd.MarkFlagRequired("equity")

	Cmd.AddCommand(investorsCmd, evaluateCmd, counterCmd)
}

func main() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadCatalog() (*catalog.Catalog, error) {
	if args.catalog == "" {
		return catalog.Default()
	}
	return catalog.Load(args.catalog)
}

func newRNG(cmd *cobra.Command) engine.RNG {
	if cmd.Flags().Changed("seed") {
		return engine.NewRNG(args.seed)
	}
	return engine.NewRNG(time.Now().UnixNano())
}

func runInvestors(cmd *cobra.Command, argv []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if args.json {
		return writeJSON(out, models.InvestorsResponse{Investors: cat.Investors()})
	}

	for _, inv := range cat.Investors() {
		fmt.Fprintf(out, "%-20s %-20s risk=%.2f equity=%.0f%% min revenue=%s %v\n",
			inv.ID, inv.Name, inv.RiskTolerance, inv.EquityPreference*100,
			engine.FormatMoney(inv.RevenueRequirement), inv.PreferredCategories)
	}
	return nil
}

func runEvaluate(cmd *cobra.Command, argv []string) error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args.pitch)
	if err != nil {
		return fmt.Errorf("failed to read pitch: %w", err)
	}
	var pitch models.Pitch
	if err := json.Unmarshal(data, &pitch); err != nil {
		return fmt.Errorf("failed to parse pitch: %w", err)
	}
	validation.SanitizePitch(&pitch)
	if err := validation.ValidatePitch(pitch); err != nil {
		return err
	}

	decisions := engine.DecideAll(cat.Investors(), pitch, newRNG(cmd))
	score := engine.BusinessScore(pitch)

	out := cmd.OutOrStdout()
	if args.json {
		return writeJSON(out, models.EvaluatePitchResponse{Pitch: pitch, Decisions: decisions, BusinessScore: &score})
	}

	fmt.Fprintf(out, "%s asks %s for %g%% (valuation %s, business score %.0f)\n\n",
		pitch.BusinessName, engine.FormatMoney(pitch.FundingRequest), pitch.EquityOffered,
		engine.FormatMoney(engine.Valuation(pitch.FundingRequest, pitch.EquityOffered)), score)
	for _, d := range decisions {
		status := "OUT"
		if !d.IsOut {
			status = fmt.Sprintf("%s for %g%%", engine.FormatMoney(d.Offer.Amount), d.Offer.Equity)
		}
		fmt.Fprintf(out, "%-20s score %6.1f  %s\n  %s\n", d.InvestorID, d.Score, status, d.Reasoning)
		if d.Offer != nil && d.Offer.Conditions != "" {
			fmt.Fprintf(out, "  condition: %s\n", d.Offer.Conditions)
		}
	}
	return nil
}

func runCounter(cmd *cobra.Command, argv []string) error {
	offer := models.Offer{Amount: args.amount, Equity: args.equity}
	counter := engine.SuggestCounter(offer)
	if args.counterAmount > 0 {
		counter.Amount = args.counterAmount
	}
	if cmd.Flags().Changed("counter-equity") {
		counter.Equity = args.counterEquity
	}
	if err := validation.ValidateCounterOffer(counter); err != nil {
		return err
	}

	res := engine.ResolveCounter(offer, counter, newRNG(cmd))

	out := cmd.OutOrStdout()
	if args.json {
		return writeJSON(out, res)
	}

	fmt.Fprintf(out, "counter %s for %g%% against %s for %g%%: p=%.2f draw=%.3f\n",
		engine.FormatMoney(counter.Amount), counter.Equity,
		engine.FormatMoney(offer.Amount), offer.Equity, res.Probability, res.Draw)
	if res.Accepted {
		fmt.Fprintf(out, "accepted at valuation %s\n", engine.FormatMoney(res.FinalTerms.Valuation))
	} else {
		fmt.Fprintln(out, "rejected, no deal")
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
