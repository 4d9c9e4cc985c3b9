package instrument

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleInput() EngineInput {
	return EngineInput{
		Assumptions: IPOAssumptions{
			CompanyName:          "Helio Therapeutics",
			LTMRevenueMillions:   100,
			PreIPOSharesMillions: 100,
			PrimaryRaiseMillions: 200,
			IPODiscount:          floatPtr(0.2),
			ValuationMultiples: []ValuationMultiple{
				{Name: "EV/Revenue", Type: MultipleRevenue, Multiple: 10, Weight: 1.0},
			},
			Convertibles: []ConvertibleInstrument{
				{Name: "Crossover note", AmountMillions: 16, TriggerType: TriggerAtIPOPrice},
			},
			Contingencies: []ContingentLiability{
				{Name: "Patent suit", Type: LiabilityLitigation, PaymentMillions: floatPtr(20), Probability: floatPtr(0.5)},
				{Name: "Earnout", Type: LiabilityEarnout, SharesMillions: floatPtr(4), Probability: floatPtr(0.5)},
			},
			EmployeeOptions: &EmployeeOptionPool{SharesMillions: 10, AvgStrikePrice: 4, VestedPercent: floatPtr(1)},
		},
		BaseValuation: 900,
	}
}

func TestRun_SinglePass(t *testing.T) {
	res, err := Run(sampleInput(), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.BaseValuation != 1000 {
		t.Errorf("expected blended base valuation 1000, got %f", res.BaseValuation)
	}
	if res.DemandBoostMultiplier != 1.0 {
		t.Errorf("expected no boost without anchors, got %f", res.DemandBoostMultiplier)
	}
	if res.TentativeTheoreticalPrice != 10 {
		t.Errorf("expected theoretical 10, got %f", res.TentativeTheoreticalPrice)
	}
	if res.TentativeOfferPrice != 8 {
		t.Errorf("expected offer 8, got %f", res.TentativeOfferPrice)
	}

	// 16 / 8 = 2 conversion shares
	if res.Convertibles.ExpectedShares != 2 {
		t.Errorf("expected 2 conversion shares, got %f", res.Convertibles.ExpectedShares)
	}
	if res.Contingencies.ExpectedCost != 10 || res.Contingencies.ExpectedShares != 2 {
		t.Errorf("expected contingent cost 10 and shares 2, got %f / %f", res.Contingencies.ExpectedCost, res.Contingencies.ExpectedShares)
	}
	// 10 - 40/8 = 5
	if res.EmployeeOptions.NetDilution != 5 {
		t.Errorf("expected option dilution 5, got %f", res.EmployeeOptions.NetDilution)
	}

	if res.AdjustedValuation != 990 {
		t.Errorf("expected adjusted valuation 990, got %f", res.AdjustedValuation)
	}
	if res.AdjustedShareCount != 109 {
		t.Errorf("expected adjusted shares 109, got %f", res.AdjustedShareCount)
	}
	if math.Abs(res.AdjustedPricePerShare-990.0/109.0) > 1e-12 {
		t.Errorf("expected price per share %f, got %f", 990.0/109.0, res.AdjustedPricePerShare)
	}
	if res.Iterations != 1 || res.Converged {
		t.Errorf("expected one unconverged pass, got iterations=%d converged=%t", res.Iterations, res.Converged)
	}
}

func TestRun_SuppliedBaseValuationWithoutMultiples(t *testing.T) {
	in := sampleInput()
	in.Assumptions.ValuationMultiples = nil

	res, err := Run(in, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Blended != nil {
		t.Error("expected no blended breakdown")
	}
	if res.BaseValuation != 900 {
		t.Errorf("expected supplied base valuation 900, got %f", res.BaseValuation)
	}
}

func TestRun_DemandBoost(t *testing.T) {
	in := sampleInput()
	in.Assumptions.AnchorOrders = []AnchorOrder{{Investor: "Sovereign fund", AmountMillions: 200}}

	res, err := Run(in, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.DemandBoostMultiplier-1.2) > 1e-12 {
		t.Errorf("expected capped boost 1.20, got %f", res.DemandBoostMultiplier)
	}
	if math.Abs(res.BoostedValuation-1200) > 1e-9 {
		t.Errorf("expected boosted valuation 1200, got %f", res.BoostedValuation)
	}
	if math.Abs(res.TentativeOfferPrice-9.6) > 1e-9 {
		t.Errorf("expected tentative offer 9.6, got %f", res.TentativeOfferPrice)
	}
}

func TestRun_Idempotent(t *testing.T) {
	first, err := Run(sampleInput(), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Run(sampleInput(), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("results differ (-first +second):\n%s", diff)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Error("serialized results are not byte-identical")
	}
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	in := sampleInput()
	before := sampleInput()

	if _, err := Run(in, DefaultConfig()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestRun_Iterated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Iterations = 50
	cfg.Tolerance = 1e-9

	res, err := Run(sampleInput(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Converged {
		t.Fatalf("expected convergence within %d iterations, stopped at %d", cfg.Iterations, res.Iterations)
	}
	if res.Iterations < 2 {
		t.Errorf("expected more than one pass, got %d", res.Iterations)
	}
	if math.Abs(res.AdjustedOfferPrice-res.TentativeOfferPrice) > 1e-9 {
		t.Errorf("offer not self-consistent: tentative %f vs adjusted %f", res.TentativeOfferPrice, res.AdjustedOfferPrice)
	}

	single, _ := Run(sampleInput(), DefaultConfig())
	if res.TentativeOfferPrice >= single.TentativeOfferPrice {
		t.Errorf("dilution should pull the converged offer below the single-pass price: %f vs %f", res.TentativeOfferPrice, single.TentativeOfferPrice)
	}
}

func TestRun_SeedsWithoutShareCount(t *testing.T) {
	in := EngineInput{
		Assumptions: IPOAssumptions{
			Convertibles: []ConvertibleInstrument{{Name: "Note", AmountMillions: 10, TriggerType: TriggerAtIPOPrice}},
		},
		BaseValuation:    100,
		TheoreticalPrice: 6,
		TentativeOffer:   5,
	}

	res, err := Run(in, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TentativeOfferPrice != 5 {
		t.Errorf("expected seed offer 5, got %f", res.TentativeOfferPrice)
	}
	if res.AdjustedShareCount != 2 {
		t.Errorf("expected 2 shares, got %f", res.AdjustedShareCount)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input func() EngineInput
		field string
	}{
		{"no share count and no seed", func() EngineInput {
			in := sampleInput()
			in.Assumptions.PreIPOSharesMillions = 0
			return in
		}, "pre_ipo_shares_millions"},
		{"negative valuation", func() EngineInput {
			in := sampleInput()
			in.Assumptions.ValuationMultiples = nil
			in.BaseValuation = -50
			return in
		}, "tentative_offer_price"},
		{"bad probability", func() EngineInput {
			in := sampleInput()
			in.Assumptions.Convertibles[0].Probability = floatPtr(3)
			return in
		}, "convertibles[0].probability"},
		{"litigation exceeds equity", func() EngineInput {
			return EngineInput{
				Assumptions: IPOAssumptions{
					PreIPOSharesMillions: 100,
					Contingencies: []ContingentLiability{
						{Name: "Class action", Type: LiabilityLitigation, PaymentMillions: floatPtr(5000), Probability: floatPtr(1)},
					},
				},
				BaseValuation: 1000,
			}
		}, "adjusted_offer_price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.input(), DefaultConfig())
			var verr *ValuationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValuationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestRun_AuditLog(t *testing.T) {
	res, err := Run(sampleInput(), DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(res.Logs, "\n")
	for _, tag := range []string{"[BLEND]", "[BOOST]", "[PRICE]", "[CONV]", "[CONTINGENT]", "[OPTIONS]", "[RESULT]"} {
		if !strings.Contains(joined, tag) {
			t.Errorf("expected %s entry in logs", tag)
		}
	}
}

func TestRun_NegativeOfferSameInBothModes(t *testing.T) {
	in := EngineInput{
		Assumptions: IPOAssumptions{
			PreIPOSharesMillions: 100,
			Contingencies: []ContingentLiability{
				{Name: "Class action", Type: LiabilityLitigation, PaymentMillions: floatPtr(5000), Probability: floatPtr(1)},
			},
		},
		BaseValuation: 1000,
	}

	for _, iterations := range []int{1, 5} {
		cfg := DefaultConfig()
		cfg.Iterations = iterations
		res, err := Run(in, cfg)
		var verr *ValuationError
		if !errors.As(err, &verr) || verr.Field != "adjusted_offer_price" {
			t.Errorf("iterations=%d: expected adjusted_offer_price error, got res=%v err=%v", iterations, res, err)
		}
	}
}
