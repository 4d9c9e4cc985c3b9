package instrument

import (
	"math"
	"testing"
)

func TestDemandBoostMultiplier(t *testing.T) {
	tests := []struct {
		name   string
		anchor float64
		raise  float64
		want   float64
	}{
		{"no anchors", 0, 500, 1.0},
		{"half covered", 250, 500, 1.10},
		{"fully covered", 500, 500, 1.20},
		{"oversubscribed is capped", 1500, 500, 1.20},
		{"no raise target", 500, 0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DemandBoostMultiplier(tt.anchor, tt.raise, 0.20)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}

	if got := DemandBoostMultiplier(0, 500, 0.20); got != 1.0 {
		t.Errorf("zero anchor must be exactly 1.0, got %v", got)
	}
}

func TestResolveStrategicDeals(t *testing.T) {
	deals := []StrategicDeal{
		{Investor: "Partner A", PriceType: PriceIPOPremium, PremiumPercent: floatPtr(0.10), SharesMillions: floatPtr(2)},
		{Investor: "Partner B", PriceType: PriceDiscounted, DiscountPercent: floatPtr(0.05), AmountMillions: floatPtr(19)},
		{Investor: "Partner C", PriceType: PriceFixed, FixedPrice: floatPtr(12), AmountMillions: floatPtr(60), IsAnchorOrder: true},
		{Investor: "Partner D", PriceType: PriceAtIPO, SharesMillions: floatPtr(1), IsAnchorOrder: true},
	}
	anchors := []AnchorOrder{{Investor: "Sovereign fund", AmountMillions: 40}}

	sum, err := ResolveStrategicDeals(deals, anchors, 10, 200, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantPrices := []float64{11, 9.5, 12, 10}
	for i, want := range wantPrices {
		if math.Abs(sum.Deals[i].EffectivePrice-want) > 1e-12 {
			t.Errorf("%s: expected price %f, got %f", sum.Deals[i].Investor, want, sum.Deals[i].EffectivePrice)
		}
	}

	if math.Abs(sum.Deals[0].ImpliedPremium-0.10) > 1e-12 {
		t.Errorf("expected +10%% premium, got %f", sum.Deals[0].ImpliedPremium)
	}
	if math.Abs(sum.Deals[1].ImpliedPremium+0.05) > 1e-12 {
		t.Errorf("expected -5%% premium, got %f", sum.Deals[1].ImpliedPremium)
	}
	if math.Abs(sum.Deals[1].SharesMillions-2) > 1e-12 {
		t.Errorf("expected 19/9.5 = 2 shares, got %f", sum.Deals[1].SharesMillions)
	}
	if math.Abs(sum.Deals[0].AmountMillions-22) > 1e-12 {
		t.Errorf("expected 2 * 11 = 22 amount, got %f", sum.Deals[0].AmountMillions)
	}

	// 40 order + 60 flagged deal + 1 share at 10
	if math.Abs(sum.TotalAnchorAmount-110) > 1e-12 {
		t.Errorf("expected anchor total 110, got %f", sum.TotalAnchorAmount)
	}
	if math.Abs(sum.DemandBoostMultiplier-1.11) > 1e-12 {
		t.Errorf("expected multiplier 1.11, got %f", sum.DemandBoostMultiplier)
	}
}

func TestResolveStrategicDeals_Errors(t *testing.T) {
	tests := []struct {
		name string
		deal StrategicDeal
	}{
		{"fixed without price", StrategicDeal{Investor: "X", PriceType: PriceFixed}},
		{"discount of 100%", StrategicDeal{Investor: "X", PriceType: PriceDiscounted, DiscountPercent: floatPtr(1)}},
		{"unknown price type", StrategicDeal{Investor: "X", PriceType: "barter"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ResolveStrategicDeals([]StrategicDeal{tt.deal}, nil, 10, 100, DefaultConfig()); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
