package instrument

import (
	"math"
	"testing"
)

func TestResolveContingencies(t *testing.T) {
	liabs := []ContingentLiability{
		{Name: "Acquisition earnout", Type: LiabilityEarnout, SharesMillions: floatPtr(4), PaymentMillions: floatPtr(100), Probability: floatPtr(0.5)},
		{Name: "Founder grant", Type: LiabilityGrant, SharesMillions: floatPtr(1)},
		{Name: "Approval milestone", Type: LiabilityMilestone, SharesMillions: floatPtr(2), Probability: floatPtr(0.25)},
		{Name: "Lender warrants", Type: LiabilityWarrant, SharesMillions: floatPtr(3), StrikePrice: floatPtr(6), Probability: floatPtr(0.8)},
		{Name: "Patent suit", Type: LiabilityLitigation, SharesMillions: floatPtr(9), PaymentMillions: floatPtr(40), Probability: floatPtr(0.3)},
		{Name: "Licensor royalty", Type: LiabilityRoyalty, PaymentMillions: floatPtr(10)},
	}

	sum, err := ResolveContingencies(liabs, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		idx        int
		wantShares float64
		wantCost   float64
	}{
		{0, 2, 0}, // earnout never costs cash
		{1, 1, 0}, // absent probability = 1
		{2, 0.5, 0},
		{3, 2.4, 9.6}, // spread 4 * 3 * 0.8
		{4, 0, 12},    // litigation never dilutes
		{5, 0, 10},
	}
	for _, tt := range tests {
		got := sum.Liabilities[tt.idx]
		if math.Abs(got.ExpectedShares-tt.wantShares) > 1e-12 {
			t.Errorf("%s: expected shares %f, got %f", got.Name, tt.wantShares, got.ExpectedShares)
		}
		if math.Abs(got.ExpectedCost-tt.wantCost) > 1e-12 {
			t.Errorf("%s: expected cost %f, got %f", got.Name, tt.wantCost, got.ExpectedCost)
		}
	}

	if math.Abs(sum.ExpectedShares-5.9) > 1e-12 {
		t.Errorf("expected total shares 5.9, got %f", sum.ExpectedShares)
	}
	if math.Abs(sum.ExpectedCost-31.6) > 1e-12 {
		t.Errorf("expected total cost 31.6, got %f", sum.ExpectedCost)
	}
}

func TestResolveContingencies_WarrantOutOfTheMoney(t *testing.T) {
	liabs := []ContingentLiability{{Name: "Warrants", Type: LiabilityWarrant, SharesMillions: floatPtr(5), StrikePrice: floatPtr(15)}}

	sum, err := ResolveContingencies(liabs, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Liabilities[0].Spread != 0 || sum.ExpectedCost != 0 {
		t.Errorf("negative spread must floor at zero, got spread=%f cost=%f", sum.Liabilities[0].Spread, sum.ExpectedCost)
	}
	if sum.ExpectedShares != 5 {
		t.Errorf("warrants still dilute, expected 5 got %f", sum.ExpectedShares)
	}
}

func TestResolveContingencies_RejectsBadProbability(t *testing.T) {
	liabs := []ContingentLiability{{Name: "Bad", Type: LiabilityRoyalty, PaymentMillions: floatPtr(1), Probability: floatPtr(-0.1)}}
	if _, err := ResolveContingencies(liabs, 10); err == nil {
		t.Fatal("expected error for negative probability")
	}
}
