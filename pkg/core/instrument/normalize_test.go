package instrument

import (
	"errors"
	"math"
	"testing"
)

func TestNormalize_Defaults(t *testing.T) {
	a := IPOAssumptions{
		PreIPOSharesMillions: 100,
		Convertibles:         []ConvertibleInstrument{{Name: "Note", TriggerType: TriggerAtIPOPrice, AmountMillions: 10}},
		Contingencies:        []ContingentLiability{{Name: "Earnout", Type: LiabilityEarnout, SharesMillions: floatPtr(1)}},
		StrategicDeals:       []StrategicDeal{{Investor: "Partner"}},
		EmployeeOptions:      &EmployeeOptionPool{SharesMillions: 5, AvgStrikePrice: 2},
	}

	out, err := Normalize(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.ValuationMultiples == nil || out.AnchorOrders == nil {
		t.Error("absent arrays should become empty slices")
	}
	if out.ValuationBasis != MultipleRevenue {
		t.Errorf("expected revenue basis, got %s", out.ValuationBasis)
	}
	if out.Convertibles[0].Probability == nil || *out.Convertibles[0].Probability != 1.0 {
		t.Error("absent convertible probability should default to 1.0")
	}
	if out.Contingencies[0].Probability == nil || *out.Contingencies[0].Probability != 1.0 {
		t.Error("absent contingency probability should default to 1.0")
	}
	if out.StrategicDeals[0].PriceType != PriceAtIPO {
		t.Errorf("expected ipo_price default, got %s", out.StrategicDeals[0].PriceType)
	}
	if out.EmployeeOptions.VestedPercent == nil || *out.EmployeeOptions.VestedPercent != 1.0 {
		t.Error("absent vested percent should default to 1.0")
	}

	// Input untouched
	if a.Convertibles[0].Probability != nil {
		t.Error("Normalize must not mutate its input")
	}
	if out.EmployeeOptions == a.EmployeeOptions {
		t.Error("Normalize must copy the option pool")
	}
}

func TestNormalize_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		a     IPOAssumptions
		field string
	}{
		{"probability above one", IPOAssumptions{Convertibles: []ConvertibleInstrument{{TriggerType: TriggerAtIPOPrice, Probability: floatPtr(1.5)}}}, "convertibles[0].probability"},
		{"negative probability", IPOAssumptions{Contingencies: []ContingentLiability{{Type: LiabilityRoyalty, Probability: floatPtr(-0.5)}}}, "contingencies[0].probability"},
		{"unknown trigger", IPOAssumptions{Convertibles: []ConvertibleInstrument{{TriggerType: "whenever"}}}, "convertibles[0].trigger_type"},
		{"unknown liability", IPOAssumptions{Contingencies: []ContingentLiability{{Type: "tax"}}}, "contingencies[0].type"},
		{"discount out of range", IPOAssumptions{IPODiscount: floatPtr(1.0)}, "ipo_discount"},
		{"non-finite revenue", IPOAssumptions{LTMRevenueMillions: math.NaN()}, "ltm_revenue_millions"},
		{"vested above one", IPOAssumptions{EmployeeOptions: &EmployeeOptionPool{VestedPercent: floatPtr(2)}}, "employee_options.vested_percent"},
		{"negative raise", IPOAssumptions{PrimaryRaiseMillions: -5}, "primary_raise_millions"},
		{"negative convertible amount", IPOAssumptions{Convertibles: []ConvertibleInstrument{{TriggerType: TriggerAtIPOPrice, AmountMillions: -10, Probability: floatPtr(0.5)}}}, "convertibles[0].amount_millions"},
		{"negative fixed shares", IPOAssumptions{Convertibles: []ConvertibleInstrument{{TriggerType: TriggerConditional, AmountMillions: 10, FixedShares: floatPtr(-1)}}}, "convertibles[0].fixed_shares"},
		{"negative contingent shares", IPOAssumptions{Contingencies: []ContingentLiability{{Type: LiabilityEarnout, SharesMillions: floatPtr(-2)}}}, "contingencies[0].shares_millions"},
		{"negative payment", IPOAssumptions{Contingencies: []ContingentLiability{{Type: LiabilityLitigation, PaymentMillions: floatPtr(-20)}}}, "contingencies[0].payment_millions"},
		{"negative strike", IPOAssumptions{Contingencies: []ContingentLiability{{Type: LiabilityWarrant, SharesMillions: floatPtr(1), StrikePrice: floatPtr(-3)}}}, "contingencies[0].strike_price"},
		{"negative deal shares", IPOAssumptions{StrategicDeals: []StrategicDeal{{Investor: "x", SharesMillions: floatPtr(-1)}}}, "strategic_deals[0].shares_millions"},
		{"negative deal amount", IPOAssumptions{StrategicDeals: []StrategicDeal{{Investor: "x", AmountMillions: floatPtr(-1), IsAnchorOrder: true}}}, "strategic_deals[0].amount_millions"},
		{"negative anchor", IPOAssumptions{AnchorOrders: []AnchorOrder{{Investor: "x", AmountMillions: -50}}}, "anchor_orders[0].amount_millions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.a)
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
