package instrument

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestVariants_UnknownTagsNamedByNormalize(t *testing.T) {
	var c ConvertibleInstrument
	if err := json.Unmarshal([]byte(`{"name":"n","trigger_type":" LOWER_OF "}`), &c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.TriggerType != TriggerLowerOf {
		t.Errorf("expected lower_of, got %s", c.TriggerType)
	}

	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"trigger", `{"convertibles":[{"name":"n","trigger_type":"sometimes"}]}`, "convertibles[0].trigger_type"},
		{"liability", `{"contingencies":[{"type":"bonus"}]}`, "contingencies[0].type"},
		{"price", `{"strategic_deals":[{"investor":"x","price_type":"gift"}]}`, "strategic_deals[0].price_type"},
		{"multiple", `{"valuation_multiples":[{"name":"m","type":"gmv","multiple":3,"weight":1}]}`, "valuation_multiples[0].type"},
		{"basis", `{"valuation_basis":"gmv"}`, "valuation_basis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a IPOAssumptions
			if err := json.Unmarshal([]byte(tt.doc), &a); err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			_, err := Normalize(a)
			var verr *ValuationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("expected %s error, got %v", tt.field, err)
			}
		})
	}
}

// Every declared variant must be handled by its resolver
func TestVariants_Exhaustive(t *testing.T) {
	for _, tt := range AllTriggerTypes() {
		inst := ConvertibleInstrument{
			Name:              string(tt),
			AmountMillions:    10,
			TriggerType:       tt,
			TriggerPrice:      floatPtr(5),
			TriggerMultiplier: floatPtr(0.8),
			FixedShares:       floatPtr(1),
		}
		if _, err := ResolveConvertibles([]ConvertibleInstrument{inst}, 10, nil); err != nil {
			t.Errorf("trigger type %s not handled: %v", tt, err)
		}
	}

	for _, lt := range AllLiabilityTypes() {
		l := ContingentLiability{Name: string(lt), Type: lt, SharesMillions: floatPtr(1), PaymentMillions: floatPtr(1), StrikePrice: floatPtr(1)}
		if _, err := ResolveContingencies([]ContingentLiability{l}, 10); err != nil {
			t.Errorf("liability type %s not handled: %v", lt, err)
		}
	}

	for _, pt := range AllPriceTypes() {
		d := StrategicDeal{Investor: string(pt), PriceType: pt, FixedPrice: floatPtr(9), SharesMillions: floatPtr(1)}
		if _, err := PriceStrategicDeals([]StrategicDeal{d}, 10); err != nil {
			t.Errorf("price type %s not handled: %v", pt, err)
		}
	}

	for _, mt := range AllMultipleTypes() {
		a := IPOAssumptions{ValuationBasis: mt, LTMRevenueMillions: 1, LTMEBITDAMillions: 2, LTMNetIncomeMillions: 3}
		if a.BaseMetric() == 0 {
			t.Errorf("multiple type %s has no base metric", mt)
		}
	}
}
