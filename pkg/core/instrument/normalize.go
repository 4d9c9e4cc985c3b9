package instrument

import (
	"fmt"
)

// Normalize returns a validated deep copy of the assumptions with defaults
// filled: absent arrays become empty, absent probabilities become 1.0 and an
// absent vested percent becomes 1.0. Out-of-range probabilities and unknown
// variants are rejected with a ValuationError naming the field.
func Normalize(a IPOAssumptions) (IPOAssumptions, error) {
	out := a

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"ltm_revenue_millions", a.LTMRevenueMillions},
		{"ltm_ebitda_millions", a.LTMEBITDAMillions},
		{"ltm_net_income_millions", a.LTMNetIncomeMillions},
		{"revenue_growth_rate", a.RevenueGrowthRate},
		{"pre_ipo_shares_millions", a.PreIPOSharesMillions},
		{"primary_raise_millions", a.PrimaryRaiseMillions},
	} {
		if err := checkFinite(f.name, f.v); err != nil {
			return out, err
		}
	}
	if a.PreIPOSharesMillions < 0 {
		return out, newValuationError("pre_ipo_shares_millions", a.PreIPOSharesMillions, "must not be negative")
	}
	if a.PrimaryRaiseMillions < 0 {
		return out, newValuationError("primary_raise_millions", a.PrimaryRaiseMillions, "must not be negative")
	}
	if a.IPODiscount != nil {
		d := *a.IPODiscount
		if err := checkFinite("ipo_discount", d); err != nil {
			return out, err
		}
		if d < 0 || d >= 1 {
			return out, newValuationError("ipo_discount", d, "must be within [0, 1)")
		}
		out.IPODiscount = floatPtr(d)
	}
	if a.ValuationBasis == "" {
		out.ValuationBasis = MultipleRevenue
	} else if !a.ValuationBasis.Valid() {
		return out, newValuationError("valuation_basis", 0, fmt.Sprintf("unknown multiple type %q", a.ValuationBasis))
	}

	out.ValuationMultiples = make([]ValuationMultiple, 0, len(a.ValuationMultiples))
	for i, m := range a.ValuationMultiples {
		field := fmt.Sprintf("valuation_multiples[%d]", i)
		if m.Type != "" && !m.Type.Valid() {
			return out, newValuationError(field+".type", 0, fmt.Sprintf("unknown multiple type %q", m.Type))
		}
		if err := checkFinite(field+".multiple", m.Multiple); err != nil {
			return out, err
		}
		if err := checkFinite(field+".weight", m.Weight); err != nil {
			return out, err
		}
		out.ValuationMultiples = append(out.ValuationMultiples, m)
	}

	out.Convertibles = make([]ConvertibleInstrument, 0, len(a.Convertibles))
	for i, c := range a.Convertibles {
		field := fmt.Sprintf("convertibles[%d]", i)
		if !c.TriggerType.Valid() {
			return out, newValuationError(field+".trigger_type", 0, fmt.Sprintf("unknown trigger type %q", c.TriggerType))
		}
		p, err := normalizeProbability(field, c.Probability)
		if err != nil {
			return out, err
		}
		c.Probability = p
		if err := checkNonNegative(field+".amount_millions", &c.AmountMillions); err != nil {
			return out, err
		}
		if err := checkNonNegative(field+".fixed_shares", c.FixedShares); err != nil {
			return out, err
		}
		c.TriggerPrice = copyFloat(c.TriggerPrice)
		c.TriggerPrice2 = copyFloat(c.TriggerPrice2)
		c.TriggerMultiplier = copyFloat(c.TriggerMultiplier)
		c.FixedShares = copyFloat(c.FixedShares)
		out.Convertibles = append(out.Convertibles, c)
	}

	out.Contingencies = make([]ContingentLiability, 0, len(a.Contingencies))
	for i, l := range a.Contingencies {
		field := fmt.Sprintf("contingencies[%d]", i)
		if !l.Type.Valid() {
			return out, newValuationError(field+".type", 0, fmt.Sprintf("unknown liability type %q", l.Type))
		}
		p, err := normalizeProbability(field, l.Probability)
		if err != nil {
			return out, err
		}
		l.Probability = p
		for _, f := range []struct {
			name string
			v    *float64
		}{
			{".shares_millions", l.SharesMillions},
			{".payment_millions", l.PaymentMillions},
			{".strike_price", l.StrikePrice},
		} {
			if err := checkNonNegative(field+f.name, f.v); err != nil {
				return out, err
			}
		}
		l.SharesMillions = copyFloat(l.SharesMillions)
		l.PaymentMillions = copyFloat(l.PaymentMillions)
		l.StrikePrice = copyFloat(l.StrikePrice)
		out.Contingencies = append(out.Contingencies, l)
	}

	out.StrategicDeals = make([]StrategicDeal, 0, len(a.StrategicDeals))
	for i, d := range a.StrategicDeals {
		field := fmt.Sprintf("strategic_deals[%d]", i)
		if !d.PriceType.Valid() {
			return out, newValuationError(field+".price_type", 0, fmt.Sprintf("unknown price type %q", d.PriceType))
		}
		if d.PriceType == "" {
			d.PriceType = PriceAtIPO
		}
		if err := checkNonNegative(field+".shares_millions", d.SharesMillions); err != nil {
			return out, err
		}
		if err := checkNonNegative(field+".amount_millions", d.AmountMillions); err != nil {
			return out, err
		}
		d.PremiumPercent = copyFloat(d.PremiumPercent)
		d.DiscountPercent = copyFloat(d.DiscountPercent)
		d.FixedPrice = copyFloat(d.FixedPrice)
		d.SharesMillions = copyFloat(d.SharesMillions)
		d.AmountMillions = copyFloat(d.AmountMillions)
		out.StrategicDeals = append(out.StrategicDeals, d)
	}

	out.AnchorOrders = make([]AnchorOrder, 0, len(a.AnchorOrders))
	for i, o := range a.AnchorOrders {
		if err := checkNonNegative(fmt.Sprintf("anchor_orders[%d].amount_millions", i), &o.AmountMillions); err != nil {
			return out, err
		}
		out.AnchorOrders = append(out.AnchorOrders, o)
	}

	if a.EmployeeOptions != nil {
		pool := *a.EmployeeOptions
		vested := val(pool.VestedPercent, 1.0)
		if err := checkProbability("employee_options.vested_percent", vested); err != nil {
			return out, err
		}
		pool.VestedPercent = floatPtr(vested)
		if pool.SharesMillions < 0 {
			return out, newValuationError("employee_options.shares_millions", pool.SharesMillions, "must not be negative")
		}
		out.EmployeeOptions = &pool
	}

	return out, nil
}

// checkNonNegative accepts an absent value
func checkNonNegative(field string, p *float64) error {
	if p == nil {
		return nil
	}
	if err := checkFinite(field, *p); err != nil {
		return err
	}
	if *p < 0 {
		return newValuationError(field, *p, "must not be negative")
	}
	return nil
}

func normalizeProbability(field string, p *float64) (*float64, error) {
	v := val(p, 1.0)
	if err := checkProbability(field+".probability", v); err != nil {
		return nil, err
	}
	return floatPtr(v), nil
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return floatPtr(*p)
}
