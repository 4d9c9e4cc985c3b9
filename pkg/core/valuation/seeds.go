package valuation

import (
	"ipo_valuation/pkg/core/instrument"
)

// Seeds are the caller-side precomputed prices the waterfall is invoked with
type Seeds struct {
	BaseValuation    float64 `json:"base_valuation"`
	TheoreticalPrice float64 `json:"theoretical_price"`
	OfferPrice       float64 `json:"offer_price"`
	IPODiscount      float64 `json:"ipo_discount"`
}

// ComputeSeeds derives the tentative prices from a pre-money valuation:
// theoretical = valuation / pre-IPO shares, offer = theoretical * (1 - discount).
// The assumptions' discount wins over defaultDiscount.
func ComputeSeeds(a instrument.IPOAssumptions, baseValuation, defaultDiscount float64) (Seeds, error) {
	discount := defaultDiscount
	if a.IPODiscount != nil {
		discount = *a.IPODiscount
	}
	if discount < 0 || discount >= 1 {
		return Seeds{}, &instrument.ValuationError{Field: "ipo_discount", Value: discount, Reason: "must be within [0, 1)"}
	}
	if a.PreIPOSharesMillions <= 0 {
		return Seeds{}, &instrument.ValuationError{Field: "pre_ipo_shares_millions", Value: a.PreIPOSharesMillions, Reason: "must be greater than zero"}
	}
	if baseValuation <= 0 {
		return Seeds{}, &instrument.ValuationError{Field: "base_valuation", Value: baseValuation, Reason: "must be greater than zero"}
	}

	theoretical := baseValuation / a.PreIPOSharesMillions
	return Seeds{
		BaseValuation:    baseValuation,
		TheoreticalPrice: theoretical,
		OfferPrice:       theoretical * (1 - discount),
		IPODiscount:      discount,
	}, nil
}

// BaseValuationFromDCF values the issuer's equity with a DCF for use as the pre-money seed
func BaseValuationFromDCF(input DCFInput) (float64, error) {
	res, err := CalculateDCF(input)
	if err != nil {
		return 0, err
	}
	return res.EquityValue, nil
}

// EngineInputFor bundles assumptions and seeds for instrument.Run
func EngineInputFor(a instrument.IPOAssumptions, seeds Seeds) instrument.EngineInput {
	return instrument.EngineInput{
		Assumptions:      a,
		BaseValuation:    seeds.BaseValuation,
		TheoreticalPrice: seeds.TheoreticalPrice,
		TentativeOffer:   seeds.OfferPrice,
	}
}

// PrepareInput fills missing seeds. Supplied seeds are kept when both prices
// are positive. Otherwise the seed base is baseValuation, or the blended
// multiple valuation when none was supplied. Without a base or a share count
// the input is returned unseeded and instrument.Run reports what is missing.
func PrepareInput(a instrument.IPOAssumptions, given Seeds, cfg instrument.Config) (instrument.EngineInput, Seeds, error) {
	if given.TheoreticalPrice > 0 && given.OfferPrice > 0 {
		return EngineInputFor(a, given), given, nil
	}

	norm, err := instrument.Normalize(a)
	if err != nil {
		return instrument.EngineInput{}, given, err
	}

	base := given.BaseValuation
	if base == 0 && len(norm.ValuationMultiples) > 0 {
		base = instrument.CalculateBlendedValuation(norm.BaseMetric(), norm.ValuationMultiples, norm.RevenueGrowthRate, cfg).Valuation
	}
	if base == 0 || norm.PreIPOSharesMillions == 0 {
		return EngineInputFor(a, given), given, nil
	}

	seeds, err := ComputeSeeds(norm, base, cfg.IPODiscount)
	if err != nil {
		return instrument.EngineInput{}, given, err
	}
	return EngineInputFor(a, seeds), seeds, nil
}

// GrowthPath fades revenue growth linearly from Start to End over Years
type GrowthPath struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Years int     `json:"years"`
}

// DCFSeed values the issuer from a projected FCF stream when no pre-money
// valuation is supplied. GrowthPath fills Projection.RevenueGrowth when that is empty.
type DCFSeed struct {
	Projection     ProjectionInput `json:"projection"`
	GrowthPath     *GrowthPath     `json:"growth_path,omitempty"`
	Capital        WACCInput       `json:"capital"`
	TerminalGrowth float64         `json:"terminal_growth"`
	NetDebt        float64         `json:"net_debt"`
}

// EquityValue runs projection, WACC and DCF in sequence
func (s DCFSeed) EquityValue(shares float64) (float64, error) {
	proj := s.Projection
	if len(proj.RevenueGrowth) == 0 && s.GrowthPath != nil {
		proj.RevenueGrowth = GrowthFade(s.GrowthPath.Start, s.GrowthPath.End, s.GrowthPath.Years)
	}
	years, err := ProjectFreeCashFlows(proj)
	if err != nil {
		return 0, err
	}
	w, err := CalculateWACC(s.Capital)
	if err != nil {
		return 0, err
	}
	return BaseValuationFromDCF(DCFInputFromProjection(years, w.WACC, s.TerminalGrowth, shares, s.NetDebt))
}

// ResolveBase returns base when set, otherwise the DCF equity value when a DCF seed is given
func ResolveBase(base float64, dcf *DCFSeed, shares float64) (float64, error) {
	if base != 0 || dcf == nil {
		return base, nil
	}
	return dcf.EquityValue(shares)
}

// WithPeerMultiples fills the valuation multiples from peers when the
// assumptions carry none. Suggested multiples are all revenue-based, so the
// valuation basis is set to revenue. The input is not modified.
func WithPeerMultiples(a instrument.IPOAssumptions, peers []PeerComparable) instrument.IPOAssumptions {
	if len(a.ValuationMultiples) > 0 || len(peers) == 0 {
		return a
	}
	target := MetricInput{
		Revenue:   a.LTMRevenueMillions,
		EBITDA:    a.LTMEBITDAMillions,
		NetIncome: a.LTMNetIncomeMillions,
		SharesOut: a.PreIPOSharesMillions,
	}
	suggested := SuggestMultiples(target, peers)
	if len(suggested) == 0 {
		return a
	}
	a.ValuationMultiples = suggested
	a.ValuationBasis = instrument.MultipleRevenue
	return a
}
