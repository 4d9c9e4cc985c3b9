package instrument

import (
	"fmt"
	"math"
)

// passResult holds the outputs of one resolution pass (steps 4-6)
type passResult struct {
	convertibles  ConvertibleSummary
	contingencies ContingencySummary
	deals         []DealResolution
	options       OptionDilutionResult

	adjustedValuation float64
	adjustedShares    float64
	pricePerShare     float64
	adjustedOffer     float64
	logs              []string
}

// Run executes the valuation waterfall:
//
//  1. blended valuation (or the supplied base valuation)
//  2. anchor demand boost
//  3. tentative price from the boosted valuation and the pre-offer share count
//  4. convertibles
//  5. contingent liabilities
//  6. employee option dilution
//
// Steps 4-6 all use the single tentative offer price from step 3. With
// cfg.Iterations > 1 the price is re-derived from the adjusted valuation and
// share count and steps 4-6 repeat until the offer price moves less than
// cfg.Tolerance. The result is a pure function of input and cfg.
func Run(input EngineInput, cfg Config) (*InstrumentEngineResult, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a, err := Normalize(input.Assumptions)
	if err != nil {
		return nil, err
	}

	res := &InstrumentEngineResult{
		OriginalShareCount: a.PreIPOSharesMillions,
		Logs:               []string{},
	}
	logf := func(format string, args ...interface{}) {
		res.Logs = append(res.Logs, fmt.Sprintf(format, args...))
	}

	discount := cfg.IPODiscount
	if a.IPODiscount != nil {
		discount = *a.IPODiscount
	}
	res.IPODiscount = discount

	// 1. Base valuation
	valuation := input.BaseValuation
	if len(a.ValuationMultiples) > 0 {
		blended := CalculateBlendedValuation(a.BaseMetric(), a.ValuationMultiples, a.RevenueGrowthRate, cfg)
		res.Blended = &blended
		valuation = blended.Valuation
		logf("[BLEND] %d multiples on %s %.2f: base %.4fx, effective %.4fx -> valuation %.2f",
			len(blended.Components), a.ValuationBasis, blended.BaseMetric, blended.BaseBlendedMultiple, blended.BlendedMultiple, blended.Valuation)
		if blended.GrowthPremiumApplied {
			logf("[BLEND] growth %.2f above threshold %.2f: premium %.2f%% applied",
				a.RevenueGrowthRate, cfg.GrowthPremiumThreshold, blended.GrowthPremiumPercent*100)
		}
	} else {
		logf("[BLEND] no valuation multiples; using supplied base valuation %.2f", valuation)
	}
	if err := checkFinite("base_valuation", valuation); err != nil {
		return nil, err
	}
	res.BaseValuation = valuation

	// 2. Anchor demand boost
	demand := ResolveAnchorDemand(a.StrategicDeals, a.AnchorOrders, input.TentativeOffer, a.PrimaryRaiseMillions, cfg)
	res.StrategicDeals = demand
	res.DemandBoostMultiplier = demand.DemandBoostMultiplier
	boosted := valuation * demand.DemandBoostMultiplier
	res.BoostedValuation = boosted
	logf("[BOOST] anchor demand %.2f vs raise %.2f (coverage %.4f): multiplier %.4f -> valuation %.2f",
		demand.TotalAnchorAmount, a.PrimaryRaiseMillions, demand.AnchorCoverage, demand.DemandBoostMultiplier, boosted)

	// 3. Tentative price
	theoretical, offer, err := tentativePrices(boosted, a.PreIPOSharesMillions, discount, input)
	if err != nil {
		return nil, err
	}
	logf("[PRICE] tentative theoretical %.4f, offer %.4f (discount %.2f%%)", theoretical, offer, discount*100)

	// 4-6. Resolution passes
	var pass *passResult
	for iter := 1; iter <= cfg.Iterations; iter++ {
		pass, err = resolvePass(a, cfg, boosted, offer, discount)
		if err != nil {
			return nil, err
		}
		res.Iterations = iter
		res.TentativeTheoreticalPrice = theoretical
		res.TentativeOfferPrice = offer

		prefix := ""
		if cfg.Iterations > 1 {
			prefix = fmt.Sprintf("[ITER %d] ", iter)
		}
		for _, line := range pass.logs {
			res.Logs = append(res.Logs, prefix+line)
		}

		if cfg.Iterations == 1 {
			break
		}
		if math.Abs(pass.adjustedOffer-offer) < cfg.Tolerance {
			res.Converged = true
			logf("[ITER %d] converged: offer %.6f", iter, offer)
			break
		}
		if iter < cfg.Iterations {
			offer = pass.adjustedOffer
			theoretical = pass.pricePerShare
		}
	}
	if cfg.Iterations > 1 && !res.Converged {
		logf("[ITER] stopped after %d iterations without converging", res.Iterations)
	}

	res.Convertibles = pass.convertibles
	res.Contingencies = pass.contingencies
	res.StrategicDeals.Deals = pass.deals
	res.EmployeeOptions = pass.options
	res.AdjustedValuation = pass.adjustedValuation
	res.AdjustedShareCount = pass.adjustedShares
	res.AdjustedPricePerShare = pass.pricePerShare
	res.AdjustedOfferPrice = pass.adjustedOffer
	logf("[RESULT] adjusted valuation %.2f over %.4f shares: %.4f per share, offer %.4f",
		res.AdjustedValuation, res.AdjustedShareCount, res.AdjustedPricePerShare, res.AdjustedOfferPrice)

	return res, nil
}

// tentativePrices derives the provisional per-share prices from the boosted
// valuation and the pre-offer share count. Without a share count the caller's
// seeds are used.
func tentativePrices(boosted, shares, discount float64, input EngineInput) (float64, float64, error) {
	var theoretical, offer float64
	switch {
	case shares > 0:
		theoretical = boosted / shares
		offer = theoretical * (1 - discount)
	case input.TentativeOffer > 0:
		theoretical = input.TheoreticalPrice
		offer = input.TentativeOffer
	default:
		return 0, 0, newValuationError("pre_ipo_shares_millions", shares, "needed to derive a tentative price")
	}

	if err := checkPositive("tentative_offer_price", offer); err != nil {
		return 0, 0, err
	}
	return theoretical, offer, nil
}

// resolvePass runs steps 4-6 at one tentative offer. Deals are re-priced at
// that offer; the demand boost stays the one sized in step 2.
func resolvePass(a IPOAssumptions, cfg Config, boosted, offer, discount float64) (*passResult, error) {
	p := &passResult{}
	logf := func(format string, args ...interface{}) {
		p.logs = append(p.logs, fmt.Sprintf(format, args...))
	}

	summary, err := ResolveStrategicDeals(a.StrategicDeals, a.AnchorOrders, offer, a.PrimaryRaiseMillions, cfg)
	if err != nil {
		return nil, err
	}
	p.deals = summary.Deals
	for _, d := range summary.Deals {
		logf("[DEAL] %s (%s): price %.4f, premium %+.2f%%, %.4f shares, %.2f amount",
			d.Investor, d.PriceType, d.EffectivePrice, d.ImpliedPremium*100, d.SharesMillions, d.AmountMillions)
	}

	shares := a.PreIPOSharesMillions
	valuation := boosted

	// 4. Convertibles
	var revenue *float64
	if a.LTMRevenueMillions > 0 {
		r := a.LTMRevenueMillions
		revenue = &r
	}
	conv, err := ResolveConvertibles(a.Convertibles, offer, revenue)
	if err != nil {
		return nil, err
	}
	p.convertibles = conv
	for _, c := range conv.Instruments {
		logf("[CONV] %s (%s): triggered=%t, price %.4f, issued %.4f, p=%.2f, expected %.4f",
			c.Name, c.TriggerType, c.Triggered, c.ConversionPrice, c.SharesIssued, c.Probability, c.ExpectedShares)
	}
	shares += conv.ExpectedShares
	logf("[CONV] expected %.4f, deterministic %.4f -> shares %.4f", conv.ExpectedShares, conv.DeterministicShares, shares)

	// 5. Contingent liabilities
	cont, err := ResolveContingencies(a.Contingencies, offer)
	if err != nil {
		return nil, err
	}
	p.contingencies = cont
	for _, c := range cont.Liabilities {
		logf("[CONTINGENT] %s (%s): p=%.2f, expected shares %.4f, expected cost %.2f",
			c.Name, c.Type, c.Probability, c.ExpectedShares, c.ExpectedCost)
	}
	shares += cont.ExpectedShares
	valuation -= cont.ExpectedCost
	logf("[CONTINGENT] shares %.4f, valuation %.2f", shares, valuation)

	// 6. Employee options
	opt := CalculateOptionDilution(a.EmployeeOptions, offer)
	p.options = opt
	if a.EmployeeOptions != nil {
		if opt.InTheMoney {
			logf("[OPTIONS] vested %.4f at %.4f: proceeds %.2f buy back %.4f -> net %.4f",
				opt.VestedOptions, a.EmployeeOptions.AvgStrikePrice, opt.Proceeds, opt.SharesBoughtBack, opt.NetDilution)
		} else {
			logf("[OPTIONS] strike %.4f at or above offer %.4f: no dilution", a.EmployeeOptions.AvgStrikePrice, offer)
		}
	}
	shares += opt.NetDilution

	if err := checkFinite("adjusted_valuation", valuation); err != nil {
		return nil, err
	}
	if err := checkPositive("adjusted_share_count", shares); err != nil {
		return nil, err
	}

	p.adjustedValuation = valuation
	p.adjustedShares = shares
	p.pricePerShare = valuation / shares
	p.adjustedOffer = p.pricePerShare * (1 - discount)
	if err := checkPositive("adjusted_offer_price", p.adjustedOffer); err != nil {
		return nil, err
	}
	return p, nil
}
