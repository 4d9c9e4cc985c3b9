package instrument

import (
	"fmt"
	"math"
)

// DemandBoostMultiplier scales valuation by anchor coverage of the raise:
// 1 + min(maxBoost, coverage * maxBoost). Full coverage reaches the cap.
func DemandBoostMultiplier(anchorAmount, raiseTarget, maxBoost float64) float64 {
	if raiseTarget <= 0 || anchorAmount <= 0 {
		return 1.0
	}
	return 1 + math.Min(maxBoost, (anchorAmount/raiseTarget)*maxBoost)
}

// AnchorDemand sums anchor dollar volume: explicit anchor orders plus strategic
// deals flagged as anchors. Share-denominated anchor deals are sized at seedPrice.
func AnchorDemand(deals []StrategicDeal, anchors []AnchorOrder, seedPrice float64) float64 {
	total := 0.0
	for _, a := range anchors {
		total += a.AmountMillions
	}
	for _, d := range deals {
		if !d.IsAnchorOrder {
			continue
		}
		switch {
		case d.AmountMillions != nil:
			total += *d.AmountMillions
		case d.SharesMillions != nil && seedPrice > 0:
			total += *d.SharesMillions * seedPrice
		}
	}
	return total
}

// ResolveStrategicDeals prices each strategic allocation against the tentative
// offer price and rolls anchor demand into the boost multiplier. Share-denominated
// anchor deals are sized at the same tentative price.
func ResolveStrategicDeals(deals []StrategicDeal, anchors []AnchorOrder, tentativePrice, raiseTarget float64, cfg Config) (DealSummary, error) {
	priced, err := PriceStrategicDeals(deals, tentativePrice)
	if err != nil {
		return DealSummary{}, err
	}
	summary := ResolveAnchorDemand(deals, anchors, tentativePrice, raiseTarget, cfg)
	summary.Deals = priced
	return summary, nil
}

// ResolveAnchorDemand aggregates anchor volume and derives the demand boost.
// The returned summary carries no priced deals.
func ResolveAnchorDemand(deals []StrategicDeal, anchors []AnchorOrder, sizingPrice, raiseTarget float64, cfg Config) DealSummary {
	summary := DealSummary{
		Deals:   []DealResolution{},
		Anchors: append([]AnchorOrder{}, anchors...),
	}
	summary.TotalAnchorAmount = AnchorDemand(deals, anchors, sizingPrice)
	if raiseTarget > 0 {
		summary.AnchorCoverage = summary.TotalAnchorAmount / raiseTarget
	}
	summary.DemandBoostMultiplier = DemandBoostMultiplier(summary.TotalAnchorAmount, raiseTarget, cfg.MaxDemandBoost)
	return summary
}

// PriceStrategicDeals resolves the effective price and size of each deal
func PriceStrategicDeals(deals []StrategicDeal, tentativePrice float64) ([]DealResolution, error) {
	out := make([]DealResolution, 0, len(deals))

	for i, d := range deals {
		field := fmt.Sprintf("strategic_deals[%d]", i)

		price, err := effectivePrice(field, d, tentativePrice)
		if err != nil {
			return out, err
		}

		res := DealResolution{
			Investor:       d.Investor,
			PriceType:      d.PriceType,
			EffectivePrice: price,
			IsAnchorOrder:  d.IsAnchorOrder,
		}
		if tentativePrice > 0 {
			res.ImpliedPremium = price/tentativePrice - 1
		}

		if d.SharesMillions != nil {
			res.SharesMillions = *d.SharesMillions
			res.AmountMillions = *d.SharesMillions * price
		}
		if d.AmountMillions != nil {
			res.AmountMillions = *d.AmountMillions
			if d.SharesMillions == nil && price > 0 {
				res.SharesMillions = *d.AmountMillions / price
			}
		}

		if err := checkFinite(field+".amount_millions", res.AmountMillions); err != nil {
			return out, err
		}
		out = append(out, res)
	}

	return out, nil
}

func effectivePrice(field string, d StrategicDeal, tentativePrice float64) (float64, error) {
	switch d.PriceType {
	case PriceIPOPremium:
		return tentativePrice * (1 + val(d.PremiumPercent, 0)), nil
	case PriceDiscounted:
		disc := val(d.DiscountPercent, 0)
		if disc < 0 || disc >= 1 {
			return 0, newValuationError(field+".discount_percent", disc, "must be within [0, 1)")
		}
		return tentativePrice * (1 - disc), nil
	case PriceFixed:
		if d.FixedPrice == nil {
			return 0, newValuationError(field+".fixed_price", 0, "fixed price type needs fixed_price")
		}
		if err := checkPositive(field+".fixed_price", *d.FixedPrice); err != nil {
			return 0, err
		}
		return *d.FixedPrice, nil
	case PriceAtIPO, "":
		return tentativePrice, nil
	default:
		return 0, newValuationError(field+".price_type", 0, fmt.Sprintf("unknown price type %q", d.PriceType))
	}
}
