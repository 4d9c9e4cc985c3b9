package instrument

import (
	"fmt"
	"math"
)

// ResolveContingencies computes probability-weighted dilution and cash cost.
// Every figure is an expectation, not a point outcome.
//
//   - earnout, grant, milestone: shares only
//   - warrant: shares plus intrinsic-value cost max(0, price - strike) per share
//   - litigation, royalty: cash only
func ResolveContingencies(liabilities []ContingentLiability, tentativePrice float64) (ContingencySummary, error) {
	summary := ContingencySummary{Liabilities: make([]ContingencyResolution, 0, len(liabilities))}

	for i, l := range liabilities {
		field := fmt.Sprintf("contingencies[%d]", i)

		prob := val(l.Probability, 1.0)
		if err := checkProbability(field+".probability", prob); err != nil {
			return summary, err
		}

		shares := val(l.SharesMillions, 0)
		if err := checkFinite(field+".shares_millions", shares); err != nil {
			return summary, err
		}

		res := ContingencyResolution{
			Name:        l.Name,
			Type:        l.Type,
			Probability: prob,
		}

		switch l.Type {
		case LiabilityEarnout, LiabilityGrant, LiabilityMilestone:
			res.SharesMillions = shares
			res.ExpectedShares = shares * prob

		case LiabilityWarrant:
			strike := val(l.StrikePrice, 0)
			if err := checkFinite(field+".strike_price", strike); err != nil {
				return summary, err
			}
			res.SharesMillions = shares
			res.ExpectedShares = shares * prob
			res.Spread = math.Max(0, tentativePrice-strike)
			res.ExpectedCost = res.Spread * shares * prob

		case LiabilityLitigation, LiabilityRoyalty:
			payment := val(l.PaymentMillions, 0)
			if err := checkFinite(field+".payment_millions", payment); err != nil {
				return summary, err
			}
			res.ExpectedCost = payment * prob

		default:
			return summary, newValuationError(field+".type", 0, fmt.Sprintf("unknown liability type %q", l.Type))
		}

		summary.Liabilities = append(summary.Liabilities, res)
		summary.ExpectedShares += res.ExpectedShares
		summary.ExpectedCost += res.ExpectedCost
	}

	return summary, nil
}
