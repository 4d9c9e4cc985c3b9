package instrument

import (
	"fmt"
	"math"
)

// ResolveConvertibles evaluates each convertible once against the tentative
// offer price. revenue is optional and only feeds "revenue>" conditions.
//
// Two aggregates are reported: DeterministicShares counts only
// instruments certain to convert (probability 1 and triggered), ExpectedShares
// is the probability-weighted sum over all of them. The engine dilutes by
// ExpectedShares.
func ResolveConvertibles(instruments []ConvertibleInstrument, tentativePrice float64, revenue *float64) (ConvertibleSummary, error) {
	summary := ConvertibleSummary{Instruments: make([]ConvertibleResolution, 0, len(instruments))}

	if len(instruments) > 0 {
		if err := checkPositive("tentative_offer_price", tentativePrice); err != nil {
			return summary, err
		}
	}

	for i, inst := range instruments {
		field := fmt.Sprintf("convertibles[%d]", i)

		res, err := resolveConvertible(field, inst, tentativePrice, revenue)
		if err != nil {
			return summary, err
		}

		summary.Instruments = append(summary.Instruments, res)
		summary.TotalSharesIssued += res.SharesIssued
		summary.ExpectedShares += res.ExpectedShares
		if res.Probability == 1.0 && res.Triggered {
			summary.DeterministicShares += res.SharesIssued
		}
	}

	return summary, nil
}

func resolveConvertible(field string, inst ConvertibleInstrument, price float64, revenue *float64) (ConvertibleResolution, error) {
	prob := val(inst.Probability, 1.0)
	if err := checkProbability(field+".probability", prob); err != nil {
		return ConvertibleResolution{}, err
	}
	if err := checkFinite(field+".amount_millions", inst.AmountMillions); err != nil {
		return ConvertibleResolution{}, err
	}

	res := ConvertibleResolution{
		Name:           inst.Name,
		TriggerType:    inst.TriggerType,
		AmountMillions: inst.AmountMillions,
		Probability:    prob,
		Condition:      inst.TriggerCondition,
	}

	switch inst.TriggerType {
	case TriggerLowerOf:
		// min(fixed price, multiplier * tentative price); always converts
		convPrice := math.Inf(1)
		if inst.TriggerPrice != nil {
			convPrice = *inst.TriggerPrice
		}
		if inst.TriggerMultiplier != nil {
			convPrice = math.Min(convPrice, *inst.TriggerMultiplier*price)
		}
		if math.IsInf(convPrice, 1) {
			return res, newValuationError(field+".trigger_price", 0, "lower_of needs trigger_price or trigger_multiplier")
		}
		if err := res.convertAt(field, convPrice); err != nil {
			return res, err
		}

	case TriggerPriceGT, TriggerPriceGTE:
		res.Triggered = priceTriggerHit(inst, price, revenue)
		convPrice := price
		if inst.TriggerMultiplier != nil {
			convPrice = *inst.TriggerMultiplier * price
		}
		if inst.TriggerPrice2 != nil {
			convPrice = math.Min(convPrice, *inst.TriggerPrice2)
		}
		res.ConversionPrice = convPrice
		if res.Triggered {
			if err := res.convertAt(field, convPrice); err != nil {
				return res, err
			}
		}

	case TriggerAtIPOPrice:
		if err := res.convertAt(field, price); err != nil {
			return res, err
		}

	case TriggerFixedShares:
		if inst.FixedShares == nil {
			return res, newValuationError(field+".fixed_shares", 0, "fixed_shares trigger needs fixed_shares")
		}
		if err := res.issueFixed(field, *inst.FixedShares); err != nil {
			return res, err
		}

	case TriggerConditional:
		// Price-independent; uncertainty lives in the probability
		if inst.FixedShares != nil {
			if err := res.issueFixed(field, *inst.FixedShares); err != nil {
				return res, err
			}
		} else {
			convPrice := price
			if inst.TriggerMultiplier != nil {
				convPrice = *inst.TriggerMultiplier * price
			}
			if err := res.convertAt(field, convPrice); err != nil {
				return res, err
			}
		}

	default:
		return res, newValuationError(field+".trigger_type", 0, fmt.Sprintf("unknown trigger type %q", inst.TriggerType))
	}

	if res.Triggered {
		res.ExpectedShares = res.SharesIssued * prob
	}
	return res, nil
}

// priceTriggerHit applies the price threshold, falling back to the textual condition
func priceTriggerHit(inst ConvertibleInstrument, price float64, revenue *float64) bool {
	if inst.TriggerPrice != nil {
		tp := *inst.TriggerPrice
		if inst.TriggerType == TriggerPriceGTE && price >= tp {
			return true
		}
		if inst.TriggerType == TriggerPriceGT && price > tp {
			return true
		}
	}
	if inst.TriggerCondition != "" {
		return EvaluateCondition(inst.TriggerCondition, price, revenue)
	}
	return false
}

func (r *ConvertibleResolution) convertAt(field string, convPrice float64) error {
	if err := checkPositive(field+".conversion_price", convPrice); err != nil {
		return err
	}
	r.ConversionPrice = convPrice
	r.SharesIssued = r.AmountMillions / convPrice
	r.Triggered = true
	return nil
}

func (r *ConvertibleResolution) issueFixed(field string, shares float64) error {
	if err := checkFinite(field+".fixed_shares", shares); err != nil {
		return err
	}
	if shares < 0 {
		return newValuationError(field+".fixed_shares", shares, "must not be negative")
	}
	r.SharesIssued = shares
	r.Triggered = true
	if shares > 0 {
		// Reporting only
		r.ConversionPrice = r.AmountMillions / shares
	}
	return nil
}
