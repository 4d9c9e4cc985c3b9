package instrument

// CalculateBlendedValuation combines weighted valuation multiples into one valuation.
//
// Weights are assumed to sum to 1.0 and are not re-normalized. Component
// contributions are back-computed from the effective multiple, so they add up
// to the total only because the growth premium is applied uniformly to every
// component.
func CalculateBlendedValuation(baseMetric float64, multiples []ValuationMultiple, growthRate float64, cfg Config) BlendedValuationResult {
	res := BlendedValuationResult{
		BaseMetric: baseMetric,
		Components: make([]MultipleComponent, 0, len(multiples)),
	}

	// No proxies: nothing to value, not a fault
	if len(multiples) == 0 {
		return res
	}

	// 1. Base blended multiple = Sum(multiple * weight)
	for _, m := range multiples {
		res.BaseBlendedMultiple += m.Multiple * m.Weight
	}

	// 2. Growth premium
	premiumFactor := 1.0
	if cfg.GrowthPremium > 0 && growthRate > cfg.GrowthPremiumThreshold {
		res.GrowthPremiumApplied = true
		res.GrowthPremiumPercent = cfg.GrowthPremium
		premiumFactor = 1 + cfg.GrowthPremium
	}
	res.BlendedMultiple = res.BaseBlendedMultiple * premiumFactor

	// 3. Valuation
	res.Valuation = baseMetric * res.BlendedMultiple

	for _, m := range multiples {
		weighted := m.Multiple * m.Weight
		res.Components = append(res.Components, MultipleComponent{
			Name:             m.Name,
			Type:             m.Type,
			Multiple:         m.Multiple,
			Weight:           m.Weight,
			WeightedMultiple: weighted,
			Contribution:     baseMetric * weighted * premiumFactor,
		})
	}

	return res
}
