package valuation

import (
	"ipo_valuation/pkg/core/instrument"
)

// WACCInput parameters for calculating Cost of Capital
type WACCInput struct {
	UnleveredBeta     float64 `json:"unlevered_beta"`
	RiskFreeRate      float64 `json:"risk_free_rate"`
	MarketRiskPremium float64 `json:"market_risk_premium"`
	PreTaxCostOfDebt  float64 `json:"pre_tax_cost_of_debt"`
	TaxRate           float64 `json:"tax_rate"`
	DebtToEquityRatio float64 `json:"debt_to_equity_ratio"` // Target Leverage (D/E)

	// Issuer size/illiquidity premium, added to the CAPM cost of equity
	SpecificRiskPremium float64 `json:"specific_risk_premium,omitempty"`
}

// WACCResult holds the calculated rates
type WACCResult struct {
	LeveredBeta  float64 `json:"levered_beta"`
	CostOfEquity float64 `json:"cost_of_equity"`
	CostOfDebt   float64 `json:"cost_of_debt"` // After-tax
	WACC         float64 `json:"wacc"`
	WeightDebt   float64 `json:"weight_debt"`
	WeightEquity float64 `json:"weight_equity"`
}

// CalculateWACC re-levers beta to the target structure and blends the after-tax
// costs of equity and debt at D/E-implied weights
func CalculateWACC(input WACCInput) (WACCResult, error) {
	switch {
	case input.DebtToEquityRatio < 0:
		return WACCResult{}, &instrument.ValuationError{Field: "debt_to_equity_ratio", Value: input.DebtToEquityRatio, Reason: "must not be negative"}
	case input.TaxRate < 0 || input.TaxRate >= 1:
		return WACCResult{}, &instrument.ValuationError{Field: "tax_rate", Value: input.TaxRate, Reason: "must be within [0, 1)"}
	case input.UnleveredBeta < 0:
		return WACCResult{}, &instrument.ValuationError{Field: "unlevered_beta", Value: input.UnleveredBeta, Reason: "must not be negative"}
	}

	taxShield := 1 - input.TaxRate
	leverage := input.DebtToEquityRatio

	// 1. Hamada: levered beta = unlevered * (1 + (1 - t) * D/E)
	beta := input.UnleveredBeta * (1 + taxShield*leverage)

	// 2. CAPM plus issuer premium
	costOfEquity := input.RiskFreeRate + beta*input.MarketRiskPremium + input.SpecificRiskPremium

	// 3. After-tax debt
	costOfDebt := input.PreTaxCostOfDebt * taxShield

	// 4. Capital weights from D/E
	equityWeight := 1 / (1 + leverage)
	debtWeight := 1 - equityWeight

	return WACCResult{
		LeveredBeta:  beta,
		CostOfEquity: costOfEquity,
		CostOfDebt:   costOfDebt,
		WACC:         costOfEquity*equityWeight + costOfDebt*debtWeight,
		WeightDebt:   debtWeight,
		WeightEquity: equityWeight,
	}, nil
}
