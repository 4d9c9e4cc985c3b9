package valuation

import (
	"fmt"

	"ipo_valuation/pkg/core/instrument"
)

// ProjectionInput drives a percent-of-revenue free cash flow forecast from the
// issuer's LTM figures
type ProjectionInput struct {
	BaseRevenue    float64   `json:"base_revenue"`     // LTM, millions
	RevenueGrowth  []float64 `json:"revenue_growth"`   // Per projection year, decimal
	EBITDAMargin   float64   `json:"ebitda_margin"`    // % of revenue
	DAPercent      float64   `json:"da_percent"`       // % of revenue
	TaxRate        float64   `json:"tax_rate"`         // % of EBIT
	CapexPercent   float64   `json:"capex_percent"`    // % of revenue
	NWCPercent     float64   `json:"nwc_percent"`      // Net working capital, % of revenue
	SBCPercent     float64   `json:"sbc_percent"`      // Stock comp add-back, % of revenue
	BaseNWCPercent *float64  `json:"base_nwc_percent"` // Defaults to NWCPercent
}

// ProjectedYear is one forecast year
type ProjectedYear struct {
	Year         int     `json:"year"`
	Revenue      float64 `json:"revenue"`
	EBITDA       float64 `json:"ebitda"`
	EBIT         float64 `json:"ebit"`
	NOPAT        float64 `json:"nopat"`
	DA           float64 `json:"da"`
	SBC          float64 `json:"sbc"`
	Capex        float64 `json:"capex"`
	ChangeNWC    float64 `json:"change_nwc"`
	FreeCashFlow float64 `json:"free_cash_flow"`
}

// ProjectFreeCashFlows rolls revenue forward and derives unlevered FCF:
// NOPAT + D&A + SBC - Capex - increase in NWC
func ProjectFreeCashFlows(input ProjectionInput) ([]ProjectedYear, error) {
	if input.BaseRevenue <= 0 {
		return nil, &instrument.ValuationError{Field: "base_revenue", Value: input.BaseRevenue, Reason: "must be greater than zero"}
	}
	if len(input.RevenueGrowth) == 0 {
		return nil, &instrument.ValuationError{Field: "revenue_growth", Reason: "at least one projection year is required"}
	}
	if input.TaxRate < 0 || input.TaxRate >= 1 {
		return nil, &instrument.ValuationError{Field: "tax_rate", Value: input.TaxRate, Reason: "must be within [0, 1)"}
	}

	prevNWCPct := input.NWCPercent
	if input.BaseNWCPercent != nil {
		prevNWCPct = *input.BaseNWCPercent
	}
	prevRevenue := input.BaseRevenue
	prevNWC := prevRevenue * prevNWCPct

	years := make([]ProjectedYear, 0, len(input.RevenueGrowth))
	for i, g := range input.RevenueGrowth {
		if g <= -1 {
			return nil, &instrument.ValuationError{Field: fmt.Sprintf("revenue_growth[%d]", i), Value: g, Reason: "must exceed -100%"}
		}
		rev := prevRevenue * (1 + g)

		y := ProjectedYear{Year: i + 1, Revenue: rev}
		y.EBITDA = rev * input.EBITDAMargin
		y.DA = rev * input.DAPercent
		y.EBIT = y.EBITDA - y.DA

		// No tax shield on operating losses
		taxes := 0.0
		if y.EBIT > 0 {
			taxes = y.EBIT * input.TaxRate
		}
		y.NOPAT = y.EBIT - taxes

		y.SBC = rev * input.SBCPercent
		y.Capex = rev * input.CapexPercent
		nwc := rev * input.NWCPercent
		y.ChangeNWC = nwc - prevNWC

		y.FreeCashFlow = y.NOPAT + y.DA + y.SBC - y.Capex - y.ChangeNWC
		years = append(years, y)

		prevRevenue = rev
		prevNWC = nwc
	}
	return years, nil
}

// DCFInputFromProjection builds a DCFInput from projected years, using the
// final year's EBITDA for the implied exit multiple
func DCFInputFromProjection(years []ProjectedYear, wacc, terminalGrowth, shares, netDebt float64) DCFInput {
	fcf := make([]float64, len(years))
	for i, y := range years {
		fcf[i] = y.FreeCashFlow
	}
	in := DCFInput{
		FreeCashFlows:     fcf,
		WACC:              wacc,
		TerminalGrowth:    terminalGrowth,
		SharesOutstanding: shares,
		NetDebt:           netDebt,
	}
	if len(years) > 0 {
		in.TerminalEBITDA = years[len(years)-1].EBITDA
	}
	return in
}

// GrowthFade linearly fades growth from start to end over n years
func GrowthFade(start, end float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}
