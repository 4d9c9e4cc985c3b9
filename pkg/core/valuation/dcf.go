package valuation

import (
	"math"

	"ipo_valuation/pkg/core/instrument"
)

// DCFInput encapsulates the inputs of a two-stage unlevered DCF
type DCFInput struct {
	FreeCashFlows     []float64 `json:"free_cash_flows"` // Unlevered FCF per projection year, millions
	WACC              float64   `json:"wacc"`
	PeriodWACCs       []float64 `json:"period_waccs,omitempty"` // Optional: WACC per projection year
	TerminalGrowth    float64   `json:"terminal_growth"`        // e.g. 0.025
	SharesOutstanding float64   `json:"shares_outstanding"`     // Millions
	NetDebt           float64   `json:"net_debt"`               // Millions
	TerminalEBITDA    float64   `json:"terminal_ebitda,omitempty"`
}

// DCFResult holds the valuation outputs
type DCFResult struct {
	EnterpriseValue float64 `json:"enterprise_value"`
	EquityValue     float64 `json:"equity_value"`
	SharePrice      float64 `json:"share_price"`
	PVFCF           float64 `json:"pv_fcf"`
	PVTerminal      float64 `json:"pv_terminal"`
	TerminalValue   float64 `json:"terminal_value"`
	ImpliedMultiple float64 `json:"implied_multiple"` // TV / terminal EBITDA
}

// CalculateDCF performs a standard 2-stage DCF analysis.
// A discount rate at or below terminal growth has no Gordon solution and is rejected.
func CalculateDCF(input DCFInput) (DCFResult, error) {
	if len(input.FreeCashFlows) == 0 {
		return DCFResult{}, &instrument.ValuationError{Field: "free_cash_flows", Reason: "at least one projection year is required"}
	}

	var pvFCF float64

	// Track cumulative discount factor for dynamic WACC
	cumDiscountFactor := 1.0

	for i, fcf := range input.FreeCashFlows {
		wacc := input.WACC
		if len(input.PeriodWACCs) > i {
			wacc = input.PeriodWACCs[i]
		}
		if wacc <= -1 {
			return DCFResult{}, &instrument.ValuationError{Field: "wacc", Value: wacc, Reason: "discount rate must exceed -100%"}
		}

		cumDiscountFactor /= (1.0 + wacc)
		pvFCF += fcf * cumDiscountFactor
	}

	// Terminal Value (Gordon Growth), capitalized at the final year WACC
	finalWACC := input.WACC
	if len(input.PeriodWACCs) > 0 {
		finalWACC = input.PeriodWACCs[len(input.PeriodWACCs)-1]
	}
	if finalWACC <= input.TerminalGrowth {
		return DCFResult{}, &instrument.ValuationError{Field: "wacc", Value: finalWACC, Reason: "must exceed terminal growth rate"}
	}

	terminalFCF := input.FreeCashFlows[len(input.FreeCashFlows)-1] * (1 + input.TerminalGrowth)
	tv := terminalFCF / (finalWACC - input.TerminalGrowth)
	pvTerminal := tv * cumDiscountFactor

	ev := pvFCF + pvTerminal
	res := DCFResult{
		EnterpriseValue: ev,
		EquityValue:     ev - input.NetDebt,
		PVFCF:           pvFCF,
		PVTerminal:      pvTerminal,
		TerminalValue:   tv,
	}

	if input.SharesOutstanding > 0 {
		res.SharePrice = res.EquityValue / input.SharesOutstanding
	}
	if input.TerminalEBITDA != 0 {
		res.ImpliedMultiple = tv / input.TerminalEBITDA
	}

	if math.IsNaN(res.EquityValue) || math.IsInf(res.EquityValue, 0) {
		return DCFResult{}, &instrument.ValuationError{Field: "equity_value", Value: res.EquityValue, Reason: "must be a finite number"}
	}
	return res, nil
}
