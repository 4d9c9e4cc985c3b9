package valuation

import (
	"sort"

	"ipo_valuation/pkg/core/instrument"
)

// MetricInput holds the issuer's current (LTM) metrics
type MetricInput struct {
	Revenue   float64 `json:"revenue"`
	EBITDA    float64 `json:"ebitda"`
	NetIncome float64 `json:"net_income"`
	NetDebt   float64 `json:"net_debt"`
	SharesOut float64 `json:"shares_out"`
}

// PeerComparable represents a comparable listed company or recent IPO
type PeerComparable struct {
	Name          string  `json:"name"`
	EVRevenue     float64 `json:"ev_revenue"`
	EVEBITDA      float64 `json:"ev_ebitda"`
	PERatio       float64 `json:"pe_ratio"`
	IsTransaction bool    `json:"is_transaction"` // True for Precedent Transaction, False for Trading Comp
}

// RelativeValuationResult holds the interquartile valuation range derived from multiples
type RelativeValuationResult struct {
	ImpliedEVRevenue [2]float64 `json:"implied_ev_revenue"` // Low, High
	ImpliedEVEBITDA  [2]float64 `json:"implied_ev_ebitda"`
	ImpliedPEPrice   [2]float64 `json:"implied_pe_price"`

	MedianEVRevenue float64 `json:"median_ev_revenue"`
	MedianEVEBITDA  float64 `json:"median_ev_ebitda"`
	MedianPE        float64 `json:"median_pe"`
}

// CalculateComps performs Comparable Companies Analysis
func CalculateComps(target MetricInput, peers []PeerComparable) RelativeValuationResult {
	return calculateMultiples(target, peers, false)
}

// CalculateTransactions performs Precedent Transaction Analysis.
// Usually involves a control premium, so multiples are higher.
func CalculateTransactions(target MetricInput, peers []PeerComparable) RelativeValuationResult {
	return calculateMultiples(target, peers, true)
}

// SuggestMultiples turns peer medians into weighted valuation proxies for the
// waterfall: trading EV/Revenue, trading EV/EBITDA restated on revenue, and the
// precedent-transaction EV/Revenue when deals are present. Weights are split
// evenly across the proxies with data, so they sum to 1.
func SuggestMultiples(target MetricInput, peers []PeerComparable) []instrument.ValuationMultiple {
	comps := CalculateComps(target, peers)
	deals := CalculateTransactions(target, peers)

	var out []instrument.ValuationMultiple
	if comps.MedianEVRevenue > 0 && target.Revenue > 0 {
		out = append(out, instrument.ValuationMultiple{Name: "Peer EV/Revenue", Type: instrument.MultipleRevenue, Multiple: comps.MedianEVRevenue})
	}
	if comps.MedianEVEBITDA > 0 && target.EBITDA > 0 && target.Revenue > 0 {
		// Expressed on revenue so every proxy shares one base metric
		out = append(out, instrument.ValuationMultiple{Name: "Peer EV/EBITDA", Type: instrument.MultipleRevenue, Multiple: comps.MedianEVEBITDA * target.EBITDA / target.Revenue})
	}
	if deals.MedianEVRevenue > 0 && target.Revenue > 0 {
		out = append(out, instrument.ValuationMultiple{Name: "Precedent EV/Revenue", Type: instrument.MultipleRevenue, Multiple: deals.MedianEVRevenue})
	}
	for i := range out {
		out[i].Weight = 1.0 / float64(len(out))
	}
	return out
}

func calculateMultiples(target MetricInput, peers []PeerComparable, onlyTransactions bool) RelativeValuationResult {
	var revMults, ebitdaMults, peMults []float64

	for _, p := range peers {
		if p.IsTransaction != onlyTransactions {
			continue
		}
		if p.EVRevenue > 0 {
			revMults = append(revMults, p.EVRevenue)
		}
		if p.EVEBITDA > 0 {
			ebitdaMults = append(ebitdaMults, p.EVEBITDA)
		}
		if p.PERatio > 0 {
			peMults = append(peMults, p.PERatio)
		}
	}

	res := RelativeValuationResult{}

	// EV/Revenue Implied EV
	rLo, rHi := interquartile(revMults)
	res.ImpliedEVRevenue = [2]float64{rLo * target.Revenue, rHi * target.Revenue}
	res.MedianEVRevenue = median(revMults)

	// EV/EBITDA Implied EV
	eLo, eHi := interquartile(ebitdaMults)
	res.ImpliedEVEBITDA = [2]float64{eLo * target.EBITDA, eHi * target.EBITDA}
	res.MedianEVEBITDA = median(ebitdaMults)

	// P/E Implied Price (Direct Equity Value)
	pLo, pHi := interquartile(peMults)
	if target.SharesOut > 0 {
		res.ImpliedPEPrice = [2]float64{pLo * target.NetIncome / target.SharesOut, pHi * target.NetIncome / target.SharesOut}
	}
	res.MedianPE = median(peMults)

	return res
}

// interquartile returns the 25th and 75th percentile entries
func interquartile(mults []float64) (float64, float64) {
	if len(mults) == 0 {
		return 0, 0
	}
	sorted := append([]float64(nil), mults...)
	sort.Float64s(sorted)
	lowIdx := int(float64(len(sorted)) * 0.25)
	highIdx := int(float64(len(sorted)) * 0.75)
	if highIdx >= len(sorted) {
		highIdx = len(sorted) - 1
	}
	return sorted[lowIdx], sorted[highIdx]
}

func median(mults []float64) float64 {
	if len(mults) == 0 {
		return 0
	}
	sorted := append([]float64(nil), mults...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
