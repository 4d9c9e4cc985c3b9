// Package scenario runs independent waterfall variants in parallel for
// sensitivity analysis. Each run is referentially transparent, so scenarios
// share nothing and results keep input order.
package scenario

import (
	"context"
	"fmt"

	"ipo_valuation/pkg/core/instrument"

	"golang.org/x/sync/errgroup"
)

// Scenario overrides applied to a copy of the base input. Nil means "keep base".
type Scenario struct {
	Name             string   `json:"name"`
	IPODiscount      *float64 `json:"ipo_discount,omitempty"`
	ValuationScale   *float64 `json:"valuation_scale,omitempty"`   // Multiplies base valuation and multiples
	AnchorScale      *float64 `json:"anchor_scale,omitempty"`      // Multiplies every anchor order and anchor deal, by amount or by shares
	ProbabilityShock *float64 `json:"probability_shock,omitempty"` // Added to every probability, clamped to [0, 1]
}

// Outcome is one scenario's result or error
type Outcome struct {
	Scenario Scenario                           `json:"scenario"`
	Result   *instrument.InstrumentEngineResult `json:"result,omitempty"`
	Error    string                             `json:"error,omitempty"`
}

// Sweep runs every scenario against base on a bounded worker pool.
// Per-scenario engine errors are captured in the Outcome; only context
// cancellation aborts the sweep.
func Sweep(ctx context.Context, base instrument.EngineInput, scenarios []Scenario, cfg instrument.Config, workers int) ([]Outcome, error) {
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]Outcome, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, sc := range scenarios {
		i, sc := i, sc
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = runOne(base, sc, cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scenario sweep cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scenario sweep cancelled: %w", err)
	}

	return outcomes, nil
}

func runOne(base instrument.EngineInput, sc Scenario, cfg instrument.Config) Outcome {
	input, err := Apply(base, sc)
	if err != nil {
		return Outcome{Scenario: sc, Error: err.Error()}
	}
	res, err := instrument.Run(input, cfg)
	if err != nil {
		return Outcome{Scenario: sc, Error: err.Error()}
	}
	return Outcome{Scenario: sc, Result: res}
}

// Apply returns a copy of base with the scenario overrides applied. The base is not modified.
func Apply(base instrument.EngineInput, sc Scenario) (instrument.EngineInput, error) {
	// Normalize deep-copies every slice and optional field
	a, err := instrument.Normalize(base.Assumptions)
	if err != nil {
		return base, err
	}
	in := base
	in.Assumptions = a

	if sc.IPODiscount != nil {
		d := *sc.IPODiscount
		in.Assumptions.IPODiscount = &d
	}
	if sc.ValuationScale != nil {
		s := *sc.ValuationScale
		in.BaseValuation *= s
		for i := range in.Assumptions.ValuationMultiples {
			in.Assumptions.ValuationMultiples[i].Multiple *= s
		}
	}
	if sc.AnchorScale != nil {
		s := *sc.AnchorScale
		for i := range in.Assumptions.AnchorOrders {
			in.Assumptions.AnchorOrders[i].AmountMillions *= s
		}
		for i, d := range in.Assumptions.StrategicDeals {
			if !d.IsAnchorOrder {
				continue
			}
			// Amount-denominated deals are sized by amount; shares only matter without one
			switch {
			case d.AmountMillions != nil:
				v := *d.AmountMillions * s
				in.Assumptions.StrategicDeals[i].AmountMillions = &v
			case d.SharesMillions != nil:
				v := *d.SharesMillions * s
				in.Assumptions.StrategicDeals[i].SharesMillions = &v
			}
		}
	}
	if sc.ProbabilityShock != nil {
		shock := *sc.ProbabilityShock
		for i, c := range in.Assumptions.Convertibles {
			in.Assumptions.Convertibles[i].Probability = shocked(c.Probability, shock)
		}
		for i, l := range in.Assumptions.Contingencies {
			in.Assumptions.Contingencies[i].Probability = shocked(l.Probability, shock)
		}
	}

	return in, nil
}

func shocked(p *float64, shock float64) *float64 {
	v := 1.0
	if p != nil {
		v = *p
	}
	v += shock
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return &v
}

// Grid builds the cartesian product of discount and anchor-scale overrides
func Grid(discounts, anchorScales []float64) []Scenario {
	if len(anchorScales) == 0 {
		anchorScales = []float64{1.0}
	}
	out := make([]Scenario, 0, len(discounts)*len(anchorScales))
	for _, d := range discounts {
		for _, s := range anchorScales {
			d, s := d, s
			out = append(out, Scenario{
				Name:        fmt.Sprintf("discount=%.2f anchors=x%.2f", d, s),
				IPODiscount: &d,
				AnchorScale: &s,
			})
		}
	}
	return out
}
