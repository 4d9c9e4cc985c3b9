package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ipo_valuation/pkg/core/scenario"
	"ipo_valuation/pkg/core/valuation"
)

var sweepFlags struct {
	discounts    []float64
	anchorScales []float64
	workers      int
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a discount x anchor-scale scenario grid",
	Args:  cobra.NoArgs,
	RunE:  runSweep,
}

func init() {
	f := sweepCmd.Flags()
	f.Float64SliceVar(&sweepFlags.discounts, "discounts", []float64{0.10, 0.15, 0.20}, "IPO discounts to sweep")
	f.Float64SliceVar(&sweepFlags.anchorScales, "anchor-scales", []float64{1.0}, "Anchor amount multipliers to sweep")
	f.IntVar(&sweepFlags.workers, "workers", 0, "Parallel scenarios (default: config sweep_workers)")
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	req, err := readRequest()
	if err != nil {
		return err
	}
	seeds, err := req.seeds()
	if err != nil {
		return err
	}
	input, _, err := valuation.PrepareInput(req.Assumptions, seeds, cfg)
	if err != nil {
		return err
	}

	workers := sweepFlags.workers
	if workers < 1 {
		workers = cfg.SweepWorkers
	}
	outcomes, err := scenario.Sweep(cmd.Context(), input, scenario.Grid(sweepFlags.discounts, sweepFlags.anchorScales), cfg, workers)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tOFFER\tADJ OFFER\tSHARES (M)\tVALUATION (M)")
	for _, o := range outcomes {
		if o.Error != "" {
			fmt.Fprintf(tw, "%s\terror: %s\t\t\t\n", o.Scenario.Name, o.Error)
			continue
		}
		r := o.Result
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.2f\n",
			o.Scenario.Name, r.TentativeOfferPrice, r.AdjustedOfferPrice, r.AdjustedShareCount, r.AdjustedValuation)
	}
	return tw.Flush()
}
