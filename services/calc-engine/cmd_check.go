package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ipo_valuation/pkg/core/extract"
	"ipo_valuation/pkg/core/instrument"
)

var checkFlags struct {
	raw bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate assumptions without running the waterfall",
	Long: `Validate a request envelope, or with --raw a bare assumptions document
such as saved model output (markdown fences, trailing commas and unquoted
keys are tolerated).`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkFlags.raw, "raw", false, "Input is a bare (possibly malformed) assumptions document")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	var a instrument.IPOAssumptions
	if checkFlags.raw {
		b, err := readPayload()
		if err != nil {
			return err
		}
		parsed, err := extract.ParseAssumptions(string(b))
		if err != nil {
			return err
		}
		a = *parsed
	} else {
		req, err := readRequest()
		if err != nil {
			return err
		}
		norm, err := instrument.Normalize(req.Assumptions)
		if err != nil {
			return err
		}
		a = norm
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Success: %d multiples, %d convertibles, %d contingencies, %d strategic deals, %d anchor orders\n",
		len(a.ValuationMultiples), len(a.Convertibles), len(a.Contingencies), len(a.StrategicDeals), len(a.AnchorOrders))
	if checkFlags.raw {
		// Echo the normalized document so it can be fed to calculate
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(request{Assumptions: a})
	}
	return nil
}
