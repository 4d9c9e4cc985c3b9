package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"ipo_valuation/pkg/core/instrument"
	"ipo_valuation/pkg/core/valuation"
)

var calculateFlags struct {
	logs bool
}

var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Run the waterfall and print the result as JSON",
	Args:  cobra.NoArgs,
	RunE:  runCalculate,
}

func init() {
	calculateCmd.Flags().BoolVar(&calculateFlags.logs, "logs", false, "Print the audit log to stderr")
}

func runCalculate(cmd *cobra.Command, _ []string) error {
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
	res, err := instrument.Run(input, cfg)
	if err != nil {
		return err
	}

	if calculateFlags.logs {
		for _, line := range res.Logs {
			fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
