// calc-engine runs the IPO instrument waterfall from the command line.
//
// Usage:
//
//	calc-engine check --file=assumptions.json [--raw]
//	calc-engine calculate --data='{"assumptions": {...}}'
//	calc-engine sweep --file=request.json --discounts=0.1,0.15,0.2 --anchor-scales=0.5,1,2
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	data       string
	file       string
	configPath string
}

var rootCmd = &cobra.Command{
	Use:   "calc-engine",
	Short: "IPO contingent-instrument valuation waterfall",
	Long:  "calc-engine resolves convertibles, contingent liabilities, strategic deals\nand option dilution into a fully diluted IPO price.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.data, "data", "", "JSON data payload")
	pf.StringVarP(&rootFlags.file, "file", "f", "", "Path to a JSON request file")
	pf.StringVar(&rootFlags.configPath, "config", "", "Engine config YAML (default: $ENGINE_CONFIG or config/engine.yaml)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.Version = version
}

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
