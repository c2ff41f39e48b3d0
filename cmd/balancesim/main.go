// balancesim runs game balance simulations from scenario files and serves
// them over HTTP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	outputFormat string
	dbPath       string
)

var rootCmd = &cobra.Command{
	Use:   "balancesim",
	Short: "Stochastic balance simulation for game systems",
	Long: `balancesim runs Monte Carlo batches of combat and economy trials,
sweeps balance parameters toward target metrics, and reports the
aggregate statistics, insights and tuning recommendations.

Scenario files are YAML; see the scenario kind (combat, economy, sweep)
for the sections each expects.

Examples:
  balancesim combat scenarios/duel.yaml --format markdown
  balancesim economy scenarios/gold.yaml --db runs.db
  balancesim sweep scenarios/pacing.yaml
  balancesim serve
  balancesim runs --db runs.db`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "json", "Output format (json, csv, markdown)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database to persist runs to (optional)")
}

// newLogger builds a production zap logger at the given level.
func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
