package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/11vate/balance-sim-go/internal/config"
	"github.com/11vate/balance-sim-go/internal/report"
	"github.com/11vate/balance-sim-go/internal/sim"
	"github.com/11vate/balance-sim-go/internal/store"
)

var combatCmd = &cobra.Command{
	Use:   "combat <scenario.yaml>",
	Short: "Run a combat batch from a scenario file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(args[0], config.KindCombat)
		if err != nil {
			return err
		}
		runner := sim.NewRunner()
		result, err := runner.RunCombat(cmd.Context(), combatRequest(sc))
		if err != nil {
			return err
		}
		return emit(result, sc.Name)
	},
}

var economyCmd = &cobra.Command{
	Use:   "economy <scenario.yaml>",
	Short: "Run an economy batch from a scenario file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(args[0], config.KindEconomy)
		if err != nil {
			return err
		}
		runner := sim.NewRunner()
		result, err := runner.RunEconomy(cmd.Context(), sim.EconomyRequest{
			Initial:    sc.Economy.Initial,
			Sources:    sc.Economy.Sources,
			Sinks:      sc.Economy.Sinks,
			Ticks:      sc.Economy.Ticks,
			Iterations: sc.Iterations,
			Seed:       sc.Seed,
			VerifyKey:  sc.VerifyKey,
		})
		if err != nil {
			return err
		}
		return emit(result, sc.Name)
	},
}

var sweepCmd = &cobra.Command{
	Use:   "sweep <scenario.yaml>",
	Short: "Sweep balance parameters toward target metrics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := loadScenario(args[0], config.KindSweep)
		if err != nil {
			return err
		}
		runner := sim.NewRunner()
		result, err := runner.RunSweep(cmd.Context(), sim.SweepRequest{
			Base:           combatRequest(sc),
			Ranges:         sc.Sweep.Ranges,
			Targets:        sc.Sweep.Targets,
			TrialsPerPoint: sc.Sweep.TrialsPerPoint,
			Seed:           sc.Seed,
		})
		if err != nil {
			return err
		}
		return emit(result, sc.Name)
	},
}

func init() {
	rootCmd.AddCommand(combatCmd, economyCmd, sweepCmd)
}

func loadScenario(path string, kind config.Kind) (*config.Scenario, error) {
	sc, err := config.LoadScenario(path)
	if err != nil {
		return nil, err
	}
	if sc.Kind != kind {
		return nil, fmt.Errorf("scenario %q has kind %q, expected %q", path, sc.Kind, kind)
	}
	return sc, nil
}

func combatRequest(sc *config.Scenario) sim.CombatRequest {
	return sim.CombatRequest{
		RosterA:    sc.Combat.RosterA,
		RosterB:    sc.Combat.RosterB,
		Policy:     sc.Combat.Policy,
		MaxTurns:   sc.Combat.MaxTurns,
		Iterations: sc.Iterations,
		Seed:       sc.Seed,
		VerifyKey:  sc.VerifyKey,
	}
}

// emit renders the result to stdout and, when --db is set, persists it.
func emit(result *sim.Result, scenario string) error {
	out, err := report.Render(result, report.Format(outputFormat))
	if err != nil {
		return err
	}
	if _, err := os.Stdout.Write(out); err != nil {
		return err
	}

	if dbPath == "" {
		return nil
	}
	db, err := store.NewSQLiteDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}
	run, insights, err := store.FromResult(result, scenario)
	if err != nil {
		return err
	}
	return db.SaveRun(run, insights)
}
