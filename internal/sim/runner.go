package sim

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/11vate/balance-sim-go/internal/combat"
	"github.com/11vate/balance-sim-go/internal/economy"
	"github.com/11vate/balance-sim-go/internal/insight"
	"github.com/11vate/balance-sim-go/internal/rng"
	"github.com/11vate/balance-sim-go/internal/stats"
)

// ErrInsufficientIterations marks a batch requested with no trials.
var ErrInsufficientIterations = errors.New("insufficient iterations")

// Runner executes trial batches on a bounded worker pool. Trials share no
// mutable state: each one writes its result into its own pre-sized slot and
// a join precedes the single-threaded reduction, so no locking is needed.
type Runner struct {
	workers int
}

// NewRunner creates a runner sized to the available cores.
func NewRunner() *Runner {
	return &Runner{workers: runtime.GOMAXPROCS(0)}
}

// source returns the random source for trial i. A verify key selects the
// HMAC stream, which lets a third party holding the key replay any single
// trial; otherwise seeded batches derive an independent PCG stream per trial
// index so trials stay uncorrelated while the whole batch remains
// reproducible.
func source(seed *uint64, verifyKey, scope string, i int) rng.Source {
	if verifyKey != "" {
		return rng.NewVerifiable(verifyKey, scope, uint64(i))
	}
	if seed != nil {
		return rng.NewSeeded(*seed, uint64(i))
	}
	return rng.Default()
}

// forEachTrial runs fn for trial indices [0, n) with bounded parallelism.
// Cancellation is cooperative: the context is checked before each trial is
// dispatched and the first trial error aborts the batch.
func (r *Runner) forEachTrial(ctx context.Context, n int, fn func(i int) error) error {
	// The derived context is canceled as soon as Wait returns, so the final
	// cancellation check must read the parent.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := 0; i < n; i++ {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error { return fn(i) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// RunCombat runs a combat batch and reduces it to aggregate statistics,
// insights and recommendations.
func (r *Runner) RunCombat(ctx context.Context, req CombatRequest) (*Result, error) {
	if req.Iterations <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInsufficientIterations, req.Iterations)
	}
	if err := combat.ValidateRosters(req.RosterA, req.RosterB); err != nil {
		return nil, err
	}
	if req.Policy != "" {
		if _, ok := combat.GetPolicy(req.Policy); !ok {
			return nil, fmt.Errorf("%w: %q", combat.ErrPolicyNotFound, req.Policy)
		}
	}

	start := time.Now()
	trials := make([]combat.TrialResult, req.Iterations)
	err := r.forEachTrial(ctx, req.Iterations, func(i int) error {
		trial, err := combat.Simulate(req.RosterA, req.RosterB, req.Policy, req.MaxTurns, source(req.Seed, req.VerifyKey, string(TypeCombat), i))
		if err != nil {
			return err
		}
		trials[i] = trial
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reduceCombat(req, trials, time.Since(start))
}

func reduceCombat(req CombatRequest, trials []combat.TrialResult, elapsed time.Duration) (*Result, error) {
	wins := make(map[string]int, 2)
	turns := make([]float64, len(trials))
	damage := make([]float64, len(trials))
	for i, trial := range trials {
		wins[trial.Winner]++
		turns[i] = float64(trial.Turns)
		damage[i] = trial.TotalDamage
	}

	turnDist, err := stats.Summarize(turns, "turns")
	if err != nil {
		return nil, err
	}
	damageDist, err := stats.Summarize(damage, "total_damage")
	if err != nil {
		return nil, err
	}

	winRate := float64(wins[req.RosterA.ID]) / float64(len(trials))
	metrics := map[string]float64{
		insight.MetricWinRate: winRate,
		// Balance peaks at 1.0 for a 50% win rate and falls linearly to 0
		// at either extreme.
		insight.MetricBalanceScore: 1 - 2*abs(winRate-0.5),
		"mean_turns":               turnDist.Mean,
		"mean_total_damage":        damageDist.Mean,
	}

	insights := insight.GenerateInsights(metrics)
	return &Result{
		ID:              uuid.New().String(),
		Type:            TypeCombat,
		Iterations:      len(trials),
		Duration:        elapsed,
		Seed:            req.Seed,
		Metrics:         metrics,
		Insights:        insights,
		Recommendations: insight.GenerateRecommendations(insights, metrics),
		Data: Data{
			Distributions: map[string]stats.Distribution{
				"turns":        turnDist,
				"total_damage": damageDist,
			},
			WinsBySide: wins,
		},
		CreatedAt: time.Now().UTC(),
	}, nil
}

// RunEconomy runs an economy batch and reduces per-trial flows to mean
// values per resource.
func (r *Runner) RunEconomy(ctx context.Context, req EconomyRequest) (*Result, error) {
	if req.Iterations <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInsufficientIterations, req.Iterations)
	}
	if err := economy.Validate(req.Sources, req.Sinks, req.Ticks); err != nil {
		return nil, err
	}

	start := time.Now()
	trials := make([]economy.TrialResult, req.Iterations)
	err := r.forEachTrial(ctx, req.Iterations, func(i int) error {
		trial, err := economy.Simulate(req.Initial, req.Sources, req.Sinks, req.Ticks, source(req.Seed, req.VerifyKey, string(TypeEconomy), i))
		if err != nil {
			return err
		}
		trials[i] = trial
		return nil
	})
	if err != nil {
		return nil, err
	}

	return reduceEconomy(req, trials, time.Since(start))
}

func reduceEconomy(req EconomyRequest, trials []economy.TrialResult, elapsed time.Duration) (*Result, error) {
	finals := make(map[string][]float64)
	sumFlows := make(map[string]economy.Flow)
	skipped := 0
	for _, trial := range trials {
		for name, qty := range trial.Final {
			finals[name] = append(finals[name], qty)
		}
		for name, flow := range trial.Flows {
			acc := sumFlows[name]
			acc.Inflow += flow.Inflow
			acc.Outflow += flow.Outflow
			acc.Net += flow.Net
			sumFlows[name] = acc
		}
		skipped += trial.SkippedSinks
	}

	n := float64(len(trials))
	metrics := make(map[string]float64, 3*len(sumFlows))
	meanFlows := make(map[string]economy.Flow, len(sumFlows))
	distributions := make(map[string]stats.Distribution, len(finals))
	for name, flow := range sumFlows {
		mean := economy.Flow{Inflow: flow.Inflow / n, Outflow: flow.Outflow / n, Net: flow.Net / n}
		meanFlows[name] = mean
		metrics[insight.InflowPrefix+name] = mean.Inflow
		metrics[insight.OutflowPrefix+name] = mean.Outflow
		metrics[insight.NetPrefix+name] = mean.Net
	}
	for name, sample := range finals {
		dist, err := stats.Summarize(sample, "final."+name)
		if err != nil {
			return nil, err
		}
		distributions["final."+name] = dist
	}

	insights := insight.GenerateInsights(metrics)
	return &Result{
		ID:              uuid.New().String(),
		Type:            TypeEconomy,
		Iterations:      len(trials),
		Duration:        elapsed,
		Seed:            req.Seed,
		Metrics:         metrics,
		Insights:        insights,
		Recommendations: insight.GenerateRecommendations(insights, metrics),
		Data: Data{
			Distributions: distributions,
			MeanFlows:     meanFlows,
			SkippedSinks:  skipped,
		},
		CreatedAt: time.Now().UTC(),
	}, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
