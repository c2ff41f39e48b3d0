package sim

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/11vate/balance-sim-go/internal/combat"
	"github.com/11vate/balance-sim-go/internal/insight"
	"github.com/11vate/balance-sim-go/internal/sweep"
)

// SweepRequest describes a parameter sweep over a base combat scenario.
type SweepRequest struct {
	Base           CombatRequest          `json:"base"`
	Ranges         []sweep.ParameterRange `json:"ranges"`
	Targets        []sweep.TargetMetric   `json:"targets"`
	TrialsPerPoint int                    `json:"trials_per_point"`
	Seed           *uint64                `json:"seed,omitempty"`
}

// ApplyCombatParams returns a copy of the request with parameters written
// into unit stats. Parameter names address a stat as "side.unit.stat", e.g.
// "alpha.a1.attack"; unknown paths are ignored so a sweep can carry knobs
// aimed at other scenario kinds.
func ApplyCombatParams(req CombatRequest, params map[string]float64) CombatRequest {
	out := req
	out.RosterA = cloneRoster(req.RosterA)
	out.RosterB = cloneRoster(req.RosterB)

	for name, value := range params {
		parts := strings.SplitN(name, ".", 3)
		if len(parts) != 3 {
			continue
		}
		for _, roster := range []*combat.Roster{&out.RosterA, &out.RosterB} {
			if roster.ID != parts[0] {
				continue
			}
			for i := range roster.Units {
				if roster.Units[i].ID != parts[1] {
					continue
				}
				switch parts[2] {
				case "health":
					roster.Units[i].Health = value
				case "attack":
					roster.Units[i].Attack = value
				case "defense":
					roster.Units[i].Defense = value
				case "speed":
					roster.Units[i].Speed = value
				}
			}
		}
	}
	return out
}

func cloneRoster(r combat.Roster) combat.Roster {
	out := combat.Roster{ID: r.ID, Units: make([]combat.Unit, len(r.Units))}
	copy(out.Units, r.Units)
	return out
}

// CombatEvaluator builds a sweep evaluator that runs a combat batch per
// point and exposes the batch metrics to the scorer.
func (r *Runner) CombatEvaluator(base CombatRequest, seed *uint64) sweep.Evaluator {
	return func(ctx context.Context, params map[string]float64, trials int) (map[string]float64, error) {
		req := ApplyCombatParams(base, params)
		req.Iterations = trials
		req.Seed = seed
		result, err := r.RunCombat(ctx, req)
		if err != nil {
			return nil, err
		}
		return result.Metrics, nil
	}
}

// RunSweep sweeps parameters over the base combat scenario and wraps the
// outcome in a Result envelope.
func (r *Runner) RunSweep(ctx context.Context, req SweepRequest) (*Result, error) {
	if req.TrialsPerPoint <= 0 {
		return nil, fmt.Errorf("%w: %d trials per point", ErrInsufficientIterations, req.TrialsPerPoint)
	}
	if err := combat.ValidateRosters(req.Base.RosterA, req.Base.RosterB); err != nil {
		return nil, err
	}

	start := time.Now()
	swept, err := sweep.Sweep(ctx, req.Ranges, req.Targets, req.TrialsPerPoint, r.CombatEvaluator(req.Base, req.Seed))
	if err != nil {
		return nil, err
	}

	// The batch score at each optimum feeds the balance-score insight rule:
	// a sweep whose best settings still miss the targets is itself a flag.
	iterations := 0
	bestScore := 0.0
	first := true
	for name, points := range swept.PerParameterScores {
		iterations += len(points) * req.TrialsPerPoint
		optimal := swept.OptimalParams[name]
		for _, p := range points {
			if p.Value == optimal && (first || p.Score < bestScore) {
				bestScore = p.Score
				first = false
			}
		}
	}

	metrics := map[string]float64{insight.MetricBalanceScore: bestScore}
	for name, value := range swept.OptimalParams {
		metrics["optimal."+name] = value
	}

	insights := insight.GenerateInsights(metrics)
	return &Result{
		ID:              uuid.New().String(),
		Type:            TypeSweep,
		Iterations:      iterations,
		Duration:        time.Since(start),
		Seed:            req.Seed,
		Metrics:         metrics,
		Insights:        insights,
		Recommendations: insight.GenerateRecommendations(insights, metrics),
		Data: Data{
			OptimalParams:   swept.OptimalParams,
			ParameterScores: swept.PerParameterScores,
		},
		CreatedAt: time.Now().UTC(),
	}, nil
}
