package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/11vate/balance-sim-go/internal/combat"
	"github.com/11vate/balance-sim-go/internal/sweep"
)

func TestApplyCombatParams(t *testing.T) {
	base := lopsidedCombatRequest(10, nil)
	params := map[string]float64{
		"alpha.a1.attack": 42,
		"beta.b1.defense": 9,
		"alpha.a1":        1, // too few segments, ignored
		"gamma.x.attack":  1, // unknown side, ignored
	}

	got := ApplyCombatParams(base, params)
	if got.RosterA.Units[0].Attack != 42 {
		t.Errorf("alpha attack = %v, want 42", got.RosterA.Units[0].Attack)
	}
	if got.RosterB.Units[0].Defense != 9 {
		t.Errorf("beta defense = %v, want 9", got.RosterB.Units[0].Defense)
	}
	// The base request must stay untouched.
	if base.RosterA.Units[0].Attack != 20 {
		t.Errorf("base mutated: alpha attack = %v", base.RosterA.Units[0].Attack)
	}
}

func TestRunSweepFindsPacingOptimum(t *testing.T) {
	// Single deterministic units: alpha kills in ceil(100/(atk-5)) turns.
	// atk=16 gives exactly the 10-turn target.
	seed := uint64(5)
	req := SweepRequest{
		Base: lopsidedCombatRequest(0, nil),
		Ranges: []sweep.ParameterRange{
			{Name: "alpha.a1.attack", Min: 6, Max: 26, Step: 2},
		},
		Targets: []sweep.TargetMetric{
			{Name: "mean_turns", Target: 10, Tolerance: 6, Weight: 1},
		},
		TrialsPerPoint: 5,
		Seed:           &seed,
	}

	result, err := NewRunner().RunSweep(context.Background(), req)
	if err != nil {
		t.Fatalf("RunSweep returned error: %v", err)
	}
	if result.Type != TypeSweep {
		t.Errorf("type = %s, want sweep", result.Type)
	}
	if got := result.Metrics["optimal.alpha.a1.attack"]; got != 16 {
		t.Errorf("optimal attack = %v, want 16", got)
	}
	if result.Iterations != 11*5 {
		t.Errorf("iterations = %d, want 55", result.Iterations)
	}

	// The data bundle carries the full sweep outcome, not just the metrics.
	if got := result.Data.OptimalParams["alpha.a1.attack"]; got != 16 {
		t.Errorf("data optimal attack = %v, want 16", got)
	}
	points := result.Data.ParameterScores["alpha.a1.attack"]
	if len(points) != 11 {
		t.Fatalf("parameter scores = %d points, want 11", len(points))
	}
	var best sweep.PointScore
	for _, p := range points {
		if p.Score > best.Score {
			best = p
		}
	}
	if best.Value != 16 || best.Score != 1 {
		t.Errorf("best point = %v score %v, want value 16 score 1", best.Value, best.Score)
	}
}

func TestRunSweepInputErrors(t *testing.T) {
	r := NewRunner()
	ctx := context.Background()

	req := SweepRequest{Base: lopsidedCombatRequest(0, nil)}
	req.TrialsPerPoint = 0
	if _, err := r.RunSweep(ctx, req); !errors.Is(err, ErrInsufficientIterations) {
		t.Errorf("error = %v, want ErrInsufficientIterations", err)
	}

	req = SweepRequest{
		Base:           CombatRequest{RosterA: combat.Roster{ID: "a"}, RosterB: combat.Roster{ID: "b"}},
		TrialsPerPoint: 5,
		Ranges:         []sweep.ParameterRange{{Name: "x", Min: 0, Max: 1}},
	}
	if _, err := r.RunSweep(ctx, req); !errors.Is(err, combat.ErrInvalidRoster) {
		t.Errorf("error = %v, want ErrInvalidRoster", err)
	}

	req = SweepRequest{
		Base:           lopsidedCombatRequest(0, nil),
		TrialsPerPoint: 5,
		Ranges:         []sweep.ParameterRange{{Name: "x", Min: 5, Max: 1}},
	}
	if _, err := r.RunSweep(ctx, req); !errors.Is(err, sweep.ErrInvalidRange) {
		t.Errorf("error = %v, want ErrInvalidRange", err)
	}
}
