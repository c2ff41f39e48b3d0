package sweep

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

// peakEval scores highest when atk is near 7.
func peakEval(_ context.Context, params map[string]float64, _ int) (map[string]float64, error) {
	return map[string]float64{"power": params["atk"]}, nil
}

func TestSweepFindsPeak(t *testing.T) {
	ranges := []ParameterRange{{Name: "atk", Min: 0, Max: 10}}
	targets := []TargetMetric{{Name: "power", Target: 7, Tolerance: 2, Weight: 1}}

	result, err := Sweep(context.Background(), ranges, targets, 10, peakEval)
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	// Default step is (10-0)/10 = 1, so the optimum must land within one
	// step of the true peak.
	if got := result.OptimalParams["atk"]; math.Abs(got-7) > 1 {
		t.Errorf("optimal atk = %v, want within 1 of 7", got)
	}
	if points := result.PerParameterScores["atk"]; len(points) != 11 {
		t.Errorf("evaluated %d points, want 11", len(points))
	}
}

func TestSweepExplicitStep(t *testing.T) {
	ranges := []ParameterRange{{Name: "atk", Min: 0, Max: 10, Step: 0.5}}
	targets := []TargetMetric{{Name: "power", Target: 7, Tolerance: 2, Weight: 1}}

	result, err := Sweep(context.Background(), ranges, targets, 10, peakEval)
	if err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if got := result.OptimalParams["atk"]; got != 7 {
		t.Errorf("optimal atk = %v, want exactly 7 with step 0.5", got)
	}
}

func TestSweepHoldsOtherParamsAtCurrent(t *testing.T) {
	ranges := []ParameterRange{
		{Name: "atk", Min: 0, Max: 10, Current: 3},
		{Name: "def", Min: 0, Max: 4, Current: 2},
	}
	targets := []TargetMetric{{Name: "m", Target: 0, Tolerance: 1, Weight: 1}}

	var sawHeldDef atomic.Bool
	eval := func(_ context.Context, params map[string]float64, _ int) (map[string]float64, error) {
		if params["def"] == 2 {
			sawHeldDef.Store(true)
		}
		return map[string]float64{"m": 0}, nil
	}

	if _, err := Sweep(context.Background(), ranges, targets, 1, eval); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if !sawHeldDef.Load() {
		t.Error("sweeping atk should hold def at its current value")
	}
}

func TestSweepInputErrors(t *testing.T) {
	eval := peakEval
	ctx := context.Background()
	targets := []TargetMetric{{Name: "power", Target: 7, Tolerance: 2, Weight: 1}}

	_, err := Sweep(ctx, nil, targets, 1, eval)
	if !errors.Is(err, ErrNoRanges) {
		t.Errorf("no ranges: error = %v, want ErrNoRanges", err)
	}

	_, err = Sweep(ctx, []ParameterRange{{Name: "atk", Min: 10, Max: 0}}, targets, 1, eval)
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("min>max: error = %v, want ErrInvalidRange", err)
	}

	bad := []TargetMetric{{Name: "power", Target: 7, Tolerance: 0, Weight: 1}}
	_, err = Sweep(ctx, []ParameterRange{{Name: "atk", Min: 0, Max: 1}}, bad, 1, eval)
	if !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("zero tolerance: error = %v, want ErrInvalidTarget", err)
	}
}

func TestSweepEvaluatorErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	eval := func(context.Context, map[string]float64, int) (map[string]float64, error) {
		return nil, boom
	}
	_, err := Sweep(context.Background(), []ParameterRange{{Name: "atk", Min: 0, Max: 10}},
		[]TargetMetric{{Name: "m", Target: 0, Tolerance: 1, Weight: 1}}, 1, eval)
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped evaluator error", err)
	}
}

func TestScore(t *testing.T) {
	targets := []TargetMetric{
		{Name: "a", Target: 10, Tolerance: 5, Weight: 1},
		{Name: "b", Target: 0, Tolerance: 1, Weight: 3},
	}

	testCases := []struct {
		name    string
		metrics map[string]float64
		want    float64
	}{
		{"perfect", map[string]float64{"a": 10, "b": 0}, 1},
		{"a half off", map[string]float64{"a": 12.5, "b": 0}, (0.5 + 3) / 4},
		{"b beyond tolerance clamps to zero", map[string]float64{"a": 10, "b": 5}, 0.25},
		{"missing metrics ignored", map[string]float64{"a": 10}, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.metrics, targets); math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("Score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScoreZeroWeight(t *testing.T) {
	targets := []TargetMetric{{Name: "a", Target: 1, Tolerance: 1, Weight: 0}}
	if got := Score(map[string]float64{"a": 1}, targets); got != 0 {
		t.Errorf("zero total weight: Score = %v, want 0 (not NaN)", got)
	}
	if got := Score(nil, nil); got != 0 {
		t.Errorf("no targets: Score = %v, want 0", got)
	}
}
