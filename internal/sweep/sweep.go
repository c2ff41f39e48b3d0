// Package sweep varies tunable numeric parameters and scores each setting
// against target metrics.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidRange marks a range whose min exceeds its max.
	ErrInvalidRange = errors.New("invalid parameter range")

	// ErrInvalidTarget marks a target metric that cannot score anything.
	ErrInvalidTarget = errors.New("invalid target metric")

	// ErrNoRanges marks a sweep with nothing to vary.
	ErrNoRanges = errors.New("no parameter ranges")
)

// ParameterRange is the sweep domain of one tunable knob. Current is the
// value the knob holds while other ranges are being swept.
type ParameterRange struct {
	Name    string  `json:"name" yaml:"name"`
	Min     float64 `json:"min" yaml:"min"`
	Max     float64 `json:"max" yaml:"max"`
	Step    float64 `json:"step,omitempty" yaml:"step,omitempty"`
	Current float64 `json:"current,omitempty" yaml:"current,omitempty"`
}

// TargetMetric defines what "balanced" means for one metric.
type TargetMetric struct {
	Name      string  `json:"name" yaml:"name"`
	Target    float64 `json:"target" yaml:"target"`
	Tolerance float64 `json:"tolerance" yaml:"tolerance"`
	Weight    float64 `json:"weight" yaml:"weight"`
}

// Evaluator produces actual metric values for one parameter setting,
// typically by running a trial batch. trials is the requested batch size
// per point. Implementations must honor ctx cancellation.
type Evaluator func(ctx context.Context, params map[string]float64, trials int) (map[string]float64, error)

// PointScore records one evaluated setting of one parameter.
type PointScore struct {
	Value   float64            `json:"value"`
	Score   float64            `json:"score"`
	Metrics map[string]float64 `json:"metrics"`
}

// Result holds the best settings found and every point evaluated.
type Result struct {
	OptimalParams      map[string]float64      `json:"optimal_params"`
	PerParameterScores map[string][]PointScore `json:"per_parameter_scores"`
}

// Sweep steps each range from min to max independently, holding every other
// parameter at its Current value, and records the best-scoring point per
// range. Independent sweeping is a deliberate simplification: joint optima
// that only appear when two knobs move together will not be found.
func Sweep(ctx context.Context, ranges []ParameterRange, targets []TargetMetric, trialsPerPoint int, eval Evaluator) (*Result, error) {
	if len(ranges) == 0 {
		return nil, ErrNoRanges
	}
	for _, r := range ranges {
		if r.Min > r.Max {
			return nil, fmt.Errorf("%w: %q min %v > max %v", ErrInvalidRange, r.Name, r.Min, r.Max)
		}
	}
	for _, tgt := range targets {
		if tgt.Tolerance <= 0 {
			return nil, fmt.Errorf("%w: %q tolerance must be positive", ErrInvalidTarget, tgt.Name)
		}
		if tgt.Weight < 0 {
			return nil, fmt.Errorf("%w: %q has negative weight", ErrInvalidTarget, tgt.Name)
		}
	}

	result := &Result{
		OptimalParams:      make(map[string]float64, len(ranges)),
		PerParameterScores: make(map[string][]PointScore, len(ranges)),
	}

	for i, r := range ranges {
		points := rangePoints(r)
		scores := make([]PointScore, len(points))

		g, gctx := errgroup.WithContext(ctx)
		for j, value := range points {
			g.Go(func() error {
				params := baseParams(ranges)
				params[r.Name] = value
				metrics, err := eval(gctx, params, trialsPerPoint)
				if err != nil {
					return fmt.Errorf("evaluate %s=%v: %w", r.Name, value, err)
				}
				scores[j] = PointScore{Value: value, Score: Score(metrics, targets), Metrics: metrics}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		best := 0
		for j := range scores {
			if scores[j].Score > scores[best].Score {
				best = j
			}
		}
		result.OptimalParams[ranges[i].Name] = scores[best].Value
		result.PerParameterScores[ranges[i].Name] = scores
	}

	return result, nil
}

// Score computes the weighted average of per-metric closeness scores:
// max(0, 1 - |actual-target|/tolerance) per metric. A zero total weight
// yields 0, never NaN.
func Score(metrics map[string]float64, targets []TargetMetric) float64 {
	var weighted, totalWeight float64
	for _, tgt := range targets {
		actual, ok := metrics[tgt.Name]
		if !ok {
			continue
		}
		s := 1 - math.Abs(actual-tgt.Target)/tgt.Tolerance
		if s < 0 {
			s = 0
		}
		weighted += s * tgt.Weight
		totalWeight += tgt.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return weighted / totalWeight
}

// rangePoints enumerates the settings to evaluate. Step defaults to a tenth
// of the span; a degenerate range yields its single point.
func rangePoints(r ParameterRange) []float64 {
	if r.Min == r.Max {
		return []float64{r.Min}
	}
	step := r.Step
	if step <= 0 {
		step = (r.Max - r.Min) / 10
	}
	var points []float64
	// The epsilon keeps max itself in the sweep when the span is an exact
	// multiple of the step.
	for v := r.Min; v <= r.Max+step*1e-9; v += step {
		points = append(points, math.Min(v, r.Max))
	}
	return points
}

// baseParams holds every knob at its Current value.
func baseParams(ranges []ParameterRange) map[string]float64 {
	params := make(map[string]float64, len(ranges))
	for _, r := range ranges {
		params[r.Name] = r.Current
	}
	return params
}
