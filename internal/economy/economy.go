package economy

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/11vate/balance-sim-go/internal/rng"
	"github.com/11vate/balance-sim-go/internal/scripting"
)

var (
	// ErrInvalidDuration marks a non-positive tick horizon.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrInvalidRule marks a malformed source or sink.
	ErrInvalidRule = errors.New("invalid rule")
)

// ledger tracks resource quantities in decimal so thousands of repeated
// rate and cost applications stay exact. Floats only appear at the API
// boundary (history snapshots and scripted cost inputs).
type ledger map[string]decimal.Decimal

func newLedger(initial map[string]float64) ledger {
	l := make(ledger, len(initial))
	for name, qty := range initial {
		l[name] = decimal.NewFromFloat(qty)
	}
	return l
}

func (l ledger) snapshot() map[string]float64 {
	snap := make(map[string]float64, len(l))
	for name, qty := range l {
		snap[name], _ = qty.Float64()
	}
	return snap
}

// compiledSink pairs a sink with its evaluator when the cost is scripted.
type compiledSink struct {
	sink Sink
	cost decimal.Decimal
	eval *scripting.Evaluator
}

func compileSinks(sinks []Sink) ([]compiledSink, error) {
	compiled := make([]compiledSink, len(sinks))
	for i, sink := range sinks {
		if sink.Resource == "" {
			return nil, fmt.Errorf("%w: sink %d has no resource", ErrInvalidRule, i)
		}
		if sink.Cost < 0 {
			return nil, fmt.Errorf("%w: sink %d has negative cost %v", ErrInvalidRule, i, sink.Cost)
		}
		cs := compiledSink{sink: sink, cost: decimal.NewFromFloat(sink.Cost)}
		if sink.CostExpr != "" {
			expr, err := scripting.Compile(sink.CostExpr)
			if err != nil {
				return nil, fmt.Errorf("%w: sink %d cost: %v", ErrInvalidRule, i, err)
			}
			cs.eval = expr.Evaluator()
		}
		compiled[i] = cs
	}
	return compiled, nil
}

// Validate checks a rule set without running it, so a batch can reject bad
// input before any trial starts.
func Validate(sources []Source, sinks []Sink, ticks int) error {
	if ticks <= 0 {
		return fmt.Errorf("%w: %d ticks", ErrInvalidDuration, ticks)
	}
	if err := validateSources(sources); err != nil {
		return err
	}
	_, err := compileSinks(sinks)
	return err
}

func validateSources(sources []Source) error {
	for i, src := range sources {
		if src.Resource == "" {
			return fmt.Errorf("%w: source %d has no resource", ErrInvalidRule, i)
		}
		if c := src.Condition; c != nil {
			switch c.Type {
			case "", CondAlways:
			case CondThreshold:
				if c.Resource == "" {
					return fmt.Errorf("%w: source %d threshold condition has no resource", ErrInvalidRule, i)
				}
			case CondEvery:
				if c.Period <= 0 {
					return fmt.Errorf("%w: source %d period must be positive", ErrInvalidRule, i)
				}
			case CondChance:
				if c.Chance < 0 || c.Chance > 1 {
					return fmt.Errorf("%w: source %d chance %v outside [0, 1]", ErrInvalidRule, i, c.Chance)
				}
			default:
				return fmt.Errorf("%w: source %d has unknown condition type %q", ErrInvalidRule, i, c.Type)
			}
		}
	}
	return nil
}

// active reports whether the source fires on this tick.
func active(src Source, tick int, l ledger, random rng.Source) bool {
	c := src.Condition
	if c == nil {
		return true
	}
	switch c.Type {
	case "", CondAlways:
		return true
	case CondThreshold:
		return l[c.Resource].GreaterThanOrEqual(decimal.NewFromFloat(c.Min))
	case CondEvery:
		return tick%c.Period == 0
	case CondChance:
		return random.Float64() < c.Chance
	}
	return false
}

// Simulate runs one economy trial over ticks 0..ticks-1. Each tick applies
// every active source in order, then every due sink in order, recording a
// full state snapshot. Ordering is fixed so seeded trials replay exactly.
func Simulate(initial map[string]float64, sources []Source, sinks []Sink, ticks int, random rng.Source) (TrialResult, error) {
	if ticks <= 0 {
		return TrialResult{}, fmt.Errorf("%w: %d ticks", ErrInvalidDuration, ticks)
	}
	if err := validateSources(sources); err != nil {
		return TrialResult{}, err
	}
	compiled, err := compileSinks(sinks)
	if err != nil {
		return TrialResult{}, err
	}
	if random == nil {
		random = rng.Default()
	}

	l := newLedger(initial)
	inflow := make(map[string]decimal.Decimal)
	outflow := make(map[string]decimal.Decimal)
	history := make([]map[string]float64, 0, ticks)
	skipped := 0

	for tick := 0; tick < ticks; tick++ {
		for _, src := range sources {
			if !active(src, tick, l, random) {
				continue
			}
			rate := decimal.NewFromFloat(src.Rate)
			l[src.Resource] = l[src.Resource].Add(rate)
			inflow[src.Resource] = inflow[src.Resource].Add(rate)
		}

		for _, cs := range compiled {
			freq := cs.sink.Frequency
			if freq <= 0 {
				freq = 1
			}
			if tick%freq != 0 {
				continue
			}
			cost := cs.cost
			if cs.eval != nil {
				v, err := cs.eval.Eval(l.snapshot())
				if err != nil {
					return TrialResult{}, fmt.Errorf("sink %q cost at tick %d: %w", cs.sink.Resource, tick, err)
				}
				cost = decimal.NewFromFloat(v)
				// A negative scripted cost would turn the sink into a source.
				if cost.IsNegative() {
					return TrialResult{}, fmt.Errorf("%w: sink %q cost %s at tick %d is negative",
						ErrInvalidRule, cs.sink.Resource, cost, tick)
				}
			}
			// Sufficiency check: a sink never drives its resource negative.
			if l[cs.sink.Resource].LessThan(cost) {
				skipped++
				continue
			}
			l[cs.sink.Resource] = l[cs.sink.Resource].Sub(cost)
			outflow[cs.sink.Resource] = outflow[cs.sink.Resource].Add(cost)
		}

		history = append(history, l.snapshot())
	}

	final := l.snapshot()
	flows := make(map[string]Flow)
	seen := make(map[string]bool)
	for _, m := range []map[string]float64{initial, final} {
		for name := range m {
			seen[name] = true
		}
	}
	for name := range seen {
		in, _ := inflow[name].Float64()
		out, _ := outflow[name].Float64()
		flows[name] = Flow{
			Inflow:  in,
			Outflow: out,
			Net:     final[name] - initial[name],
		}
	}

	return TrialResult{
		Ticks:        ticks,
		History:      history,
		Final:        final,
		Flows:        flows,
		SkippedSinks: skipped,
	}, nil
}
