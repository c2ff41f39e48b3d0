// Package economy simulates resource inflow and outflow over a fixed tick
// horizon.
package economy

// ConditionType enumerates source activation conditions.
type ConditionType string

const (
	// CondAlways activates every tick. The zero Condition behaves as always.
	CondAlways ConditionType = "always"
	// CondThreshold activates while a resource is at or above a minimum.
	CondThreshold ConditionType = "threshold"
	// CondEvery activates on tick indices divisible by a period.
	CondEvery ConditionType = "every"
	// CondChance activates with a fixed per-tick probability.
	CondChance ConditionType = "chance"
)

// Condition gates a Source. The zero value is always-on.
type Condition struct {
	Type     ConditionType `json:"type" yaml:"type"`
	Resource string        `json:"resource,omitempty" yaml:"resource,omitempty"`
	Min      float64       `json:"min,omitempty" yaml:"min,omitempty"`
	Period   int           `json:"period,omitempty" yaml:"period,omitempty"`
	Chance   float64       `json:"chance,omitempty" yaml:"chance,omitempty"`
}

// Source adds Rate units of Resource on every tick its condition holds.
type Source struct {
	Resource  string     `json:"resource" yaml:"resource"`
	Rate      float64    `json:"rate" yaml:"rate"`
	Condition *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`
}

// Sink subtracts a cost from Resource every Frequency ticks. Cost is either
// the fixed Cost value or, when CostExpr is set, a scripted expression over
// the current resource state. A sink is skipped, silently, whenever the
// paying resource holds less than the cost; that skip is a policy choice,
// not an error.
type Sink struct {
	Resource  string  `json:"resource" yaml:"resource"`
	Cost      float64 `json:"cost,omitempty" yaml:"cost,omitempty"`
	CostExpr  string  `json:"cost_expr,omitempty" yaml:"cost_expr,omitempty"`
	Frequency int     `json:"frequency,omitempty" yaml:"frequency,omitempty"`
}

// Flow is the per-resource accounting for one trial: modeled inflow from
// applied sources, modeled outflow from applied sinks, and the net change
// from initial to final quantity.
type Flow struct {
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Net     float64 `json:"net"`
}

// TrialResult is the outcome of one economy trial.
type TrialResult struct {
	Ticks        int                  `json:"ticks"`
	History      []map[string]float64 `json:"history"`
	Final        map[string]float64   `json:"final"`
	Flows        map[string]Flow      `json:"flows"`
	SkippedSinks int                  `json:"skipped_sinks"`
}
