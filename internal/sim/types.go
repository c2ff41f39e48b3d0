// Package sim runs batches of independent trials and reduces them to a
// single result envelope with aggregate metrics, insights and
// recommendations.
package sim

import (
	"time"

	"github.com/11vate/balance-sim-go/internal/combat"
	"github.com/11vate/balance-sim-go/internal/economy"
	"github.com/11vate/balance-sim-go/internal/insight"
	"github.com/11vate/balance-sim-go/internal/stats"
	"github.com/11vate/balance-sim-go/internal/sweep"
)

// Type tags what kind of batch produced a Result.
type Type string

const (
	TypeCombat  Type = "combat"
	TypeEconomy Type = "economy"
	TypeSweep   Type = "sweep"
)

// CombatRequest describes a combat batch. VerifyKey, when set, switches
// every trial to the HMAC stream derived from (key, batch type, trial index)
// so any single trial can be replayed by a key holder; it takes precedence
// over Seed.
type CombatRequest struct {
	RosterA    combat.Roster `json:"roster_a"`
	RosterB    combat.Roster `json:"roster_b"`
	Policy     string        `json:"policy,omitempty"`
	MaxTurns   int           `json:"max_turns,omitempty"`
	Iterations int           `json:"iterations"`
	Seed       *uint64       `json:"seed,omitempty"`
	VerifyKey  string        `json:"verify_key,omitempty"`
}

// EconomyRequest describes an economy batch.
type EconomyRequest struct {
	Initial    map[string]float64 `json:"initial"`
	Sources    []economy.Source   `json:"sources,omitempty"`
	Sinks      []economy.Sink     `json:"sinks,omitempty"`
	Ticks      int                `json:"ticks"`
	Iterations int                `json:"iterations"`
	Seed       *uint64            `json:"seed,omitempty"`
	VerifyKey  string             `json:"verify_key,omitempty"`
}

// Data bundles the aggregated raw material behind a Result's metrics.
type Data struct {
	Distributions   map[string]stats.Distribution `json:"distributions,omitempty"`
	WinsBySide      map[string]int                `json:"wins_by_side,omitempty"`
	MeanFlows       map[string]economy.Flow       `json:"mean_flows,omitempty"`
	SkippedSinks    int                           `json:"skipped_sinks,omitempty"`
	OptimalParams   map[string]float64            `json:"optimal_params,omitempty"`
	ParameterScores map[string][]sweep.PointScore `json:"parameter_scores,omitempty"`
}

// Result is the terminal artifact of a batch. It is never mutated after
// being returned.
type Result struct {
	ID              string                   `json:"id"`
	Type            Type                     `json:"type"`
	Iterations      int                      `json:"iterations"`
	Duration        time.Duration            `json:"duration"`
	Seed            *uint64                  `json:"seed,omitempty"`
	Metrics         map[string]float64       `json:"metrics"`
	Insights        []insight.Insight        `json:"insights"`
	Recommendations []insight.Recommendation `json:"recommendations"`
	Data            Data                     `json:"data"`
	CreatedAt       time.Time                `json:"created_at"`
}
