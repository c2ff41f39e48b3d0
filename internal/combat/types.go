// Package combat simulates stochastic battles between two unit rosters.
package combat

// Unit is one combatant's configured stat block. Stat blocks are read-only
// during simulation; per-trial health lives in a trial-local ledger.
type Unit struct {
	ID        string             `json:"id" yaml:"id"`
	Health    float64            `json:"health" yaml:"health"`
	Attack    float64            `json:"attack" yaml:"attack"`
	Defense   float64            `json:"defense" yaml:"defense"`
	Speed     float64            `json:"speed" yaml:"speed"`
	Level     int                `json:"level,omitempty" yaml:"level,omitempty"`
	Abilities []string           `json:"abilities,omitempty" yaml:"abilities,omitempty"`
	Stats     map[string]float64 `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Roster is a named side in a combat trial.
type Roster struct {
	ID    string `json:"id" yaml:"id"`
	Units []Unit `json:"units" yaml:"units"`
}

// TrialResult is the terminal outcome of one battle. Immutable once returned.
type TrialResult struct {
	Winner      string  `json:"winner"`
	Turns       int     `json:"turns"`
	TotalDamage float64 `json:"total_damage"`
}
