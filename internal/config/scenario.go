// Package config loads simulation scenarios from YAML files and runtime
// settings from the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/11vate/balance-sim-go/internal/combat"
	"github.com/11vate/balance-sim-go/internal/economy"
	"github.com/11vate/balance-sim-go/internal/sweep"
)

// ErrInvalidScenario marks a scenario file that cannot be run.
var ErrInvalidScenario = errors.New("invalid scenario")

// Kind selects which simulator a scenario drives.
type Kind string

const (
	KindCombat  Kind = "combat"
	KindEconomy Kind = "economy"
	KindSweep   Kind = "sweep"
)

// CombatScenario is the combat section of a scenario file.
type CombatScenario struct {
	RosterA  combat.Roster `yaml:"roster_a"`
	RosterB  combat.Roster `yaml:"roster_b"`
	Policy   string        `yaml:"policy,omitempty"`
	MaxTurns int           `yaml:"max_turns,omitempty"`
}

// EconomyScenario is the economy section of a scenario file.
type EconomyScenario struct {
	Initial map[string]float64 `yaml:"initial"`
	Sources []economy.Source   `yaml:"sources,omitempty"`
	Sinks   []economy.Sink     `yaml:"sinks,omitempty"`
	Ticks   int                `yaml:"ticks"`
}

// SweepScenario is the sweep section of a scenario file. The sweep runs
// over the scenario's combat section.
type SweepScenario struct {
	Ranges         []sweep.ParameterRange `yaml:"ranges"`
	Targets        []sweep.TargetMetric   `yaml:"targets"`
	TrialsPerPoint int                    `yaml:"trials_per_point"`
}

// Scenario is one self-contained simulation setup. VerifyKey selects the
// verifiable HMAC trial stream instead of PCG seeding.
type Scenario struct {
	Name       string           `yaml:"name"`
	Kind       Kind             `yaml:"kind"`
	Iterations int              `yaml:"iterations"`
	Seed       *uint64          `yaml:"seed,omitempty"`
	VerifyKey  string           `yaml:"verify_key,omitempty"`
	Combat     *CombatScenario  `yaml:"combat,omitempty"`
	Economy    *EconomyScenario `yaml:"economy,omitempty"`
	Sweep      *SweepScenario   `yaml:"sweep,omitempty"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := sc.validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	switch sc.Kind {
	case KindCombat:
		if sc.Combat == nil {
			return fmt.Errorf("%w: kind combat needs a combat section", ErrInvalidScenario)
		}
	case KindEconomy:
		if sc.Economy == nil {
			return fmt.Errorf("%w: kind economy needs an economy section", ErrInvalidScenario)
		}
	case KindSweep:
		if sc.Sweep == nil || sc.Combat == nil {
			return fmt.Errorf("%w: kind sweep needs sweep and combat sections", ErrInvalidScenario)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidScenario, sc.Kind)
	}
	return nil
}
