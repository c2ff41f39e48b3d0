package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const combatYAML = `
name: duel
kind: combat
iterations: 500
seed: 42
combat:
  roster_a:
    id: alpha
    units:
      - id: a1
        health: 100
        attack: 20
        defense: 5
  roster_b:
    id: beta
    units:
      - id: b1
        health: 100
        attack: 10
        defense: 5
  policy: random
  max_turns: 100
`

const economyYAML = `
name: gold-rush
kind: economy
iterations: 100
economy:
  initial:
    gold: 100
  sources:
    - resource: gold
      rate: 50
  sinks:
    - resource: gold
      cost_expr: "state.gold * 0.1"
      frequency: 2
  ticks: 10
`

const sweepYAML = `
name: tuning
kind: sweep
combat:
  roster_a:
    id: alpha
    units: [{id: a1, health: 100, attack: 20, defense: 5}]
  roster_b:
    id: beta
    units: [{id: b1, health: 100, attack: 10, defense: 5}]
sweep:
  ranges:
    - {name: alpha.a1.attack, min: 6, max: 26, step: 2}
  targets:
    - {name: mean_turns, target: 10, tolerance: 6, weight: 1}
  trials_per_point: 50
`

func TestParseCombatScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(combatYAML))
	if err != nil {
		t.Fatalf("ParseScenario returned error: %v", err)
	}
	if sc.Kind != KindCombat {
		t.Errorf("kind = %s, want combat", sc.Kind)
	}
	if sc.Iterations != 500 {
		t.Errorf("iterations = %d, want 500", sc.Iterations)
	}
	if sc.Seed == nil || *sc.Seed != 42 {
		t.Errorf("seed = %v, want 42", sc.Seed)
	}
	if sc.Combat.RosterA.Units[0].Attack != 20 {
		t.Errorf("roster A attack = %v, want 20", sc.Combat.RosterA.Units[0].Attack)
	}
}

func TestParseEconomyScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(economyYAML))
	if err != nil {
		t.Fatalf("ParseScenario returned error: %v", err)
	}
	if sc.Economy.Ticks != 10 {
		t.Errorf("ticks = %d, want 10", sc.Economy.Ticks)
	}
	if sc.Economy.Sinks[0].CostExpr == "" {
		t.Error("sink cost expression not decoded")
	}
	if sc.Economy.Sinks[0].Frequency != 2 {
		t.Errorf("sink frequency = %d, want 2", sc.Economy.Sinks[0].Frequency)
	}
}

func TestParseSweepScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(sweepYAML))
	if err != nil {
		t.Fatalf("ParseScenario returned error: %v", err)
	}
	if len(sc.Sweep.Ranges) != 1 || sc.Sweep.Ranges[0].Name != "alpha.a1.attack" {
		t.Errorf("ranges not decoded: %+v", sc.Sweep.Ranges)
	}
}

func TestParseScenarioErrors(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
	}{
		{"unknown kind", "kind: lottery\n"},
		{"combat without section", "kind: combat\n"},
		{"economy without section", "kind: economy\n"},
		{"sweep without combat", "kind: sweep\nsweep:\n  trials_per_point: 1\n"},
		{"unknown field", "kind: combat\nrosters: []\n"},
		{"not yaml", "{{{"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tc.yaml)); !errors.Is(err, ErrInvalidScenario) {
				t.Errorf("error = %v, want ErrInvalidScenario", err)
			}
		})
	}
}

func TestLoadScenarioFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(combatYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario returned error: %v", err)
	}
	if sc.Name != "duel" {
		t.Errorf("name = %q, want duel", sc.Name)
	}

	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer returned error: %v", err)
	}
	if cfg.Addr == "" || cfg.DBPath == "" {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoadServerOverride(t *testing.T) {
	t.Setenv("BALANCESIM_ADDR", ":9999")
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer returned error: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Errorf("addr = %q, want :9999", cfg.Addr)
	}
}
