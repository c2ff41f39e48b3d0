package combat

import (
	"sort"

	"github.com/11vate/balance-sim-go/internal/rng"
)

// Target is a living enemy a policy can choose from. Health is the
// attacker-visible remaining health from the trial ledger, not the
// configured maximum. Slot is the unit's position in its roster.
type Target struct {
	Unit   *Unit
	Health float64
	Slot   int
}

// Policy selects which living enemy a unit attacks. Implementations must be
// deterministic given the same targets slice and random source so that
// seeded trials replay exactly.
type Policy interface {
	// SelectTarget returns an index into targets. targets is never empty
	// and is ordered by roster position.
	SelectTarget(attacker *Unit, targets []Target, src rng.Source) int

	// Name returns the policy's identifier.
	Name() string
}

var policyRegistry = make(map[string]Policy)

// RegisterPolicy adds a policy to the registry.
func RegisterPolicy(p Policy) {
	policyRegistry[p.Name()] = p
}

// GetPolicy retrieves a policy by name.
func GetPolicy(name string) (Policy, bool) {
	p, ok := policyRegistry[name]
	return p, ok
}

// ListPolicies returns all registered policy names, sorted.
func ListPolicies() []string {
	names := make([]string, 0, len(policyRegistry))
	for name := range policyRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RandomPolicy picks a uniformly random living enemy. This is the default.
type RandomPolicy struct{}

func (RandomPolicy) Name() string { return "random" }

func (RandomPolicy) SelectTarget(_ *Unit, targets []Target, src rng.Source) int {
	return src.IntN(len(targets))
}

// FocusPolicy finishes off the enemy with the least remaining health,
// breaking ties by roster position.
type FocusPolicy struct{}

func (FocusPolicy) Name() string { return "focus" }

func (FocusPolicy) SelectTarget(_ *Unit, targets []Target, _ rng.Source) int {
	best := 0
	for i, tg := range targets {
		if tg.Health < targets[best].Health {
			best = i
		}
	}
	return best
}

// ThreatPolicy attacks the enemy with the highest attack stat, breaking ties
// by roster position.
type ThreatPolicy struct{}

func (ThreatPolicy) Name() string { return "threat" }

func (ThreatPolicy) SelectTarget(_ *Unit, targets []Target, _ rng.Source) int {
	best := 0
	for i, tg := range targets {
		if tg.Unit.Attack > targets[best].Unit.Attack {
			best = i
		}
	}
	return best
}

func init() {
	RegisterPolicy(RandomPolicy{})
	RegisterPolicy(FocusPolicy{})
	RegisterPolicy(ThreatPolicy{})
}
