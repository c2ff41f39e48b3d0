package combat

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/11vate/balance-sim-go/internal/rng"
)

var (
	// ErrInvalidRoster marks a roster that cannot be simulated.
	ErrInvalidRoster = errors.New("invalid roster")

	// ErrPolicyNotFound marks an unregistered targeting policy name.
	ErrPolicyNotFound = errors.New("policy not found")
)

// DefaultMaxTurns bounds a battle when neither side is eliminated.
const DefaultMaxTurns = 100

// side is the trial-local mutable state for one roster: a health ledger
// keyed by unit position. The configured Roster is never written to.
type side struct {
	roster *Roster
	health []float64
}

func newSide(r *Roster) *side {
	s := &side{roster: r, health: make([]float64, len(r.Units))}
	for i, u := range r.Units {
		s.health[i] = u.Health
	}
	return s
}

func (s *side) alive() bool {
	for _, h := range s.health {
		if h > 0 {
			return true
		}
	}
	return false
}

func (s *side) remaining() float64 {
	total := 0.0
	for _, h := range s.health {
		if h > 0 {
			total += h
		}
	}
	return total
}

// targets lists the side's living units in roster order. The fixed order is
// what makes seeded trials deterministic; do not reorder.
func (s *side) targets(buf []Target) []Target {
	buf = buf[:0]
	for i := range s.roster.Units {
		if s.health[i] > 0 {
			buf = append(buf, Target{Unit: &s.roster.Units[i], Health: s.health[i], Slot: i})
		}
	}
	return buf
}

// ValidateRosters reports every configuration problem that would make a
// trial meaningless, not just the first one found.
func ValidateRosters(a, b Roster) error {
	var err error
	for _, r := range []Roster{a, b} {
		if len(r.Units) == 0 {
			err = multierr.Append(err, fmt.Errorf("%w: side %q has no units", ErrInvalidRoster, r.ID))
			continue
		}
		seen := make(map[string]bool, len(r.Units))
		for _, u := range r.Units {
			if seen[u.ID] {
				err = multierr.Append(err, fmt.Errorf("%w: side %q has duplicate unit id %q", ErrInvalidRoster, r.ID, u.ID))
			}
			seen[u.ID] = true
			if u.Health <= 0 {
				err = multierr.Append(err, fmt.Errorf("%w: unit %q on side %q has non-positive health %v", ErrInvalidRoster, u.ID, r.ID, u.Health))
			}
		}
	}
	if a.ID == b.ID {
		err = multierr.Append(err, fmt.Errorf("%w: both sides share id %q", ErrInvalidRoster, a.ID))
	}
	return err
}

// Simulate runs one battle to a terminal outcome and returns who won, how
// many turns elapsed and the cumulative damage dealt.
//
// Each turn every living unit on side A acts before any unit on side B. A
// unit's policy picks a living enemy; damage is max(0, attack-defense). A
// side loses when all its ledgered health is <= 0. If maxTurns (default 100)
// elapses first, the side with more total remaining health wins; an exact
// tie goes to side A. The tie rule is arbitrary but fixed.
func Simulate(a, b Roster, policyName string, maxTurns int, src rng.Source) (TrialResult, error) {
	if err := ValidateRosters(a, b); err != nil {
		return TrialResult{}, err
	}
	if policyName == "" {
		policyName = "random"
	}
	policy, ok := GetPolicy(policyName)
	if !ok {
		return TrialResult{}, fmt.Errorf("%w: %q", ErrPolicyNotFound, policyName)
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	sideA, sideB := newSide(&a), newSide(&b)
	targetBuf := make([]Target, 0, max(len(a.Units), len(b.Units)))

	totalDamage := 0.0
	for turn := 1; turn <= maxTurns; turn++ {
		totalDamage += actAll(sideA, sideB, policy, src, &targetBuf)
		if !sideB.alive() {
			return TrialResult{Winner: a.ID, Turns: turn, TotalDamage: totalDamage}, nil
		}
		totalDamage += actAll(sideB, sideA, policy, src, &targetBuf)
		if !sideA.alive() {
			return TrialResult{Winner: b.ID, Turns: turn, TotalDamage: totalDamage}, nil
		}
	}

	// Turn-limit tiebreak on remaining health, side A favored on an exact tie.
	winner := a.ID
	if sideB.remaining() > sideA.remaining() {
		winner = b.ID
	}
	return TrialResult{Winner: winner, Turns: maxTurns, TotalDamage: totalDamage}, nil
}

// actAll has every living attacker strike once, returning damage dealt.
func actAll(attackers, defenders *side, policy Policy, src rng.Source, targetBuf *[]Target) float64 {
	dealt := 0.0
	for i := range attackers.roster.Units {
		if attackers.health[i] <= 0 {
			continue
		}
		*targetBuf = defenders.targets(*targetBuf)
		if len(*targetBuf) == 0 {
			break
		}
		attacker := &attackers.roster.Units[i]
		chosen := (*targetBuf)[policy.SelectTarget(attacker, *targetBuf, src)]

		damage := attacker.Attack - chosen.Unit.Defense
		if damage < 0 {
			damage = 0
		}
		defenders.health[chosen.Slot] -= damage
		dealt += damage
	}
	return dealt
}
