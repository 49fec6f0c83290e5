/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package draw

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// State is the view of an in-progress attempt handed to a Policy. It is
// rebuilt from the pool before every pick, so derived values such as the
// priority associations always reflect the committed pairings so far.
type State struct {
	Pool *Pool
	// MatchNumber is the number the next committed pairing will receive.
	MatchNumber int
	// Priority holds associations with both a winner and a runner-up left.
	Priority map[string]bool
}

func newState(pool *Pool, matchNum int) *State {
	return &State{
		Pool:        pool,
		MatchNumber: matchNum,
		Priority:    pool.PriorityAssociations(),
	}
}

// Policy decides which entrant anchors the next pairing. The anchor's
// partner is then drawn from its eligible set by the orchestrator.
type Policy interface {
	Name() string
	// AnchorRole is the role anchors are drawn from for a match number. The
	// endgame resolver uses it when it takes over the pick.
	AnchorRole(matchNum int) Role
	NextAnchor(st *State, rng *rand.Rand) (Entrant, error)
}

// Reorderer is implemented by policies that renumber a completed draw.
type Reorderer interface {
	Reorder(pairings []Pairing, rng *rand.Rand)
}

// Uniform anchors on a uniformly random runner-up.
type Uniform struct{}

func (Uniform) Name() string { return "uniform" }

func (Uniform) AnchorRole(int) Role { return RunnerUp }

func (Uniform) NextAnchor(st *State, rng *rand.Rand) (Entrant, error) {
	return pickRole(st.Pool, RunnerUp, rng)
}

// AssociationPriority anchors on runners-up whose association still has an
// unpaired winner, falling back to Uniform once none remain.
type AssociationPriority struct{}

func (AssociationPriority) Name() string { return "association" }

func (AssociationPriority) AnchorRole(int) Role { return RunnerUp }

func (AssociationPriority) NextAnchor(st *State, rng *rand.Rand) (Entrant,
	error) {

	return pickPriority(st, RunnerUp, rng)
}

// AlternatingPriority anchors on a runner-up for odd match numbers and on a
// winner for even ones, preferring priority associations within the role.
type AlternatingPriority struct{}

func (AlternatingPriority) Name() string { return "alternating" }

func (AlternatingPriority) AnchorRole(matchNum int) Role {
	if matchNum%2 == 1 {
		return RunnerUp
	}
	return Winner
}

func (a AlternatingPriority) NextAnchor(st *State, rng *rand.Rand) (Entrant,
	error) {

	return pickPriority(st, a.AnchorRole(st.MatchNumber), rng)
}

// DegreeOrdered anchors on the most constrained runners-up first. Before each
// pick it builds a degree table over the whole pool: a runner-up's degree is
// the number of winners it may still meet, and winners, which never anchor,
// enter the table at zero. The anchor is drawn from the runners-up holding
// the second-smallest distinct degree in the table, which is the tightest
// runner-up degree. Completed draws have their match numbers shuffled.
type DegreeOrdered struct{}

func (DegreeOrdered) Name() string { return "degree" }

func (DegreeOrdered) AnchorRole(int) Role { return RunnerUp }

func (DegreeOrdered) NextAnchor(st *State, rng *rand.Rand) (Entrant, error) {
	runners := st.Pool.ByRole(RunnerUp)
	if len(runners) == 0 {
		return Entrant{}, roleExhausted(st.Pool, RunnerUp)
	}

	degrees, err := runnerDegrees(st.Pool)
	if err != nil {
		return Entrant{}, err
	}

	present := make(map[int]bool)
	for _, e := range st.Pool.entrants {
		present[degrees[e.ID]] = true
	}
	var values []int
	for d := range present {
		values = append(values, d)
	}
	sort.Ints(values)
	target := values[0]
	if len(values) > 1 {
		target = values[1]
	}

	var candidates []Entrant
	for _, r := range runners {
		if degrees[r.ID] == target {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		// only reachable with no winners left, which runnerDegrees rejects
		panic("BUG: invariant: degree target must match a runner-up")
	}

	return pickOne(candidates, rng), nil
}

func (DegreeOrdered) Reorder(pairings []Pairing, rng *rand.Rand) {
	rng.Shuffle(len(pairings), func(i, j int) {
		pairings[i], pairings[j] = pairings[j], pairings[i]
	})
	for i := range pairings {
		pairings[i].MatchNumber = i + 1
	}
}

// runnerDegrees maps every pool entrant to its degree. A runner-up with no
// eligible winner is a certain dead end and its IneligibleError is returned.
func runnerDegrees(pool *Pool) (map[EntrantID]int, error) {
	degrees := make(map[EntrantID]int, pool.Len())
	for _, e := range pool.entrants {
		if e.Role != RunnerUp {
			degrees[e.ID] = 0
			continue
		}
		partners, err := EligiblePartners(e, pool)
		if err != nil {
			return nil, err
		}
		degrees[e.ID] = len(partners)
	}
	return degrees, nil
}

func pickPriority(st *State, role Role, rng *rand.Rand) (Entrant, error) {
	members := st.Pool.ByRole(role)
	if len(members) == 0 {
		return Entrant{}, roleExhausted(st.Pool, role)
	}

	var priority []Entrant
	for _, e := range members {
		if st.Priority[e.Association] {
			priority = append(priority, e)
		}
	}
	if len(priority) > 0 {
		return pickOne(priority, rng), nil
	}

	return pickOne(members, rng), nil
}

func pickRole(pool *Pool, role Role, rng *rand.Rand) (Entrant, error) {
	members := pool.ByRole(role)
	if len(members) == 0 {
		return Entrant{}, roleExhausted(pool, role)
	}
	return pickOne(members, rng), nil
}

func pickOne(from []Entrant, rng *rand.Rand) Entrant {
	return from[rng.Intn(len(from))]
}

// roleExhausted reports the first stranded entrant when no anchor of role is
// left but entrants of the opposite role still are.
func roleExhausted(pool *Pool, role Role) error {
	stranded := pool.ByRole(role.Opposite())
	if len(stranded) == 0 {
		panic("BUG: invariant: pool must be non-empty while drawing")
	}
	return &IneligibleError{Anchor: stranded[0], Reason: RoleExhausted}
}

var policies = []Policy{
	Uniform{},
	AssociationPriority{},
	AlternatingPriority{},
	DegreeOrdered{},
}

// Policies returns every selection policy in escalating order.
func Policies() []Policy {
	return append([]Policy(nil), policies...)
}

func PolicyByName(name string) (Policy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, p := range policies {
		if p.Name() == n {
			return p, nil
		}
	}

	var names []string
	for _, p := range policies {
		names = append(names, p.Name())
	}
	return nil, fmt.Errorf("unknown policy %q; choose one of %v", name,
		strings.Join(names, ", "))
}
