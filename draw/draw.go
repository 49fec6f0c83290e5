/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package draw

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Result is a completed draw.
type Result struct {
	Policy   string
	Pairings []Pairing
}

// AttemptError reports a draw attempt that reached a dead end. Err is the
// IneligibleError raised by the eligibility filter, unchanged.
type AttemptError struct {
	Policy    string
	Committed int
	Err       error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("%v draw failed after %d matches drawn: %v", e.Policy,
		e.Committed, e.Err)
}

func (e *AttemptError) Unwrap() error { return e.Err }

// Reason returns the constraint that ended the attempt.
func (e *AttemptError) Reason() Reason {
	var ie *IneligibleError
	if errors.As(e.Err, &ie) {
		return ie.Reason
	}
	return 0
}

// NewRand returns a deterministic random source for seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Run performs one draw attempt over a fresh pool built from entrants. A
// nil rng is replaced with a time seeded source. A dead end ends the attempt
// with an *AttemptError; Run never backtracks, so retrying means calling Run
// again. Every policy draws until the pool is empty, so a dataset with more
// entrants of one role than the other fails with RoleExhausted.
func Run(entrants []Entrant, policy Policy, rng *rand.Rand) (*Result, error) {
	if policy == nil {
		return nil, fmt.Errorf("draw: no policy")
	}
	if rng == nil {
		rng = NewRand(time.Now().UnixNano())
	}
	pool, err := NewPool(entrants)
	if err != nil {
		return nil, err
	}

	pairings := make([]Pairing, 0, pool.Len()/2)
	for matchNum := 1; pool.Len() > 0; matchNum++ {
		var (
			anchor Entrant
			err    error
		)
		if endgameApplies(pool) {
			anchor, err = resolveEndgame(pool, policy.AnchorRole(matchNum), rng)
		} else {
			anchor, err = policy.NextAnchor(newState(pool, matchNum), rng)
		}
		if err != nil {
			return nil, &AttemptError{Policy: policy.Name(),
				Committed: len(pairings), Err: err}
		}

		partners, err := EligiblePartners(anchor, pool)
		if err != nil {
			return nil, &AttemptError{Policy: policy.Name(),
				Committed: len(pairings), Err: err}
		}
		partner := pickOne(partners, rng)

		if err := pool.Remove(anchor.ID); err != nil {
			panic(fmt.Sprintf("BUG: invariant: anchor must be pooled: %v", err))
		}
		if err := pool.Remove(partner.ID); err != nil {
			panic(fmt.Sprintf("BUG: invariant: partner must be pooled: %v", err))
		}
		pairings = append(pairings, newPairing(matchNum, anchor, partner))
	}

	if r, ok := policy.(Reorderer); ok {
		r.Reorder(pairings, rng)
	}

	return &Result{Policy: policy.Name(), Pairings: pairings}, nil
}

// Validate checks a completed draw against the dataset it was drawn from:
// every entrant paired exactly once, roles respected, no shared group or
// association, and match numbers forming 1..N/2.
func Validate(entrants []Entrant, pairings []Pairing) error {
	want := make(map[EntrantID]bool, len(entrants))
	for _, e := range entrants {
		want[e.ID] = true
	}
	if len(entrants) != 2*len(pairings) {
		return fmt.Errorf("%d pairings cannot cover %d entrants", len(pairings),
			len(entrants))
	}

	seen := make(map[EntrantID]bool, len(entrants))
	numbers := make(map[int]bool, len(pairings))
	for _, p := range pairings {
		if p.Winner.Role != Winner || p.RunnerUp.Role != RunnerUp {
			return fmt.Errorf("match %d: %v vs %v has the wrong roles",
				p.MatchNumber, p.Winner.Name, p.RunnerUp.Name)
		}
		if p.Winner.Group == p.RunnerUp.Group {
			return fmt.Errorf("match %d: %v and %v share group %v",
				p.MatchNumber, p.Winner.Name, p.RunnerUp.Name, p.Winner.Group)
		}
		if p.Winner.Association == p.RunnerUp.Association {
			return fmt.Errorf("match %d: %v and %v share association %v",
				p.MatchNumber, p.Winner.Name, p.RunnerUp.Name,
				p.Winner.Association)
		}
		for _, e := range []Entrant{p.Winner, p.RunnerUp} {
			if !want[e.ID] {
				return fmt.Errorf("match %d: %v is not in the dataset",
					p.MatchNumber, e.Name)
			}
			if seen[e.ID] {
				return fmt.Errorf("match %d: %v is drawn twice", p.MatchNumber,
					e.Name)
			}
			seen[e.ID] = true
		}
		if p.MatchNumber < 1 || p.MatchNumber > len(pairings) ||
			numbers[p.MatchNumber] {
			return fmt.Errorf("match number %d is out of sequence",
				p.MatchNumber)
		}
		numbers[p.MatchNumber] = true
	}

	return nil
}
