/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package draw

import (
	"math/rand"
)

const endgameSize = 4

// endgameApplies reports whether the last four entrants could strand the
// final pairing under a naive pick, i.e. they do not span four distinct
// groups and four distinct associations.
func endgameApplies(pool *Pool) bool {
	if pool.Len() != endgameSize {
		return false
	}
	return pool.GroupCount() < endgameSize ||
		pool.AssociationCount() < endgameSize
}

// resolveEndgame picks the anchor of the given role among the last four
// entrants. Entrants that share their group or association with exactly one
// other remaining entrant go first, and among those the ones with the fewest
// eligible partners. With two anchors facing two partners, an anchor left
// with a single partner belongs to every legal completion, so taking it first
// finds the completion whenever one exists. A pool whose two completions are
// both blocked fails in the eligibility filter.
func resolveEndgame(pool *Pool, role Role, rng *rand.Rand) (Entrant, error) {
	candidates := pool.ByRole(role)
	if len(candidates) == 0 {
		return Entrant{}, roleExhausted(pool, role)
	}

	groups := pool.GroupTally()
	assocs := pool.AssociationTally()
	var pinched []Entrant
	for _, e := range candidates {
		if groups[e.Group] == 2 || assocs[e.Association] == 2 {
			pinched = append(pinched, e)
		}
	}
	if len(pinched) > 0 {
		candidates = pinched
	}

	return pickOne(fewestPartners(candidates, pool), rng), nil
}

// fewestPartners keeps the candidates with the smallest eligible set. A
// candidate with none counts as zero and is kept, so the attempt fails on it
// in the eligibility filter.
func fewestPartners(candidates []Entrant, pool *Pool) []Entrant {
	counts := make([]int, len(candidates))
	least := -1
	for i, e := range candidates {
		partners, err := EligiblePartners(e, pool)
		if err == nil {
			counts[i] = len(partners)
		}
		if least < 0 || counts[i] < least {
			least = counts[i]
		}
	}

	var out []Entrant
	for i, e := range candidates {
		if counts[i] == least {
			out = append(out, e)
		}
	}
	return out
}
