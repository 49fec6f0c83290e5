/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package draw

import (
	"errors"
	"fmt"
)

var ErrIneligible = errors.New("no eligible partners")

// Reason identifies which eligibility constraint emptied the partner set.
type Reason int

const (
	RoleExhausted Reason = iota + 1
	AssociationExhausted
	GroupExhausted
)

func (r Reason) String() string {
	switch r {
	case RoleExhausted:
		return "role-exhausted"
	case AssociationExhausted:
		return "association-exhausted"
	case GroupExhausted:
		return "group-exhausted"
	default:
		return "?"
	}
}

// IneligibleError reports an anchor with no legal partner left in the pool.
// It is terminal for the draw attempt that produced it.
type IneligibleError struct {
	Anchor Entrant
	Reason Reason
}

func (e *IneligibleError) Error() string {
	var why string
	switch e.Reason {
	case RoleExhausted:
		why = fmt.Sprintf("no %v entrants remain", e.Anchor.Role.Opposite())
	case AssociationExhausted:
		why = fmt.Sprintf("all remaining %v entrants are from %v",
			e.Anchor.Role.Opposite(), e.Anchor.Association)
	case GroupExhausted:
		why = fmt.Sprintf("all remaining eligible entrants are in group %v",
			e.Anchor.Group)
	default:
		why = "unknown constraint"
	}

	return fmt.Sprintf("%v for %v: %v", ErrIneligible, e.Anchor.Name, why)
}

func (e *IneligibleError) Is(target error) bool {
	return target == ErrIneligible
}

// EligiblePartners returns the entrants in pool that anchor may legally be
// paired against, in pool order. The opposite role is filtered first, then
// association, then group; the first filter to leave nothing determines the
// Reason of the returned error.
func EligiblePartners(anchor Entrant, pool *Pool) ([]Entrant, error) {
	opposite := pool.ByRole(anchor.Role.Opposite())
	if len(opposite) == 0 {
		return nil, &IneligibleError{Anchor: anchor, Reason: RoleExhausted}
	}

	var byAssoc []Entrant
	for _, e := range opposite {
		if e.Association != anchor.Association {
			byAssoc = append(byAssoc, e)
		}
	}
	if len(byAssoc) == 0 {
		return nil, &IneligibleError{Anchor: anchor, Reason: AssociationExhausted}
	}

	var byGroup []Entrant
	for _, e := range byAssoc {
		if e.Group != anchor.Group {
			byGroup = append(byGroup, e)
		}
	}
	if len(byGroup) == 0 {
		return nil, &IneligibleError{Anchor: anchor, Reason: GroupExhausted}
	}

	return byGroup, nil
}
