/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package draw

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidEntrant = errors.New("invalid entrant")

// Pool is the working set of entrants not yet paired in a single draw
// attempt. It preserves dataset order and is keyed by EntrantID, so entrant
// names need not be unique.
type Pool struct {
	entrants []Entrant
	slots    map[EntrantID]int
}

// NewPool validates the dataset and builds a fresh pool from it. The
// caller's slice is copied; removing entrants from the pool never mutates it.
func NewPool(entrants []Entrant) (*Pool, error) {
	p := &Pool{
		entrants: make([]Entrant, 0, len(entrants)),
		slots:    make(map[EntrantID]int, len(entrants)),
	}
	for _, e := range entrants {
		if err := validateEntrant(e); err != nil {
			return nil, err
		}
		if _, dup := p.slots[e.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %v (%v)", ErrInvalidEntrant,
				e.ID, e.Name)
		}
		p.slots[e.ID] = len(p.entrants)
		p.entrants = append(p.entrants, e)
	}

	return p, nil
}

func validateEntrant(e Entrant) error {
	if !e.Role.valid() {
		return fmt.Errorf("%w: %v has unknown role %d", ErrInvalidEntrant,
			e.Name, int(e.Role))
	}
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: id %v has no name", ErrInvalidEntrant, e.ID)
	}
	if strings.TrimSpace(e.Group) == "" {
		return fmt.Errorf("%w: %v has no group", ErrInvalidEntrant, e.Name)
	}
	if strings.TrimSpace(e.Association) == "" {
		return fmt.Errorf("%w: %v has no association", ErrInvalidEntrant, e.Name)
	}

	return nil
}

func (p *Pool) Len() int { return len(p.entrants) }

// Entrants returns a copy of the remaining entrants in dataset order.
func (p *Pool) Entrants() []Entrant {
	return append([]Entrant(nil), p.entrants...)
}

func (p *Pool) Get(id EntrantID) (Entrant, bool) {
	i, ok := p.slots[id]
	if !ok {
		return Entrant{}, false
	}
	return p.entrants[i], true
}

func (p *Pool) Contains(id EntrantID) bool {
	_, ok := p.slots[id]
	return ok
}

// ByRole returns the remaining entrants of the given role in dataset order.
func (p *Pool) ByRole(role Role) []Entrant {
	var out []Entrant
	for _, e := range p.entrants {
		if e.Role == role {
			out = append(out, e)
		}
	}
	return out
}

// Remove drops an entrant from the pool. Removal keeps the relative order of
// the remaining entrants.
func (p *Pool) Remove(id EntrantID) error {
	i, ok := p.slots[id]
	if !ok {
		return fmt.Errorf("entrant %v is not in the pool", id)
	}
	delete(p.slots, id)
	p.entrants = append(p.entrants[:i], p.entrants[i+1:]...)
	for j := i; j < len(p.entrants); j++ {
		p.slots[p.entrants[j].ID] = j
	}

	return nil
}

// Clone returns an independent copy of the pool.
func (p *Pool) Clone() *Pool {
	c := &Pool{
		entrants: p.Entrants(),
		slots:    make(map[EntrantID]int, len(p.slots)),
	}
	for id, i := range p.slots {
		c.slots[id] = i
	}
	return c
}

// GroupTally counts remaining entrants per group.
func (p *Pool) GroupTally() map[string]int {
	tally := make(map[string]int)
	for _, e := range p.entrants {
		tally[e.Group]++
	}
	return tally
}

// AssociationTally counts remaining entrants per association.
func (p *Pool) AssociationTally() map[string]int {
	tally := make(map[string]int)
	for _, e := range p.entrants {
		tally[e.Association]++
	}
	return tally
}

func (p *Pool) GroupCount() int { return len(p.GroupTally()) }

func (p *Pool) AssociationCount() int { return len(p.AssociationTally()) }

// PriorityAssociations returns the associations that still hold both an
// unpaired winner and an unpaired runner-up.
func (p *Pool) PriorityAssociations() map[string]bool {
	roles := make(map[string][2]bool)
	for _, e := range p.entrants {
		seen := roles[e.Association]
		if e.Role == Winner {
			seen[0] = true
		} else {
			seen[1] = true
		}
		roles[e.Association] = seen
	}

	priority := make(map[string]bool)
	for assoc, seen := range roles {
		if seen[0] && seen[1] {
			priority[assoc] = true
		}
	}
	return priority
}
