/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package draw

import (
	"fmt"
	"strings"
)

type Role int

const (
	Winner Role = iota + 1
	RunnerUp
)

func (r Role) String() string {
	switch r {
	case Winner:
		return "winner"
	case RunnerUp:
		return "runner-up"
	default:
		return "?"
	}
}

// Opposite returns the role an entrant of role r must be paired against.
func (r Role) Opposite() Role {
	if r == Winner {
		return RunnerUp
	}
	return Winner
}

func (r Role) valid() bool {
	return r == Winner || r == RunnerUp
}

// ParseRole accepts the group finishing position ("1", "2") as well as the
// role names.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "w", "winner":
		return Winner, nil
	case "2", "r", "runner", "runnerup", "runner-up", "runners-up":
		return RunnerUp, nil
	}

	return 0, fmt.Errorf("unknown role %q", s)
}

type EntrantID int

// Entrant is a participant to be paired. Entrants are immutable once loaded.
type Entrant struct {
	ID          EntrantID `json:"id"`
	Name        string    `json:"name"`
	Group       string    `json:"group"`
	Role        Role      `json:"role"`
	Association string    `json:"association"`
}

func (e Entrant) String() string {
	return fmt.Sprintf("%s(%s %s)", e.Name, e.Group, e.Association)
}

// Pairing is a single committed match between a group winner and a group
// runner-up.
type Pairing struct {
	MatchNumber int     `json:"matchNumber"`
	Winner      Entrant `json:"winner"`
	RunnerUp    Entrant `json:"runnerUp"`
}

func newPairing(matchNum int, a, b Entrant) Pairing {
	if a.Role == Winner {
		return Pairing{MatchNumber: matchNum, Winner: a, RunnerUp: b}
	}
	return Pairing{MatchNumber: matchNum, Winner: b, RunnerUp: a}
}
