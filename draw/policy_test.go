/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package draw

import (
	"testing"
)

func TestEndgameApplies(t *testing.T) {
	diverse := buildEntrants([]clubRow{
		{"Winner A", "A", 1, "ENG"},
		{"Winner B", "B", 1, "ESP"},
		{"Runner C", "C", 2, "GER"},
		{"Runner D", "D", 2, "ITA"},
	})
	cases := []struct {
		name     string
		entrants []Entrant
		want     bool
	}{
		{"shared group", lastFour(), true},
		{"four groups and associations", diverse, false},
		{"more than four left", season2021(), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pool, err := NewPool(c.entrants)
			if err != nil {
				t.Fatalf("NewPool returned error: %v", err)
			}
			if got := endgameApplies(pool); got != c.want {
				t.Errorf("endgameApplies = %v; want %v", got, c.want)
			}
		})
	}
}

func TestResolveEndgamePrefersPinchedEntrant(t *testing.T) {
	entrants := lastFour()
	pool, err := NewPool(entrants)
	if err != nil {
		t.Fatalf("NewPool returned error: %v", err)
	}
	for seed := int64(1); seed <= 20; seed++ {
		got, err := resolveEndgame(pool, RunnerUp, NewRand(seed))
		if err != nil {
			t.Fatalf("resolveEndgame returned error: %v", err)
		}
		if got.Name != "Runner A" {
			t.Fatalf("runner-up anchor = %v; want Runner A", got.Name)
		}
		got, err = resolveEndgame(pool, Winner, NewRand(seed))
		if err != nil {
			t.Fatalf("resolveEndgame returned error: %v", err)
		}
		if got.Name != "Winner A" {
			t.Fatalf("winner anchor = %v; want Winner A", got.Name)
		}
	}
}

func TestResolveEndgamePrefersFewestPartners(t *testing.T) {
	pool, err := NewPool(bothPinched())
	if err != nil {
		t.Fatalf("NewPool returned error: %v", err)
	}
	for seed := int64(1); seed <= 20; seed++ {
		got, err := resolveEndgame(pool, RunnerUp, NewRand(seed))
		if err != nil {
			t.Fatalf("resolveEndgame returned error: %v", err)
		}
		if got.Name != "Runner B" {
			t.Fatalf("runner-up anchor = %v; want Runner B", got.Name)
		}
	}
}

func TestEndgameResolvesOnlyLegalCompletion(t *testing.T) {
	cases := []struct {
		name     string
		entrants []Entrant
		want     map[string]string
	}{
		{
			name:     "one pinched runner-up",
			entrants: lastFour(),
			want:     map[string]string{"Winner B": "Runner A", "Winner A": "Runner C"},
		},
		{
			name:     "both runners-up pinched",
			entrants: bothPinched(),
			want:     map[string]string{"Winner B": "Runner A", "Winner C": "Runner B"},
		},
	}
	for _, c := range cases {
		for _, policy := range Policies() {
			t.Run(c.name+"/"+policy.Name(), func(t *testing.T) {
				for seed := int64(1); seed <= 200; seed++ {
					res, err := Run(c.entrants, policy, NewRand(seed))
					if err != nil {
						t.Fatalf("seed %v: Run returned error: %v", seed, err)
					}
					for _, p := range res.Pairings {
						if c.want[p.Winner.Name] != p.RunnerUp.Name {
							t.Fatalf("seed %v: drew %v v %v", seed, p.Winner.Name,
								p.RunnerUp.Name)
						}
					}
				}
			})
		}
	}
}

func TestAssociationPriorityAnchors(t *testing.T) {
	entrants := season2021()
	pool, err := NewPool(entrants)
	if err != nil {
		t.Fatalf("NewPool returned error: %v", err)
	}
	st := newState(pool, 1)
	for seed := int64(1); seed <= 50; seed++ {
		got, err := AssociationPriority{}.NextAnchor(st, NewRand(seed))
		if err != nil {
			t.Fatalf("NextAnchor returned error: %v", err)
		}
		if got.Role != RunnerUp || !st.Priority[got.Association] {
			t.Fatalf("anchor %v is not a priority runner-up", got)
		}
	}

	// with Juventus gone ITA no longer holds both roles
	if err := pool.Remove(byName(entrants, "Juventus").ID); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	st = newState(pool, 2)
	if st.Priority["ITA"] {
		t.Errorf("ITA still a priority association without a winner")
	}
}

func TestAssociationPriorityFallsBackToUniform(t *testing.T) {
	entrants := buildEntrants([]clubRow{
		{"Winner A", "A", 1, "ENG"},
		{"Winner B", "B", 1, "ESP"},
		{"Winner C", "C", 1, "NED"},
		{"Runner A", "A", 2, "GER"},
		{"Runner B", "B", 2, "ITA"},
		{"Runner C", "C", 2, "POR"},
	})
	pool, err := NewPool(entrants)
	if err != nil {
		t.Fatalf("NewPool returned error: %v", err)
	}
	seen := make(map[string]bool)
	for seed := int64(1); seed <= 100; seed++ {
		got, err := AssociationPriority{}.NextAnchor(newState(pool, 1),
			NewRand(seed))
		if err != nil {
			t.Fatalf("NextAnchor returned error: %v", err)
		}
		if got.Role != RunnerUp {
			t.Fatalf("anchor %v is not a runner-up", got)
		}
		seen[got.Name] = true
	}
	if len(seen) != 3 {
		t.Errorf("fallback anchored on %v; want all three runners-up", seen)
	}
}

func TestAlternatingPriorityRoles(t *testing.T) {
	p := AlternatingPriority{}
	for matchNum, want := range map[int]Role{1: RunnerUp, 2: Winner, 3: RunnerUp,
		8: Winner} {
		if got := p.AnchorRole(matchNum); got != want {
			t.Errorf("AnchorRole(%d) = %v; want %v", matchNum, got, want)
		}
	}

	entrants := season2021()
	pool, err := NewPool(entrants)
	if err != nil {
		t.Fatalf("NewPool returned error: %v", err)
	}
	st := newState(pool, 2)
	for seed := int64(1); seed <= 50; seed++ {
		got, err := p.NextAnchor(st, NewRand(seed))
		if err != nil {
			t.Fatalf("NextAnchor returned error: %v", err)
		}
		if got.Role != Winner || !st.Priority[got.Association] {
			t.Fatalf("even match anchor %v is not a priority winner", got)
		}
	}
}

func TestDegreeOrderedPicksTightestRunnerUp(t *testing.T) {
	entrants := trapped()
	pool, err := NewPool(entrants)
	if err != nil {
		t.Fatalf("NewPool returned error: %v", err)
	}
	for seed := int64(1); seed <= 20; seed++ {
		got, err := DegreeOrdered{}.NextAnchor(newState(pool, 1), NewRand(seed))
		if err != nil {
			t.Fatalf("NextAnchor returned error: %v", err)
		}
		if got.Name != "Runner A" {
			t.Fatalf("anchor = %v; want Runner A", got.Name)
		}
	}

	// after Runner A v Winner D, Runners B and C tie on two options each
	for _, name := range []string{"Runner A", "Winner D"} {
		if err := pool.Remove(byName(entrants, name).ID); err != nil {
			t.Fatalf("Remove returned error: %v", err)
		}
	}
	for seed := int64(1); seed <= 20; seed++ {
		got, err := DegreeOrdered{}.NextAnchor(newState(pool, 2), NewRand(seed))
		if err != nil {
			t.Fatalf("NextAnchor returned error: %v", err)
		}
		if got.Name != "Runner B" && got.Name != "Runner C" {
			t.Fatalf("anchor = %v; want Runner B or Runner C", got.Name)
		}
	}
}

func TestDegreeOrderedStopsAtStrandedRunnerUp(t *testing.T) {
	entrants := trapped()
	pool, err := NewPool(entrants)
	if err != nil {
		t.Fatalf("NewPool returned error: %v", err)
	}
	// Winner D is Runner A's only option; Winner A is left but shares group A
	if err := pool.Remove(byName(entrants, "Winner D").ID); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	_, err = DegreeOrdered{}.NextAnchor(newState(pool, 1), NewRand(1))
	ie, ok := err.(*IneligibleError)
	if !ok {
		t.Fatalf("err = %v; want *IneligibleError", err)
	}
	if ie.Anchor.Name != "Runner A" || ie.Reason != GroupExhausted {
		t.Errorf("got %v for %v; want %v for Runner A", ie.Reason,
			ie.Anchor.Name, GroupExhausted)
	}
}

func TestPolicyByName(t *testing.T) {
	for _, p := range Policies() {
		got, err := PolicyByName(" " + p.Name() + " ")
		if err != nil {
			t.Fatalf("PolicyByName(%v) returned error: %v", p.Name(), err)
		}
		if got.Name() != p.Name() {
			t.Errorf("PolicyByName(%v) = %v", p.Name(), got.Name())
		}
	}
	if _, err := PolicyByName("backtracking"); err == nil {
		t.Errorf("PolicyByName accepted an unknown policy")
	}
}
