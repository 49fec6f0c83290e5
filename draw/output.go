/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package draw

import (
	"fmt"
	"sort"
	"strings"
)

// BuildDrawOutput formats a completed draw as an aligned table ordered by
// match number. Runners-up are listed first since they host the first leg.
func BuildDrawOutput(res *Result) string {
	list := append([]Pairing(nil), res.Pairings...)
	sort.Slice(list, func(i, j int) bool {
		return list[i].MatchNumber < list[j].MatchNumber
	})

	type row struct{ match, home, away string }
	var rows []row
	for _, p := range list {
		rows = append(rows, row{
			match: fmt.Sprintf("%d.", p.MatchNumber),
			home: fmt.Sprintf("%s(%s %s)", p.RunnerUp.Name, p.RunnerUp.Group,
				p.RunnerUp.Association),
			away: fmt.Sprintf("%s(%s %s)", p.Winner.Name, p.Winner.Group,
				p.Winner.Association),
		})
	}

	maxM, maxH, maxA := len("Match"), len("Runner-up"), len("Winner")
	for _, r := range rows {
		if l := len(r.match); l > maxM {
			maxM = l
		}
		if l := len(r.home); l > maxH {
			maxH = l
		}
		if l := len(r.away); l > maxA {
			maxA = l
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Draw (%v policy):\n\n", res.Policy))
	sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxM, "Match", maxH,
		"Runner-up", maxA, "Winner"))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxM, r.match, maxH,
			r.home, maxA, r.away))
	}

	return sb.String()
}

// BuildStatsOutput formats sampling results, one row per policy.
func BuildStatsOutput(all []*Stats) string {
	type row struct{ policy, attempts, failures, rate, reasons string }
	var rows []row
	for _, s := range all {
		var reasons []string
		for _, r := range []Reason{RoleExhausted, AssociationExhausted,
			GroupExhausted} {
			if n := s.ByReason[r]; n > 0 {
				reasons = append(reasons, fmt.Sprintf("%v:%d", r, n))
			}
		}
		rows = append(rows, row{
			policy:   s.Policy,
			attempts: fmt.Sprintf("%d", s.Attempts),
			failures: fmt.Sprintf("%d", s.Failures),
			rate:     fmt.Sprintf("%.3f", s.FailureRate()),
			reasons:  strings.Join(reasons, " "),
		})
	}

	maxP, maxA, maxF, maxR := len("Policy"), len("Attempts"), len("Failed"),
		len("Rate")
	for _, r := range rows {
		if l := len(r.policy); l > maxP {
			maxP = l
		}
		if l := len(r.attempts); l > maxA {
			maxA = l
		}
		if l := len(r.failures); l > maxF {
			maxF = l
		}
		if l := len(r.rate); l > maxR {
			maxR = l
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-*s  %*s  %*s  %*s  %s\n", maxP, "Policy",
		maxA, "Attempts", maxF, "Failed", maxR, "Rate", "Dead ends"))
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-*s  %*s  %*s  %*s  %s\n", maxP, r.policy,
			maxA, r.attempts, maxF, r.failures, maxR, r.rate, r.reasons))
	}

	return sb.String()
}

// BuildEligibleOutput lists the legal opponents of anchor.
func BuildEligibleOutput(anchor Entrant, partners []Entrant) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v (%v, group %v, %v) may be drawn against:\n",
		anchor.Name, anchor.Role, anchor.Group, anchor.Association))
	for _, p := range partners {
		sb.WriteString(fmt.Sprintf("  - %v (group %v, %v)\n", p.Name, p.Group,
			p.Association))
	}

	return sb.String()
}
