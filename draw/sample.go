/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package draw

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

type SampleOptions struct {
	Attempts int
	// Seed of the first attempt; attempt i uses Seed+i.
	Seed int64
	// Workers bounds the attempts run concurrently; <= 0 means GOMAXPROCS.
	Workers int
}

// Stats summarizes repeated independent draw attempts.
type Stats struct {
	Policy   string
	Attempts int
	Failures int
	ByReason map[Reason]int
	// FailedAfter counts failed attempts by the number of matches committed
	// before the dead end.
	FailedAfter map[int]int
}

func (s *Stats) FailureRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Attempts)
}

// Sample estimates how often policy reaches a dead end on entrants by running
// independent attempts, each with its own pool and random source. The result
// depends only on the options, not on how the attempts were scheduled.
func Sample(ctx context.Context, entrants []Entrant, policy Policy,
	opts SampleOptions) (*Stats, error) {

	if policy == nil {
		return nil, fmt.Errorf("draw: no policy")
	}
	if opts.Attempts <= 0 {
		return nil, fmt.Errorf("draw: attempts must be positive, got %d",
			opts.Attempts)
	}
	// surface dataset problems once instead of per attempt
	if _, err := NewPool(entrants); err != nil {
		return nil, err
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	stats := &Stats{
		Policy:      policy.Name(),
		Attempts:    opts.Attempts,
		ByReason:    make(map[Reason]int),
		FailedAfter: make(map[int]int),
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < opts.Attempts; i++ {
		seed := opts.Seed + int64(i)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, err := Run(entrants, policy, NewRand(seed))
			if err == nil {
				return nil
			}
			var ae *AttemptError
			if !errors.As(err, &ae) {
				return fmt.Errorf("attempt with seed %v: %w", seed, err)
			}

			mu.Lock()
			stats.Failures++
			stats.ByReason[ae.Reason()]++
			stats.FailedAfter[ae.Committed]++
			mu.Unlock()

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return stats, nil
}
