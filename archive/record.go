/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package archive

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikeb26/knockoutdraw/draw"
)

// Record is one archived draw attempt, successful or not. Seed together with
// Season and Policy reproduces the attempt.
type Record struct {
	ID        uuid.UUID      `json:"id"`
	Season    string         `json:"season"`
	Policy    string         `json:"policy"`
	Seed      int64          `json:"seed"`
	CreatedAt time.Time      `json:"createdAt"`
	Pairings  []draw.Pairing `json:"pairings,omitempty"`
	Failure   *Failure       `json:"failure,omitempty"`
}

// Failure describes the dead end that ended an unsuccessful attempt.
type Failure struct {
	Reason    string `json:"reason"`
	Anchor    string `json:"anchor"`
	Committed int    `json:"committed"`
	Message   string `json:"message"`
}

// NewRecord captures the outcome of draw.Run. Errors other than a failed
// attempt are not archivable and are returned as is.
func NewRecord(season string, policy string, seed int64, res *draw.Result,
	runErr error) (*Record, error) {

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("archive: unable to generate record id: %w", err)
	}
	rec := &Record{
		ID:        id,
		Season:    season,
		Policy:    policy,
		Seed:      seed,
		CreatedAt: time.Now().UTC(),
	}

	if runErr != nil {
		var ae *draw.AttemptError
		if !errors.As(runErr, &ae) {
			return nil, runErr
		}
		rec.Failure = &Failure{
			Reason:    ae.Reason().String(),
			Committed: ae.Committed,
			Message:   ae.Error(),
		}
		var ie *draw.IneligibleError
		if errors.As(runErr, &ie) {
			rec.Failure.Anchor = ie.Anchor.Name
		}
		return rec, nil
	}
	if res == nil {
		return nil, fmt.Errorf("archive: no draw result to record")
	}
	rec.Pairings = append([]draw.Pairing(nil), res.Pairings...)

	return rec, nil
}

func (r *Record) Succeeded() bool {
	return r.Failure == nil
}

// Result returns the archived draw, or nil for a failed attempt.
func (r *Record) Result() *draw.Result {
	if !r.Succeeded() {
		return nil
	}
	return &draw.Result{
		Policy:   r.Policy,
		Pairings: append([]draw.Pairing(nil), r.Pairings...),
	}
}

// Summary is a one line description used in history listings.
func (r *Record) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v  %v  season:%v policy:%v seed:%v  ",
		r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Season, r.Policy,
		r.Seed))
	if r.Succeeded() {
		sb.WriteString(fmt.Sprintf("ok (%d matches)", len(r.Pairings)))
	} else {
		sb.WriteString(fmt.Sprintf("failed: %v at %v after %d matches",
			r.Failure.Reason, r.Failure.Anchor, r.Failure.Committed))
	}
	return sb.String()
}
