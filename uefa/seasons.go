/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uefa

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/mikeb26/knockoutdraw/draw"
	"github.com/mikeb26/knockoutdraw/internal"
)

//go:embed data/*.json
var seasonFS embed.FS

// Club is one group-stage qualifier as listed in a season dataset.
type Club struct {
	Name        string `json:"club"`
	Group       string `json:"group"`
	Finish      int    `json:"finish"`
	Association string `json:"association"`
}

// Season is the set of qualifiers for one knockout draw.
type Season struct {
	Name        string    `json:"season"`
	Competition string    `json:"competition"`
	Round       string    `json:"round"`
	DrawDate    time.Time `json:"drawDate"`
	Clubs       []Club    `json:"clubs"`
}

// Custom unmarshaller for Season to handle flexible date parsing.
func (s *Season) UnmarshalJSON(data []byte) error {
	type Alias Season
	aux := &struct {
		DrawDate string `json:"drawDate"`
		*Alias
	}{
		Alias: (*Alias)(s),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("Season unmarshal: %w", err)
	}
	var err error
	s.DrawDate, err = internal.ParseDateOrZero(aux.DrawDate)
	if err != nil {
		return fmt.Errorf("parsing Season.DrawDate: %w", err)
	}
	return nil
}

func (s Season) MarshalJSON() ([]byte, error) {
	type Alias Season
	aux := struct {
		DrawDate string `json:"drawDate,omitempty"`
		Alias
	}{
		Alias: Alias(s),
	}
	if !s.DrawDate.IsZero() {
		aux.DrawDate = s.DrawDate.Format("2006-01-02")
	}
	return json.Marshal(aux)
}

// Seasons returns the names of the built-in datasets, oldest first.
func Seasons() []string {
	entries, err := seasonFS.ReadDir("data")
	if err != nil {
		panic(fmt.Sprintf("BUG: invariant: embedded seasons unreadable: %v", err))
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// LoadSeason returns a built-in dataset by name, e.g. "2021".
func LoadSeason(name string) (*Season, error) {
	f, err := seasonFS.Open(path.Join("data", strings.TrimSpace(name)+".json"))
	if err != nil {
		return nil, fmt.Errorf("unknown season %q; choose one of %v", name,
			strings.Join(Seasons(), ", "))
	}
	defer f.Close()

	return ParseSeason(f)
}

// LoadSeasonFile reads a dataset in the built-in JSON format from disk.
func LoadSeasonFile(filename string) (*Season, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to open season file: %w", err)
	}
	defer f.Close()

	return ParseSeason(f)
}

// ParseSeason decodes a dataset and checks it can be drawn from.
func ParseSeason(r io.Reader) (*Season, error) {
	var s Season
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("unable to parse season: %w", err)
	}
	for i := range s.Clubs {
		c := &s.Clubs[i]
		c.Name = internal.NormalizeName(c.Name)
		c.Group = internal.NormalizeCode(c.Group)
		c.Association = internal.NormalizeCode(c.Association)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// Validate checks every club has a finish of 1 or 2 and that the resulting
// entrants form a valid pool.
func (s *Season) Validate() error {
	for _, c := range s.Clubs {
		if c.Finish != 1 && c.Finish != 2 {
			return fmt.Errorf("season %v: %v finished %d; only group winners and runners-up qualify",
				s.Name, c.Name, c.Finish)
		}
	}
	if _, err := draw.NewPool(s.Entrants()); err != nil {
		return fmt.Errorf("season %v: %w", s.Name, err)
	}
	return nil
}

// Entrants converts the clubs into draw entrants. IDs are assigned from 1 in
// dataset order, so they are stable for a given dataset.
func (s *Season) Entrants() []draw.Entrant {
	out := make([]draw.Entrant, 0, len(s.Clubs))
	for i, c := range s.Clubs {
		role := draw.Role(0)
		switch c.Finish {
		case 1:
			role = draw.Winner
		case 2:
			role = draw.RunnerUp
		}
		out = append(out, draw.Entrant{
			ID:          draw.EntrantID(i + 1),
			Name:        c.Name,
			Group:       c.Group,
			Role:        role,
			Association: c.Association,
		})
	}
	return out
}

// Lookup finds an entrant by club name, ignoring case and surrounding space.
func (s *Season) Lookup(name string) (draw.Entrant, bool) {
	want := strings.ToLower(internal.NormalizeName(name))
	for _, e := range s.Entrants() {
		if strings.ToLower(e.Name) == want {
			return e, true
		}
	}
	return draw.Entrant{}, false
}

func (s *Season) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%v %v %v", s.Name, s.Competition, s.Round))
	if !s.DrawDate.IsZero() {
		sb.WriteString(fmt.Sprintf(" (drawn %v)", s.DrawDate.Format("2006-01-02")))
	}
	return sb.String()
}
