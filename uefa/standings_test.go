/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uefa

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mikeb26/knockoutdraw/internal"
)

type standingsRow struct {
	pos         string
	club, assoc string
}

func standingsTable(group string, useCaption bool, rows []standingsRow) string {
	var sb strings.Builder
	if useCaption {
		sb.WriteString("<table class=\"standings\"><caption>Group " + group +
			"</caption>\n")
	} else {
		sb.WriteString("<table class=\"standings\" data-group=\"" + group + "\">\n")
	}
	sb.WriteString("<tr><th>#</th><th>Club</th><th>Assoc</th></tr>\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf(
			"<tr><td class=\"pos\">%v</td><td class=\"club\">%v</td><td class=\"assoc\">%v</td></tr>\n",
			r.pos, r.club, r.assoc))
	}
	sb.WriteString("</table>\n")
	return sb.String()
}

// groups A-D on one page, E-H on the other, taken from the 2021 season
func standingsPages() map[string]string {
	s, err := LoadSeason("2021")
	if err != nil {
		panic(err)
	}
	pages := map[string]string{
		"/groups-1": "<html><head><meta name=\"draw-date\" content=\"2021-12-13\"></head><body>\n",
		"/groups-2": "<html><body>\n",
	}
	for i := 0; i < len(s.Clubs); i += 2 {
		w, r := s.Clubs[i], s.Clubs[i+1]
		rows := []standingsRow{
			{"1", w.Name, w.Association},
			{"2.", "  " + r.Name + "\n", strings.ToLower(r.Association)},
			{"3", "Third " + w.Group, "XXX"},
			{"4", "Fourth " + w.Group, "YYY"},
		}
		page := "/groups-1"
		if w.Group > "D" {
			page = "/groups-2"
		}
		pages[page] += standingsTable(w.Group, w.Group == "B" || w.Group == "F",
			rows)
	}
	for k := range pages {
		pages[k] += "</body></html>\n"
	}
	return pages
}

func newStandingsServer(t *testing.T, pages map[string]string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter,
		r *http.Request) {

		if got := r.Header.Get("User-Agent"); got != internal.UserAgent {
			t.Errorf("User-Agent = %q; want %q", got, internal.UserAgent)
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchStandings(t *testing.T) {
	srv := newStandingsServer(t, standingsPages())
	client := NewClientWithHTTP(srv.Client())

	// listed in reverse to show output order does not depend on url order
	got, err := client.FetchStandings(context.Background(), "2021",
		srv.URL+"/groups-2", srv.URL+"/groups-1")
	if err != nil {
		t.Fatalf("FetchStandings returned error: %v", err)
	}

	want, err := LoadSeason("2021")
	if err != nil {
		t.Fatalf("LoadSeason returned error: %v", err)
	}
	if diff := cmp.Diff(want.Clubs, got.Clubs); diff != "" {
		t.Errorf("Clubs mismatch (-want +got):\n%s", diff)
	}
	if !got.DrawDate.Equal(want.DrawDate) {
		t.Errorf("DrawDate = %v; want %v", got.DrawDate, want.DrawDate)
	}
}

func TestFetchStandingsErrors(t *testing.T) {
	pages := standingsPages()
	pages["/empty"] = "<html><body><p>maintenance</p></body></html>"
	pages["/nogroup"] = "<html><body><table class=\"standings\"><tr><td class=\"pos\">1</td></tr></table></body></html>"
	pages["/badpos"] = standingsTable("A", false,
		[]standingsRow{{"first", "Club", "ENG"}})
	srv := newStandingsServer(t, pages)
	client := NewClientWithHTTP(srv.Client())

	cases := []struct {
		name string
		urls []string
	}{
		{"no urls", nil},
		{"missing page", []string{srv.URL + "/groups-1", srv.URL + "/missing"}},
		{"no tables", []string{srv.URL + "/empty"}},
		{"no group", []string{srv.URL + "/nogroup"}},
		{"bad position", []string{srv.URL + "/badpos"}},
		{"duplicate groups", []string{srv.URL + "/groups-1", srv.URL + "/groups-1"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := client.FetchStandings(context.Background(), "x", c.urls...)
			if err == nil {
				t.Errorf("FetchStandings succeeded")
			}
		})
	}
}

func TestTableGroup(t *testing.T) {
	page, err := parseStandingsPage(strings.NewReader(
		standingsTable("c", true, []standingsRow{{"1", "Ajax", "NED"}}) +
			standingsTable(" h ", false, []standingsRow{{"2", "Chelsea", "ENG"}})))
	if err != nil {
		t.Fatalf("parseStandingsPage returned error: %v", err)
	}
	want := []Club{
		{Name: "Ajax", Group: "C", Finish: 1, Association: "NED"},
		{Name: "Chelsea", Group: "H", Finish: 2, Association: "ENG"},
	}
	if diff := cmp.Diff(want, page.clubs); diff != "" {
		t.Errorf("clubs mismatch (-want +got):\n%s", diff)
	}
	if !page.drawDate.IsZero() {
		t.Errorf("drawDate = %v; want zero", page.drawDate)
	}
}

func TestFetchClubs(t *testing.T) {
	srv := newStandingsServer(t, standingsPages())
	client := NewClientWithHTTP(srv.Client())

	clubs, err := client.FetchClubs(context.Background(), srv.URL+"/groups-2")
	if err != nil {
		t.Fatalf("FetchClubs returned error: %v", err)
	}
	if len(clubs) != 8 {
		t.Fatalf("got %d clubs; want 8", len(clubs))
	}
	for _, c := range clubs {
		if c.Group < "E" {
			t.Errorf("%v from group %v listed on the E-H page", c.Name, c.Group)
		}
	}

	if _, err := client.FetchClubs(context.Background(),
		srv.URL+"/missing"); err == nil {
		t.Errorf("FetchClubs succeeded on a missing page")
	}
}
