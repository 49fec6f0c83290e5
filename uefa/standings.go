/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package uefa

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mikeb26/knockoutdraw/internal"
	"golang.org/x/sync/errgroup"
)

const maxParallelFetches = 4

// FetchStandings scrapes group standings from each url and builds a season
// from the clubs finishing first and second in every group. Pages are
// fetched concurrently; clubs are returned ordered by group, winner first.
func (client *Client) FetchStandings(ctx context.Context, name string,
	urls ...string) (*Season, error) {

	if len(urls) == 0 {
		return nil, fmt.Errorf("no standings urls configured")
	}

	pages := make([]*standingsPage, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, url := range urls {
		g.Go(func() error {
			page, err := client.fetchStandingsPage(gctx, url)
			if err != nil {
				return err
			}
			pages[i] = page
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	season := &Season{
		Name:        name,
		Competition: "UEFA Champions League",
		Round:       "Round of 16",
	}
	seen := make(map[string]string)
	for i, page := range pages {
		for _, c := range page.clubs {
			key := fmt.Sprintf("%v/%d", c.Group, c.Finish)
			if prev, ok := seen[key]; ok {
				return nil, fmt.Errorf("group %v position %d listed twice (%v and %v)",
					c.Group, c.Finish, prev, c.Name)
			}
			seen[key] = c.Name
			season.Clubs = append(season.Clubs, c)
		}
		if season.DrawDate.IsZero() {
			season.DrawDate = page.drawDate
		} else if !page.drawDate.IsZero() && !page.drawDate.Equal(season.DrawDate) {
			log.Printf("uefa.standings: warning %v lists draw date %v; keeping %v",
				urls[i], page.drawDate.Format("2006-01-02"),
				season.DrawDate.Format("2006-01-02"))
		}
	}
	sort.SliceStable(season.Clubs, func(i, j int) bool {
		if season.Clubs[i].Group != season.Clubs[j].Group {
			return season.Clubs[i].Group < season.Clubs[j].Group
		}
		return season.Clubs[i].Finish < season.Clubs[j].Finish
	})

	if err := season.Validate(); err != nil {
		return nil, err
	}

	return season, nil
}

// FetchClubs returns the group winners and runners-up listed on a single
// standings page.
func (client *Client) FetchClubs(ctx context.Context, url string) ([]Club,
	error) {

	page, err := client.fetchStandingsPage(ctx, url)
	if err != nil {
		return nil, err
	}
	return page.clubs, nil
}

type standingsPage struct {
	clubs    []Club
	drawDate time.Time
}

func (client *Client) fetchStandingsPage(ctx context.Context,
	url string) (*standingsPage, error) {

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch standings (new): %w", err)
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch standings (do): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d fetching %s", resp.StatusCode, url)
	}

	page, err := parseStandingsPage(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", url, err)
	}
	return page, nil
}

// parseStandingsPage reads every table.standings on the page. A table names
// its group through a data-group attribute or a "Group X" caption; each row
// carries td.pos, td.club and td.assoc cells. An optional
// <meta name="draw-date"> supplies the draw date.
func parseStandingsPage(body io.Reader) (*standingsPage, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	page := &standingsPage{}
	if content, ok := doc.Find(`meta[name="draw-date"]`).Attr("content"); ok {
		page.drawDate, err = internal.ParseDateOrZero(content)
		if err != nil {
			log.Printf("uefa.standings: warning unable to parse draw date %v: %v",
				content, err)
		}
	}

	tables := doc.Find("table.standings")
	if tables.Length() == 0 {
		return nil, fmt.Errorf("no standings tables found")
	}

	var parseErr error
	tables.EachWithBreak(func(i int, table *goquery.Selection) bool {
		group := tableGroup(table)
		if group == "" {
			parseErr = fmt.Errorf("standings table %d names no group", i+1)
			return false
		}
		table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			posText := strings.TrimSpace(row.Find("td.pos").Text())
			if posText == "" {
				return true // header row
			}
			pos, err := strconv.Atoi(strings.TrimSuffix(posText, "."))
			if err != nil {
				parseErr = fmt.Errorf("group %v: bad position %q", group, posText)
				return false
			}
			if pos != 1 && pos != 2 {
				return true
			}
			page.clubs = append(page.clubs, Club{
				Name:        internal.NormalizeName(row.Find("td.club").Text()),
				Group:       group,
				Finish:      pos,
				Association: internal.NormalizeCode(row.Find("td.assoc").Text()),
			})
			return true
		})
		return parseErr == nil
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return page, nil
}

func tableGroup(table *goquery.Selection) string {
	if g, ok := table.Attr("data-group"); ok && strings.TrimSpace(g) != "" {
		return internal.NormalizeCode(g)
	}
	caption := internal.NormalizeName(table.Find("caption").First().Text())
	if len(caption) > len("group ") &&
		strings.EqualFold(caption[:len("group ")], "group ") {
		return internal.NormalizeCode(caption[len("group "):])
	}
	return ""
}
