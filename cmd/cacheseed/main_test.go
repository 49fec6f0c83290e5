/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mikeb26/knockoutdraw/uefa"
)

func TestSeedIsBestEffort(t *testing.T) {
	var mu sync.Mutex
	hits := make(map[string]int)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter,
		r *http.Request) {

		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()
		if r.URL.Path != "/groups" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body><table class="standings" data-group="A">
<tr><td class="pos">1</td><td class="club">Ajax</td><td class="assoc">NED</td></tr>
<tr><td class="pos">2</td><td class="club">Chelsea</td><td class="assoc">ENG</td></tr>
</table></body></html>`)
	}))
	defer srv.Close()

	client := uefa.NewClientWithHTTP(srv.Client())
	urls := []string{srv.URL + "/missing", srv.URL + "/groups"}
	if got := seed(context.Background(), client, urls, 0); got != 1 {
		t.Errorf("seeded %d pages; want 1", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if hits["/missing"] != 1 || hits["/groups"] != 1 {
		t.Errorf("unexpected fetches %v", hits)
	}
}
