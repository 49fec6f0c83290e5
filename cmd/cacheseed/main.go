/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikeb26/knockoutdraw/internal/config"
	"github.com/mikeb26/knockoutdraw/uefa"
)

// this program exists just to seed the http cache with the configured
// standings pages

const fetchDelay = 2 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		log.Fatalf("cacheseed: failed to load config: %v", err)
	}
	if len(cfg.Standings.URLs) == 0 {
		log.Fatalf("cacheseed: no standings urls configured")
	}

	client := uefa.NewClient(ctx, cfg.Standings.CacheBucket)
	seeded := seed(ctx, client, cfg.Standings.URLs, fetchDelay)
	fmt.Printf("seeded %d of %d standings pages\n", seeded,
		len(cfg.Standings.URLs))
}

// seed fetches each url in turn and returns how many were fetched.
func seed(ctx context.Context, client *uefa.Client, urls []string,
	delay time.Duration) int {

	seeded := 0
	for i, url := range urls {
		if i > 0 {
			time.Sleep(delay) // avoid pegging the standings host
		}
		clubs, err := client.FetchClubs(ctx, url)
		if err != nil {
			// best effort
			log.Printf("cacheseed: failed to seed %v: %v", url, err)
			continue
		}

		seeded++
		fmt.Printf("seeded %v (%d clubs)\n", url, len(clubs))
	}
	return seeded
}
