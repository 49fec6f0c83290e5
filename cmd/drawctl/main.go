/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mikeb26/knockoutdraw/archive"
	"github.com/mikeb26/knockoutdraw/draw"
	"github.com/mikeb26/knockoutdraw/internal/config"
	"github.com/mikeb26/knockoutdraw/internal/metrics"
	"github.com/mikeb26/knockoutdraw/uefa"
)

//go:embed help.txt
var helpText string

// cmdHandler defines the signature for command handler functions.
type cmdHandler func(ctx context.Context, cfg *config.Config, args []string)

// commands maps command names to their respective handler functions.
var commands = map[string]cmdHandler{
	"help":     handleHelp,
	"seasons":  handleSeasons,
	"entrants": handleEntrants,
	"eligible": handleEligible,
	"draw":     handleDraw,
	"simulate": handleSimulate,
	"fetch":    handleFetch,
	"history":  handleHistory,
	"show":     handleShow,
}

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	handler, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	handler(ctx, cfg, os.Args[2:])
}

func usage() {
	fmt.Printf("%v", helpText)
}

func handleHelp(ctx context.Context, cfg *config.Config, args []string) {
	usage()
}

func handleSeasons(ctx context.Context, cfg *config.Config, args []string) {
	for _, name := range uefa.Seasons() {
		s, err := uefa.LoadSeason(name)
		if err != nil {
			log.Fatalf("Error loading season %v: %v", name, err)
		}
		fmt.Printf("  - %v\n", s)
	}
	fmt.Printf("\nRun '%s entrants --season NAME' to list a season's qualifiers\n",
		os.Args[0])
}

// seasonFlags registers the dataset selection flags shared by most commands.
func seasonFlags(fs *flag.FlagSet, cfg *config.Config) (*string, *string) {
	season := fs.String("season", cfg.Season, "Built-in season to draw ("+
		strings.Join(uefa.Seasons(), ", ")+")")
	file := fs.String("file", "", "Season JSON file to use instead of a built-in season")
	return season, file
}

func loadSeason(name string, file string) (*uefa.Season, error) {
	if file != "" {
		return uefa.LoadSeasonFile(file)
	}
	return uefa.LoadSeason(name)
}

func handleEntrants(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("entrants", flag.ExitOnError)
	seasonName, file := seasonFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	season, err := loadSeason(*seasonName, *file)
	if err != nil {
		log.Fatalf("Error loading season: %v", err)
	}

	fmt.Println(season)
	for _, e := range season.Entrants() {
		fmt.Printf("  %2d. %-28s group %v  %-9v  %v\n", e.ID, e.Name, e.Group,
			e.Role, e.Association)
	}
}

func handleEligible(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("eligible", flag.ExitOnError)
	seasonName, file := seasonFlags(fs, cfg)
	club := fs.String("club", "", "Club to list legal opponents for")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *club == "" {
		fmt.Fprintln(os.Stderr, "Please provide a valid --club name.")
		fs.Usage()
		os.Exit(1)
	}
	season, err := loadSeason(*seasonName, *file)
	if err != nil {
		log.Fatalf("Error loading season: %v", err)
	}

	output, err := buildEligible(season, *club)
	if err != nil {
		log.Fatalf("%v", err)
	}
	fmt.Print(output)
}

func buildEligible(season *uefa.Season, club string) (string, error) {
	anchor, ok := season.Lookup(club)
	if !ok {
		return "", fmt.Errorf("%v did not qualify in season %v", club,
			season.Name)
	}
	pool, err := draw.NewPool(season.Entrants())
	if err != nil {
		return "", err
	}
	partners, err := draw.EligiblePartners(anchor, pool)
	if err != nil {
		return "", err
	}
	return draw.BuildEligibleOutput(anchor, partners), nil
}

type drawOptions struct {
	policy  draw.Policy
	seed    int64
	retries int
}

// runDraw attempts a draw, retrying with the next seed after each dead end,
// and archives every attempt. It returns the last attempt's record.
func runDraw(ctx context.Context, store archive.Store, season *uefa.Season,
	opts drawOptions) (*archive.Record, error) {

	entrants := season.Entrants()
	var rec *archive.Record
	for i := 0; i <= opts.retries; i++ {
		seed := opts.seed + int64(i)
		start := time.Now()
		res, runErr := draw.Run(entrants, opts.policy, draw.NewRand(seed))
		metrics.ObserveDraw(opts.policy.Name(), time.Since(start), runErr)

		var err error
		rec, err = archive.NewRecord(season.Name, opts.policy.Name(), seed, res,
			runErr)
		if err != nil {
			return nil, err
		}
		if err := store.Put(ctx, rec); err != nil {
			log.Printf("drawctl.draw: warning failed to archive draw %v: %v",
				rec.ID, err)
		}
		if rec.Succeeded() {
			return rec, nil
		}
	}

	return rec, nil
}

func handleDraw(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	seasonName, file := seasonFlags(fs, cfg)
	policyName := fs.String("policy", cfg.Policy, "Selection policy (uniform, association, alternating, degree)")
	seed := fs.Int64("seed", 0, "Random seed; any value including 0 replays that draw (default is time based)")
	retries := fs.Int("retries", 0, "Redraws allowed after a dead end (0-100)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	policy, err := draw.PolicyByName(*policyName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		os.Exit(1)
	}
	// enforce bounds
	if *retries < 0 {
		*retries = 0
	} else if *retries > 100 {
		*retries = 100
	}
	drawSeed := resolveSeed(fs, *seed, time.Now)

	season, err := loadSeason(*seasonName, *file)
	if err != nil {
		log.Fatalf("Error loading season: %v", err)
	}
	store := openArchive(ctx, cfg)
	rec, err := runDraw(ctx, store, season, drawOptions{policy: policy,
		seed: drawSeed, retries: *retries})
	store.Close()
	if err != nil {
		log.Fatalf("Error drawing season %v: %v", season.Name, err)
	}
	if !rec.Succeeded() {
		fmt.Fprintf(os.Stderr, "Draw failed (seed %v): %v\n", rec.Seed,
			rec.Failure.Message)
		os.Exit(1)
	}
	fmt.Print(draw.BuildDrawOutput(rec.Result()))
	fmt.Printf("\nseed:%v id:%v\n", rec.Seed, rec.ID)
}

// resolveSeed returns the --seed value when it was given on the command line
// and a time based seed otherwise.
func resolveSeed(fs *flag.FlagSet, seed int64, now func() time.Time) int64 {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			set = true
		}
	})
	if set {
		return seed
	}
	return now().UnixNano()
}

func handleSimulate(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	seasonName, file := seasonFlags(fs, cfg)
	policyName := fs.String("policy", "all", "Selection policy to sample, or all")
	attempts := fs.Int("attempts", cfg.Sample.Attempts, "Draw attempts per policy")
	seed := fs.Int64("seed", 1, "Seed of the first attempt")
	workers := fs.Int("workers", cfg.Sample.Workers, "Concurrent attempts (0 is one per CPU)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	policies := draw.Policies()
	if *policyName != "all" {
		policy, err := draw.PolicyByName(*policyName)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			fs.Usage()
			os.Exit(1)
		}
		policies = []draw.Policy{policy}
	}
	season, err := loadSeason(*seasonName, *file)
	if err != nil {
		log.Fatalf("Error loading season: %v", err)
	}

	all, err := simulate(ctx, season, policies, draw.SampleOptions{
		Attempts: *attempts, Seed: *seed, Workers: *workers})
	if err != nil {
		log.Fatalf("Error simulating season %v: %v", season.Name, err)
	}
	fmt.Printf("%v\n\n", season)
	fmt.Print(draw.BuildStatsOutput(all))
}

func simulate(ctx context.Context, season *uefa.Season, policies []draw.Policy,
	opts draw.SampleOptions) ([]*draw.Stats, error) {

	var all []*draw.Stats
	for _, p := range policies {
		stats, err := draw.Sample(ctx, season.Entrants(), p, opts)
		if err != nil {
			return nil, err
		}
		metrics.ObserveSample(season.Name, stats)
		all = append(all, stats)
	}
	return all, nil
}

func handleFetch(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	name := fs.String("name", time.Now().Format("2006"), "Name of the fetched season")
	urls := fs.String("urls", strings.Join(cfg.Standings.URLs, ","),
		"Comma separated standings page URLs")
	out := fs.String("out", "", "File to write the season to (default stdout)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	var list []string
	for _, u := range strings.Split(*urls, ",") {
		if u = strings.TrimSpace(u); u != "" {
			list = append(list, u)
		}
	}
	if len(list) == 0 {
		fmt.Fprintln(os.Stderr, "Please provide --urls or configure standings.urls.")
		fs.Usage()
		os.Exit(1)
	}

	client := uefa.NewClient(ctx, cfg.Standings.CacheBucket)
	season, err := client.FetchStandings(ctx, *name, list...)
	if err != nil {
		log.Fatalf("Error fetching standings: %v", err)
	}
	data, err := json.MarshalIndent(season, "", "  ")
	if err != nil {
		log.Fatalf("Error encoding season: %v", err)
	}
	data = append(data, '\n')
	if *out == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(*out, data, 0644); err != nil {
		log.Fatalf("Error writing %v: %v", *out, err)
	}
	fmt.Printf("wrote %v with %d clubs\n", *out, len(season.Clubs))
	fmt.Printf("\nRun '%s draw --file %v' to draw it\n", os.Args[0], *out)
}

func handleHistory(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	limit := fs.Int("limit", 20, "Number of draws to list (1-500)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	// enforce bounds
	if *limit <= 0 {
		*limit = 20
	} else if *limit > 500 {
		*limit = 500
	}

	store := openArchive(ctx, cfg)
	defer store.Close()
	recs, err := store.List(ctx, *limit)
	if err != nil {
		log.Fatalf("Error listing draws: %v", err)
	}
	if len(recs) == 0 {
		fmt.Println("No archived draws found.")
		return
	}
	for _, rec := range recs {
		fmt.Println(rec.Summary())
	}
	fmt.Printf("\nRun '%s show --id ID' to see a specific draw\n", os.Args[0])
}

func handleShow(ctx context.Context, cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	idText := fs.String("id", "", "Archived draw id (as listed by history)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	id, err := uuid.Parse(*idText)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Please provide a valid --id.")
		fs.Usage()
		os.Exit(1)
	}

	store := openArchive(ctx, cfg)
	defer store.Close()
	rec, err := store.Get(ctx, id)
	if errors.Is(err, archive.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "No archived draw with id %v\n", id)
		os.Exit(1)
	} else if err != nil {
		log.Fatalf("Error fetching draw %v: %v", id, err)
	}

	fmt.Println(rec.Summary())
	if rec.Succeeded() {
		fmt.Println()
		fmt.Print(draw.BuildDrawOutput(rec.Result()))
	}
}

func openArchive(ctx context.Context, cfg *config.Config) archive.Store {
	store, err := archive.Open(ctx, cfg.Archive)
	if err != nil {
		log.Printf("drawctl: warning archive unavailable: %v; draws will not be recorded",
			err)
		return archive.Discard{}
	}
	return store
}
