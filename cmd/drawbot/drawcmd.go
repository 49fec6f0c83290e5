/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/knockoutdraw/archive"
	"github.com/mikeb26/knockoutdraw/draw"
	"github.com/mikeb26/knockoutdraw/internal/metrics"
	"github.com/mikeb26/knockoutdraw/uefa"
)

type DrawSubCommand string

const (
	DrawAboutCmd    DrawSubCommand = "about"
	DrawHelpCmd     DrawSubCommand = "help"
	DrawSeasonsCmd  DrawSubCommand = "seasons"
	DrawRunCmd      DrawSubCommand = "run"
	DrawSimulateCmd DrawSubCommand = "simulate"
	DrawEligibleCmd DrawSubCommand = "eligible"
)

const maxSimulateAttempts = 10000

func (bot *drawBot) drawSubCmdHdlrs() map[DrawSubCommand]CmdHandler {
	return map[DrawSubCommand]CmdHandler{
		DrawAboutCmd:    bot.drawAboutCmdHandler,
		DrawHelpCmd:     bot.drawHelpCmdHandler,
		DrawSeasonsCmd:  bot.drawSeasonsCmdHandler,
		DrawRunCmd:      bot.drawRunCmdHandler,
		DrawSimulateCmd: bot.drawSimulateCmdHandler,
		DrawEligibleCmd: bot.drawEligibleCmdHandler,
	}
}

func (bot *drawBot) drawCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	data := inter.ApplicationCommandData()
	hdlr := bot.drawHelpCmdHandler
	if len(data.Options) > 0 {
		if subName := data.Options[0].Name; subName != "" {
			h, ok := bot.drawSubCmdHdlrs()[DrawSubCommand(subName)]
			if ok {
				hdlr = h
			}
		}
	}
	return hdlr(ctx, inter)
}

func newResponse() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}
}

// subOptions returns the options passed to the invoked sub-command.
func subOptions(
	inter *discordgo.Interaction) []*discordgo.ApplicationCommandInteractionDataOption {

	data := inter.ApplicationCommandData()
	if len(data.Options) == 0 {
		return nil
	}
	return data.Options[0].Options
}

//go:embed about.txt
var aboutText string

func (bot *drawBot) drawAboutCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(aboutText)
	return resp
}

//go:embed help.md
var helpText string

func (bot *drawBot) drawHelpCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	resp.Data.Content = truncateContent(helpText)
	return resp
}

func (bot *drawBot) drawSeasonsCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	broadcast := false // default
	for _, opt := range subOptions(inter) {
		if opt.Name == "broadcast" {
			broadcast = opt.BoolValue()
		}
	}

	var sb strings.Builder
	sb.WriteString("Available seasons:\n")
	for _, name := range uefa.Seasons() {
		s, err := uefa.LoadSeason(name)
		if err != nil {
			resp.Data.Content = fmt.Sprintf("Error loading season %v: %v", name,
				err)
			log.Printf("drawbot.seasons: %v", resp.Data.Content)
			return resp
		}
		sb.WriteString(fmt.Sprintf("  - %v\n", s))
	}
	resp.Data.Content = fmt.Sprintf("```\n%s```", truncateContent(sb.String()))

	if broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

func (bot *drawBot) drawRunCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	seasonName := bot.cfg.Season // default
	policyName := bot.cfg.Policy // default
	seed := int64(0)
	seedSet := false
	broadcast := false // default
	for _, opt := range subOptions(inter) {
		switch opt.Name {
		case "season":
			seasonName = opt.StringValue()
		case "policy":
			policyName = opt.StringValue()
		case "seed":
			seed = opt.IntValue()
			seedSet = true
		case "broadcast":
			broadcast = opt.BoolValue()
		}
	}
	if !seedSet {
		seed = time.Now().UnixNano()
	}

	policy, err := draw.PolicyByName(policyName)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Unknown policy '%v'; try one of %v",
			policyName, strings.Join(policyNames(), ", "))
		return resp
	}
	season, err := uefa.LoadSeason(seasonName)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Unknown season '%v'; try /draw seasons",
			seasonName)
		return resp
	}

	start := time.Now()
	res, runErr := draw.Run(season.Entrants(), policy, draw.NewRand(seed))
	metrics.ObserveDraw(policy.Name(), time.Since(start), runErr)
	rec, err := archive.NewRecord(season.Name, policy.Name(), seed, res, runErr)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error drawing season %v: %v",
			season.Name, err)
		log.Printf("drawbot.run: %v", resp.Data.Content)
		return resp
	}
	if err := bot.store.Put(ctx, rec); err != nil {
		log.Printf("drawbot.run: warning failed to archive draw %v: %v", rec.ID,
			err)
	}

	if !rec.Succeeded() {
		resp.Data.Content = fmt.Sprintf("Draw dead-ended after %d matches (seed %v): %v\nRun it again with a different seed, or use the degree policy which avoids most dead ends.",
			rec.Failure.Committed, rec.Seed, rec.Failure.Message)
	} else {
		output := fmt.Sprintf("%v\n%s\nseed:%v id:%v\n", season,
			draw.BuildDrawOutput(rec.Result()), rec.Seed, rec.ID)
		resp.Data.Content = fmt.Sprintf("```\n%s```", truncateContent(output))
	}

	if broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

func (bot *drawBot) drawSimulateCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	seasonName := bot.cfg.Season // default
	policyName := "all"          // default
	attempts := int64(bot.cfg.Sample.Attempts)
	broadcast := false // default
	for _, opt := range subOptions(inter) {
		switch opt.Name {
		case "season":
			seasonName = opt.StringValue()
		case "policy":
			policyName = opt.StringValue()
		case "attempts":
			attempts = opt.IntValue()
		case "broadcast":
			broadcast = opt.BoolValue()
		}
	}
	// enforce bounds
	if attempts <= 0 {
		attempts = int64(bot.cfg.Sample.Attempts)
	} else if attempts > maxSimulateAttempts {
		attempts = maxSimulateAttempts
	}

	policies := draw.Policies()
	if policyName != "all" {
		policy, err := draw.PolicyByName(policyName)
		if err != nil {
			resp.Data.Content = fmt.Sprintf("Unknown policy '%v'; try one of %v",
				policyName, strings.Join(policyNames(), ", "))
			return resp
		}
		policies = []draw.Policy{policy}
	}
	season, err := uefa.LoadSeason(seasonName)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Unknown season '%v'; try /draw seasons",
			seasonName)
		return resp
	}

	var all []*draw.Stats
	for _, p := range policies {
		stats, err := draw.Sample(ctx, season.Entrants(), p, draw.SampleOptions{
			Attempts: int(attempts),
			Seed:     1,
			Workers:  bot.cfg.Sample.Workers,
		})
		if err != nil {
			resp.Data.Content = fmt.Sprintf("Error simulating %v: %v", p.Name(),
				err)
			log.Printf("drawbot.simulate: %v", resp.Data.Content)
			return resp
		}
		metrics.ObserveSample(season.Name, stats)
		all = append(all, stats)
	}
	output := fmt.Sprintf("%v\n\n%s", season, draw.BuildStatsOutput(all))
	resp.Data.Content = fmt.Sprintf("```\n%s```", truncateContent(output))

	if broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

func (bot *drawBot) drawEligibleCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := newResponse()
	seasonName := bot.cfg.Season // default
	club := ""
	broadcast := false // default
	for _, opt := range subOptions(inter) {
		switch opt.Name {
		case "season":
			seasonName = opt.StringValue()
		case "club":
			club = opt.StringValue()
		case "broadcast":
			broadcast = opt.BoolValue()
		}
	}
	if strings.TrimSpace(club) == "" {
		resp.Data.Content = "Please provide a club name."
		return resp
	}
	season, err := uefa.LoadSeason(seasonName)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Unknown season '%v'; try /draw seasons",
			seasonName)
		return resp
	}
	anchor, ok := season.Lookup(club)
	if !ok {
		resp.Data.Content = fmt.Sprintf("%v did not qualify in season %v",
			club, season.Name)
		return resp
	}
	pool, err := draw.NewPool(season.Entrants())
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error loading season %v: %v",
			season.Name, err)
		log.Printf("drawbot.eligible: %v", resp.Data.Content)
		return resp
	}
	partners, err := draw.EligiblePartners(anchor, pool)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("%v", err)
		return resp
	}
	resp.Data.Content = fmt.Sprintf("```\n%s```",
		truncateContent(draw.BuildEligibleOutput(anchor, partners)))

	if broadcast {
		resp.Data.Flags = 0
	}
	return resp
}

func policyNames() []string {
	var names []string
	for _, p := range draw.Policies() {
		names = append(names, p.Name())
	}
	return names
}

func truncateContent(s string) string {
	const MsgLimit = 1988 // keep space for newlines and markdown
	runes := []rune(s)
	if len(runes) > MsgLimit {
		s = fmt.Sprintf("%v...", string(runes[:MsgLimit]))
	}
	return s
}
