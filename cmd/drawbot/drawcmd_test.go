/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/knockoutdraw/archive"
	"github.com/mikeb26/knockoutdraw/internal/config"
)

func newTestBot(t *testing.T) (*drawBot, ed25519.PrivateKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey returned error: %v", err)
	}
	store, err := archive.NewSQLiteStore(filepath.Join(t.TempDir(), "draws.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore returned error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.DefaultConfig()
	cfg.Sample.Workers = 2
	return &drawBot{cfg: cfg, store: store, pubKey: pub}, priv
}

func subCommand(name string,
	opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {

	return &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Name: string(DrawCmd),
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{
					Name:    name,
					Type:    discordgo.ApplicationCommandOptionSubCommand,
					Options: opts,
				},
			},
		},
	}
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func intOpt(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

func boolOpt(name string, value bool) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionBoolean,
		Value: value,
	}
}

func signedRequest(t *testing.T, priv ed25519.PrivateKey, body string) *http.Request {
	t.Helper()

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := ed25519.Sign(priv, []byte(ts+body))
	req := httptest.NewRequest(http.MethodPost, "/DiscordBot/Interaction",
		bytes.NewBufferString(body))
	req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
	req.Header.Set("X-Signature-Timestamp", ts)
	return req
}

func TestInteractionHandlerPing(t *testing.T) {
	bot, priv := newTestBot(t)
	body := `{"id":"1","application_id":"2","type":1,"token":"t","version":1}`

	rec := httptest.NewRecorder()
	bot.routes().ServeHTTP(rec, signedRequest(t, priv, body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	var resp discordgo.InteractionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Type != discordgo.InteractionResponsePong {
		t.Errorf("response type = %v; want %v", resp.Type,
			discordgo.InteractionResponsePong)
	}
}

func TestInteractionHandlerRejectsBadSignature(t *testing.T) {
	bot, _ := newTestBot(t)
	_, otherKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey returned error: %v", err)
	}
	body := `{"id":"1","application_id":"2","type":1,"token":"t","version":1}`

	rec := httptest.NewRecorder()
	bot.routes().ServeHTTP(rec, signedRequest(t, otherKey, body))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestInteractionHandlerUnknownCommand(t *testing.T) {
	bot, priv := newTestBot(t)
	body := `{"id":"1","application_id":"2","type":2,"token":"t","version":1,` +
		`"data":{"id":"3","name":"nope","type":1}}`

	rec := httptest.NewRecorder()
	bot.routes().ServeHTTP(rec, signedRequest(t, priv, body))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	var resp discordgo.InteractionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data == nil || !strings.Contains(resp.Data.Content, "unknown command 'nope'") {
		t.Errorf("unexpected response %+v", resp.Data)
	}
}

func TestMetricsRoute(t *testing.T) {
	bot, _ := newTestBot(t)
	bot.drawRunCmdHandler(context.Background(),
		subCommand(string(DrawRunCmd), intOpt("seed", 3)))

	rec := httptest.NewRecorder()
	bot.routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), "knockoutdraw_attempts_total") {
		t.Errorf("metrics output missing knockoutdraw_attempts_total")
	}
}

func TestDrawCmdHandlerDefaultsToHelp(t *testing.T) {
	bot, _ := newTestBot(t)
	inter := &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{Name: string(DrawCmd)},
	}

	resp := bot.drawCmdHandler(context.Background(), inter)
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Errorf("response type = %v", resp.Type)
	}
	if resp.Data.Content != truncateContent(helpText) {
		t.Errorf("expected help text, got %q", resp.Data.Content)
	}
	if resp.Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Errorf("help response should be ephemeral")
	}
}

func TestDrawRunCmdHandler(t *testing.T) {
	bot, _ := newTestBot(t)
	ctx := context.Background()
	inter := subCommand(string(DrawRunCmd), stringOpt("season", "2021"),
		stringOpt("policy", "uniform"), intOpt("seed", 11),
		boolOpt("broadcast", true))

	resp := bot.drawCmdHandler(ctx, inter)
	if resp.Data.Flags != 0 {
		t.Errorf("broadcast response still flagged %v", resp.Data.Flags)
	}

	recs, err := bot.store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("archived %d draws; want 1", len(recs))
	}
	rec := recs[0]
	if rec.Seed != 11 || rec.Policy != "uniform" || rec.Season != "2021" {
		t.Errorf("archived %v", rec.Summary())
	}
	if rec.Succeeded() {
		want := "seed:11 id:" + rec.ID.String()
		if !strings.Contains(resp.Data.Content, want) {
			t.Errorf("content missing %q:\n%v", want, resp.Data.Content)
		}
		if !strings.HasPrefix(resp.Data.Content, "```\n") {
			t.Errorf("draw not wrapped in a code block")
		}
	} else if !strings.Contains(resp.Data.Content, "dead-ended") {
		t.Errorf("failed draw not reported:\n%v", resp.Data.Content)
	}

	// the same seed replays the same draw
	again := bot.drawRunCmdHandler(ctx, inter)
	recs, err = bot.store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("archived %d draws; want 2", len(recs))
	}
	if rec.Succeeded() {
		first := strings.Split(resp.Data.Content, "seed:")[0]
		second := strings.Split(again.Data.Content, "seed:")[0]
		if first != second {
			t.Errorf("seed 11 drew differently:\n%v\n%v", first, second)
		}
	}
}

func TestDrawRunCmdHandlerReplaysSeedZero(t *testing.T) {
	bot, _ := newTestBot(t)
	ctx := context.Background()
	inter := subCommand(string(DrawRunCmd), intOpt("seed", 0))
	bot.drawRunCmdHandler(ctx, inter)
	bot.drawRunCmdHandler(ctx, inter)

	recs, err := bot.store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("archived %d draws; want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.Seed != 0 {
			t.Errorf("seed 0 archived as %v", rec.Seed)
		}
	}
	if recs[0].Succeeded() != recs[1].Succeeded() {
		t.Errorf("seed 0 replayed with a different outcome")
	}
}

func TestDrawRunCmdHandlerRejectsBadInput(t *testing.T) {
	bot, _ := newTestBot(t)
	ctx := context.Background()

	resp := bot.drawRunCmdHandler(ctx, subCommand(string(DrawRunCmd),
		stringOpt("policy", "backtracking")))
	if !strings.Contains(resp.Data.Content, "Unknown policy 'backtracking'") {
		t.Errorf("unexpected content %q", resp.Data.Content)
	}
	resp = bot.drawRunCmdHandler(ctx, subCommand(string(DrawRunCmd),
		stringOpt("season", "1999")))
	if !strings.Contains(resp.Data.Content, "Unknown season '1999'") {
		t.Errorf("unexpected content %q", resp.Data.Content)
	}
	if resp.Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Errorf("error response should be ephemeral")
	}

	recs, err := bot.store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("archived %d draws for rejected input", len(recs))
	}
}

func TestDrawSimulateCmdHandler(t *testing.T) {
	bot, _ := newTestBot(t)
	resp := bot.drawCmdHandler(context.Background(),
		subCommand(string(DrawSimulateCmd), stringOpt("policy", "degree"),
			intOpt("attempts", 40)))

	content := resp.Data.Content
	if !strings.HasPrefix(content, "```\n") {
		t.Fatalf("stats not wrapped in a code block:\n%v", content)
	}
	if !strings.Contains(content, "degree") || !strings.Contains(content, "40") {
		t.Errorf("stats missing policy or attempts:\n%v", content)
	}
	if strings.Contains(content, "uniform") {
		t.Errorf("simulated policies that were not asked for:\n%v", content)
	}
}

func TestDrawEligibleCmdHandler(t *testing.T) {
	bot, _ := newTestBot(t)
	ctx := context.Background()

	resp := bot.drawCmdHandler(ctx, subCommand(string(DrawEligibleCmd),
		stringOpt("club", "chelsea"), stringOpt("season", "2021")))
	if !strings.Contains(resp.Data.Content, "Chelsea (runner-up, group H, ENG)") {
		t.Errorf("unexpected content:\n%v", resp.Data.Content)
	}
	for _, club := range []string{"Ajax", "Real Madrid", "Bayern Munich", "Lille"} {
		if !strings.Contains(resp.Data.Content, club) {
			t.Errorf("%v missing from Chelsea's opponents", club)
		}
	}

	resp = bot.drawCmdHandler(ctx, subCommand(string(DrawEligibleCmd),
		stringOpt("club", "Arsenal")))
	if !strings.Contains(resp.Data.Content, "Arsenal did not qualify") {
		t.Errorf("unexpected content %q", resp.Data.Content)
	}
}

func TestDrawSeasonsCmdHandler(t *testing.T) {
	bot, _ := newTestBot(t)
	resp := bot.drawCmdHandler(context.Background(),
		subCommand(string(DrawSeasonsCmd)))
	if !strings.Contains(resp.Data.Content, "2020") ||
		!strings.Contains(resp.Data.Content, "2021") {
		t.Errorf("unexpected content:\n%v", resp.Data.Content)
	}
}

func TestCmdRegistrationHash(t *testing.T) {
	h1, err := cmdRegistrationHash(drawCommand())
	if err != nil {
		t.Fatalf("cmdRegistrationHash returned error: %v", err)
	}
	h2, err := cmdRegistrationHash(drawCommand())
	if err != nil {
		t.Fatalf("cmdRegistrationHash returned error: %v", err)
	}
	if h1 != h2 || len(h1) != 64 {
		t.Errorf("unstable hash %v vs %v", h1, h2)
	}
	for _, opt := range drawCommand().Options {
		if _, ok := (&drawBot{}).drawSubCmdHdlrs()[DrawSubCommand(opt.Name)]; !ok {
			t.Errorf("registered sub-command %v has no handler", opt.Name)
		}
	}
}

func TestTruncateContent(t *testing.T) {
	short := "hello"
	if got := truncateContent(short); got != short {
		t.Errorf("truncateContent(%q) = %q", short, got)
	}
	long := strings.Repeat("é", 3000)
	got := truncateContent(long)
	if n := len([]rune(got)); n != 1991 {
		t.Errorf("truncated to %d runes; want 1991", n)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated content missing ellipsis")
	}
}
