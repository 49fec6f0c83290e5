/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeb26/knockoutdraw/archive"
	"github.com/mikeb26/knockoutdraw/internal/config"
	"github.com/mikeb26/knockoutdraw/internal/metrics"
)

type TopLevelCommand string

const (
	DrawCmd TopLevelCommand = "draw"
)

type CmdHandler func(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse

// drawBot carries the state shared by every interaction.
type drawBot struct {
	cfg     *config.Config
	store   archive.Store
	pubKey  ed25519.PublicKey
	session *discordgo.Session
}

func (bot *drawBot) topLevelCmdHdlrs() map[TopLevelCommand]CmdHandler {
	return map[TopLevelCommand]CmdHandler{
		DrawCmd: bot.drawCmdHandler,
	}
}

func (bot *drawBot) interactionHandler(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, bot.pubKey) {
		log.Printf("drawbot.int: failed to verify")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("drawbot.int: failed to read request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var inter discordgo.Interaction
	if err := inter.UnmarshalJSON(body); err != nil {
		log.Printf("drawbot.int: failed to unmarshal interaction: err:%v body:%v",
			err, string(body))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp := &discordgo.InteractionResponse{}
	if inter.Type == discordgo.InteractionPing {
		resp.Type = discordgo.InteractionResponsePong
	} else if inter.Type == discordgo.InteractionApplicationCommand {
		name := inter.ApplicationCommandData().Name
		hdlr, ok := bot.topLevelCmdHdlrs()[TopLevelCommand(name)]
		if !ok {
			resp.Type = discordgo.InteractionResponseChannelMessageWithSource
			resp.Data = &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("unknown command '%v'", name),
				Flags:   discordgo.MessageFlagsEphemeral,
			}
		} else {
			resp = hdlr(r.Context(), &inter)
		}
	} else {
		log.Printf("drawbot.int: unimplemented interation type %v", inter.Type)
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	rawResp, err := json.Marshal(resp)
	if err != nil {
		log.Printf("drawbot.int: failed to marshal resp: err:%v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(rawResp); err != nil {
		log.Printf("drawbot.int: failed to write resp: err:%v", err)
	}
}

//go:embed lastupdate.hash
var lastCmdUpdateHash string

func cmdRegistrationHash(cmd *discordgo.ApplicationCommand) (string, error) {
	cmdJson, err := json.Marshal(cmd)
	if err != nil {
		return "", err
	}
	hash := sha256.Sum256(cmdJson)
	return hex.EncodeToString(hash[:]), nil
}

func shouldUpdateCmdRegistration(cmd *discordgo.ApplicationCommand) bool {
	hexString, err := cmdRegistrationHash(cmd)
	if err != nil {
		log.Printf("drawbot.reg: failed to marshal cmd: %v", err)
		return false
	}

	shouldUpdate := (hexString != strings.TrimSpace(lastCmdUpdateHash))
	if shouldUpdate {
		log.Printf("drawbot.reg: updating cmd reg; please update lastupdate.hash to %v",
			hexString)
	}

	return shouldUpdate
}

func broadcastOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        "broadcast",
		Description: "Share with the rest of the channel instead of only to you (default is false)",
		Required:    false,
	}
}

func seasonOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "season",
		Description: "Season to draw (as listed by seasons)",
		Required:    false,
	}
}

func policyOption(description string) *discordgo.ApplicationCommandOption {
	opt := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "policy",
		Description: description,
		Required:    false,
	}
	for _, name := range policyNames() {
		opt.Choices = append(opt.Choices,
			&discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}
	return opt
}

func drawCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        string(DrawCmd),
		Description: "Knockout draw commands; try /draw help to start",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(DrawHelpCmd),
				Description: "Show usage for draw",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(DrawAboutCmd),
				Description: "Show information about knockoutdraw",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(DrawSeasonsCmd),
				Description: "List the seasons available to draw",
				Options: []*discordgo.ApplicationCommandOption{
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(DrawRunCmd),
				Description: "Draw the round of 16",
				Options: []*discordgo.ApplicationCommandOption{
					seasonOption(),
					policyOption("Selection policy (default is degree)"),
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "seed",
						Description: "Random seed to replay a draw (default is time based)",
						Required:    false,
					},
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(DrawSimulateCmd),
				Description: "Estimate how often each policy dead-ends",
				Options: []*discordgo.ApplicationCommandOption{
					seasonOption(),
					policyOption("Selection policy (default is all)"),
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "attempts",
						Description: "Draw attempts per policy (default is 1000)",
						Required:    false,
					},
					broadcastOption(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(DrawEligibleCmd),
				Description: "List the clubs a club can be drawn against",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "club",
						Description: "Name of a qualified club",
						Required:    true,
					},
					seasonOption(),
					broadcastOption(),
				},
			},
		},
	}
}

func (bot *drawBot) registerSlashCommands() {
	drawCmd := drawCommand()
	appID := bot.cfg.Bot.AppID
	cmdID := bot.cfg.Bot.CommandID

	if cmdID == "" {
		cmd, err := bot.session.ApplicationCommandCreate(appID, "", drawCmd)
		if err != nil {
			log.Printf("drawbot.reg: failed to register %v: %v", drawCmd.Name,
				err)
			return
		}

		log.Printf("drawbot.reg: registered %v(cmdID:%v); set DRAWBOT_CMDID",
			cmd.Name, cmd.ID)
	} else if shouldUpdateCmdRegistration(drawCmd) {
		cmd, err := bot.session.ApplicationCommandEdit(appID, "", cmdID, drawCmd)
		if err != nil {
			log.Printf("drawbot.reg: failed to update %v: %v", drawCmd.Name,
				err)
			return
		}

		log.Printf("drawbot.reg: updated %v(cmdID:%v)", cmd.Name, cmd.ID)
	}
}

func newDrawBot(ctx context.Context, cfg *config.Config) (*drawBot, error) {
	pubKeyBytes, err := hex.DecodeString(strings.TrimSpace(cfg.Bot.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	if len(pubKeyBytes) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("public key is %d bytes; want %d",
			len(pubKeyBytes), ed25519.PublicKeySize)
	}
	session, err := discordgo.New("Bot " + cfg.Bot.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize discord client: %w", err)
	}
	store, err := archive.Open(ctx, cfg.Archive)
	if err != nil {
		log.Printf("drawbot.init: warning archive unavailable: %v; draws will not be recorded",
			err)
		store = archive.Discard{}
	}

	return &drawBot{
		cfg:     cfg,
		store:   store,
		pubKey:  ed25519.PublicKey(pubKeyBytes),
		session: session,
	}, nil
}

func (bot *drawBot) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/DiscordBot/Interaction", bot.interactionHandler)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func init() {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		log.Fatalf("drawbot.main: failed to load config: %v", err)
	}
	bot, err := newDrawBot(ctx, cfg)
	if err != nil {
		log.Fatalf("drawbot.main: %v", err)
	}
	defer bot.store.Close()

	go bot.registerSlashCommands()

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	log.Printf("drawbot.main: starting server on %v%v", hostname,
		cfg.Bot.ListenAddr)

	if err := http.ListenAndServe(cfg.Bot.ListenAddr, bot.routes()); err != nil {
		log.Fatalf("drawbot.main: Serve failed: %v", err)
	}

	log.Printf("drawbot.main: exiting")
}
