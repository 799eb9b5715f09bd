// Package discord connects the bot to Discord. It owns the gateway
// session, registers the slash commands on the home guild, translates
// interactions for the command layer, and implements usecase.Messenger
// for everything the bot posts.
package discord

import (
	"context"
	"net/http"
	"strings"

	"github.com/bwmarrin/discordgo"
	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/league"
	"github.com/dangue13/rlvs-discord-bot/internal/interfaces/command"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/logging"
)

type Config struct {
	Token   string
	GuildID string
	Logger  *logging.Logger
}

// Router dispatches one translated command invocation and serves team
// autocomplete. *command.Handler satisfies it.
type Router interface {
	Handle(ctx context.Context, req command.Request) command.Reply
	AutocompleteTeams(ctx context.Context, leagueValue, query string) []string
}

// Connector is the bot's Discord surface. Construct it with New, then call
// Start once the command router exists; messages can be sent as soon as
// Start returns.
type Connector struct {
	session *discordgo.Session
	guildID string
	logger  *logging.Logger
	router  Router
}

func New(cfg Config) (*Connector, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, crerr.New("discord bot token is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, crerr.Wrap(err, "create discord session")
	}
	// Slash commands arrive as interactions; guild metadata is all the
	// gateway needs to cache beyond that.
	session.Identify.Intents = discordgo.IntentsGuilds
	session.Client.Transport = otelhttp.NewTransport(http.DefaultTransport)

	return &Connector{
		session: session,
		guildID: strings.TrimSpace(cfg.GuildID),
		logger:  logger,
	}, nil
}

// Start opens the gateway and overwrites the home guild's slash commands
// with the current definitions, so removed commands disappear on deploy.
func (c *Connector) Start(ctx context.Context, router Router, leagues []league.League) error {
	if router == nil {
		return crerr.New("interaction router is required")
	}
	if c.guildID == "" {
		return crerr.New("home guild id is required to register commands")
	}
	c.router = router

	c.session.AddHandler(c.onReady)
	c.session.AddHandler(c.onInteraction)

	if err := c.session.Open(); err != nil {
		return crerr.Wrap(err, "open discord gateway")
	}

	cmds := applicationCommands(command.Definitions(), leagues)
	_, err := c.session.ApplicationCommandBulkOverwrite(c.session.State.User.ID, c.guildID, cmds, discordgo.WithContext(ctx))
	if err != nil {
		return crerr.CombineErrors(crerr.Wrap(err, "register slash commands"), c.session.Close())
	}

	c.logger.InfoContext(ctx, "slash commands registered", "count", len(cmds), "guild_id", c.guildID)
	return nil
}

// Stop closes the gateway connection.
func (c *Connector) Stop() error {
	return c.session.Close()
}

func (c *Connector) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	c.logger.Info("discord gateway ready", "user", r.User.Username, "session_id", r.SessionID)
}

// guildRoles prefers the gateway cache and falls back to the REST API for
// guilds the cache has not seen yet.
func (c *Connector) guildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	if g, err := c.session.State.Guild(guildID); err == nil && len(g.Roles) > 0 {
		return g.Roles, nil
	}
	return c.session.GuildRoles(guildID, discordgo.WithContext(ctx))
}
