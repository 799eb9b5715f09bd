package discord

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/league"
	"github.com/dangue13/rlvs-discord-bot/internal/interfaces/command"
	"github.com/dangue13/rlvs-discord-bot/internal/usecase"
)

// Commands may fetch and parse standings pages, so they get far more room
// than Discord's 3 second acknowledgement window; the deferred response
// buys the time. Autocomplete has no deferral and must answer fast.
const (
	interactionTimeout  = 2 * time.Minute
	autocompleteTimeout = 2 * time.Second
)

var interactionTracer = otel.Tracer("rlvs-discord-bot/internal/infrastructure/notify/discord")

// applicationCommands maps the bot's command definitions onto Discord's
// registration payload, filling league choice lists from the configured
// leagues.
func applicationCommands(defs []command.Definition, leagues []league.League) []*discordgo.ApplicationCommand {
	cmds := make([]*discordgo.ApplicationCommand, 0, len(defs))
	for _, def := range defs {
		cmd := &discordgo.ApplicationCommand{
			Name:        def.Name,
			Description: def.Description,
		}
		for _, opt := range def.Options {
			cmd.Options = append(cmd.Options, applicationOption(opt, leagues))
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func applicationOption(opt command.Option, leagues []league.League) *discordgo.ApplicationCommandOption {
	out := &discordgo.ApplicationCommandOption{
		Name:        opt.Name,
		Description: opt.Description,
		Required:    opt.Required,
	}

	switch opt.Kind {
	case command.OptionInteger:
		out.Type = discordgo.ApplicationCommandOptionInteger
	case command.OptionChannel:
		out.Type = discordgo.ApplicationCommandOptionChannel
		out.ChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildText}
	default:
		out.Type = discordgo.ApplicationCommandOptionString
	}

	// An option carries either a fixed choice list or autocomplete,
	// never both.
	switch {
	case opt.LeagueChoices:
		for _, lg := range leagues {
			out.Choices = append(out.Choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  lg.Name,
				Value: lg.Key,
			})
		}
	case len(opt.Choices) > 0:
		for _, choice := range opt.Choices {
			out.Choices = append(out.Choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  choice,
				Value: choice,
			})
		}
	case opt.TeamAutocomplete:
		out.Autocomplete = true
	}

	return out
}

func (c *Connector) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		c.handleCommand(s, i)
	case discordgo.InteractionApplicationCommandAutocomplete:
		c.handleAutocomplete(s, i)
	}
}

func (c *Connector) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()

	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	ctx, span := interactionTracer.Start(ctx, "discord.command "+data.Name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("discord.command", data.Name)))
	defer span.End()

	// Acknowledge inside Discord's window; the real reply follows as an
	// edit once the handler returns. Replies stay ephemeral, shared
	// channels only receive messages through the Messenger.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
	if err != nil {
		c.logger.ErrorContext(ctx, "interaction ack failed", "command", data.Name, "error", err)
		return
	}

	reply := c.router.Handle(ctx, command.Request{
		Name:    data.Name,
		Options: optionValues(data.Options),
		Invoker: c.invokerFromInteraction(ctx, i),
	})

	edit := &discordgo.WebhookEdit{}
	if reply.Content != "" {
		edit.Content = &reply.Content
	}
	if reply.View != nil {
		embeds := []*discordgo.MessageEmbed{embedFromView(*reply.View)}
		edit.Embeds = &embeds
	}
	if edit.Content == nil && edit.Embeds == nil {
		done := "Done."
		edit.Content = &done
	}

	if _, err := s.InteractionResponseEdit(i.Interaction, edit, discordgo.WithContext(ctx)); err != nil {
		c.logger.ErrorContext(ctx, "interaction reply failed", "command", data.Name, "error", err)
	}
}

func (c *Connector) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	focused := focusedOption(data.Options)
	if focused == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), autocompleteTimeout)
	defer cancel()

	values := optionValues(data.Options)
	names := c.router.AutocompleteTeams(ctx, values["league"], values[focused.Name])

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, name := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}, discordgo.WithContext(ctx))
	if err != nil {
		c.logger.DebugContext(ctx, "autocomplete reply failed", "command", data.Name, "error", err)
	}
}

// optionValues flattens interaction options to strings, which is how the
// command layer consumes them.
func optionValues(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	out := make(map[string]string, len(opts))
	for _, opt := range opts {
		if opt == nil || opt.Value == nil {
			continue
		}
		switch opt.Type {
		case discordgo.ApplicationCommandOptionString:
			out[opt.Name] = opt.StringValue()
		case discordgo.ApplicationCommandOptionInteger:
			out[opt.Name] = strconv.FormatInt(opt.IntValue(), 10)
		case discordgo.ApplicationCommandOptionChannel:
			out[opt.Name] = opt.ChannelValue(nil).ID
		default:
			out[opt.Name] = fmt.Sprint(opt.Value)
		}
	}
	return out
}

func focusedOption(opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	for _, opt := range opts {
		if opt != nil && opt.Focused {
			return opt
		}
	}
	return nil
}

func (c *Connector) invokerFromInteraction(ctx context.Context, i *discordgo.InteractionCreate) usecase.Invoker {
	inv := usecase.Invoker{GuildID: i.GuildID}

	member := i.Member
	if member == nil || member.User == nil {
		if i.User != nil {
			inv.UserID = i.User.ID
		}
		return inv
	}

	inv.UserID = member.User.ID
	inv.IsAdmin = isAdmin(member.Permissions)
	if len(member.Roles) > 0 {
		roles, err := c.guildRoles(ctx, i.GuildID)
		if err != nil {
			c.logger.DebugContext(ctx, "guild roles lookup failed", "guild_id", i.GuildID, "error", err)
		} else {
			inv.RoleNames = roleNamesFor(roles, member.Roles)
		}
	}
	return inv
}

func isAdmin(permissions int64) bool {
	return permissions&(discordgo.PermissionAdministrator|discordgo.PermissionManageGuild) != 0
}

func roleNamesFor(roles []*discordgo.Role, roleIDs []string) []string {
	byID := make(map[string]string, len(roles))
	for _, role := range roles {
		if role != nil {
			byID[role.ID] = role.Name
		}
	}

	names := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}
