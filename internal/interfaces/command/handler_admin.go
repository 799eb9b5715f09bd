package command

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/guild"
	"github.com/dangue13/rlvs-discord-bot/internal/usecase"
)

const helpEmbedColor = 0x5865F2

type setChannelArgs struct {
	Target  string `validate:"required,oneof=standings schedule logs announcements"`
	Channel string `validate:"required"`
	League  string
}

func (h *Handler) setChannel(ctx context.Context, req Request) Reply {
	ctx, span := startSpan(ctx, "command.Handler.SetChannel")
	defer span.End()

	if !req.Invoker.IsAdmin {
		return eph(adminsOnlyMessage)
	}

	args := setChannelArgs{
		Target:  req.Option("target"),
		Channel: req.Option("channel"),
		League:  req.Option("league"),
	}
	if err := h.validator.StructCtx(ctx, args); err != nil {
		return eph("Pick a **target** and a **channel** first.")
	}

	purpose := guild.ChannelPurpose(args.Target)
	leagueKey := ""
	if purpose == guild.PurposeStandings || purpose == guild.PurposeSchedule {
		if args.League == "" {
			return eph("Pick a **league** for standings and schedule channels.")
		}
		lg, ok, err := h.leagues.GetByKeyOrName(ctx, args.League)
		if err != nil {
			h.logger.ErrorContext(ctx, "league lookup failed", "league", args.League, "error", err)
			return replyForError(err)
		}
		if !ok {
			return replyForError(fmt.Errorf("%w: unknown league '%s'", usecase.ErrInvalidInput, args.League))
		}
		leagueKey = lg.Key
	}

	if err := h.guilds.SetChannel(ctx, req.Invoker.GuildID, purpose, leagueKey, args.Channel); err != nil {
		h.logger.ErrorContext(ctx, "channel binding failed",
			"guild_id", req.Invoker.GuildID, "purpose", purpose, "error", err)
		return replyForError(err)
	}

	h.logger.InfoContext(ctx, "channel bound",
		"guild_id", req.Invoker.GuildID, "purpose", purpose, "league", leagueKey, "channel_id", args.Channel)

	return eph("✅ Configuration saved.")
}

func (h *Handler) setWeek(ctx context.Context, req Request) Reply {
	ctx, span := startSpan(ctx, "command.Handler.SetWeek")
	defer span.End()

	if !req.Invoker.IsAdmin {
		return eph(adminsOnlyMessage)
	}

	week, err := strconv.Atoi(req.Option("week"))
	if err != nil {
		return eph("Week must be a number.")
	}

	lg, err := h.scheduler.SetWeek(ctx, req.Invoker.GuildID, req.Option("league"), week)
	if err != nil {
		h.logger.WarnContext(ctx, "set week rejected",
			"guild_id", req.Invoker.GuildID, "week", week, "error", err)
		return replyForError(err)
	}

	return eph(fmt.Sprintf("✅ %s week set to %d.", lg.Name, week))
}

func (h *Handler) advanceWeek(ctx context.Context, req Request) Reply {
	ctx, span := startSpan(ctx, "command.Handler.AdvanceWeek")
	defer span.End()

	if !req.Invoker.IsAdmin {
		return eph(adminsOnlyMessage)
	}

	lg, next, err := h.scheduler.AdvanceWeek(ctx, req.Invoker.GuildID, req.Option("league"))
	if err != nil {
		h.logger.WarnContext(ctx, "advance week rejected",
			"guild_id", req.Invoker.GuildID, "error", err)
		return replyForError(err)
	}

	return eph(fmt.Sprintf("✅ %s advanced to week %d.", lg.Name, next))
}

func (h *Handler) status(ctx context.Context, req Request) Reply {
	ctx, span := startSpan(ctx, "command.Handler.Status")
	defer span.End()

	if !req.Invoker.IsAdmin {
		return eph(adminsOnlyMessage)
	}

	cfg, err := h.guilds.Get(ctx, req.Invoker.GuildID)
	if err != nil {
		h.logger.ErrorContext(ctx, "guild config read failed",
			"guild_id", req.Invoker.GuildID, "error", err)
		return replyForError(err)
	}
	leagues, err := h.leagues.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "league list failed", "error", err)
		return replyForError(err)
	}

	var b strings.Builder
	b.WriteString("## Current configuration")
	for _, lg := range leagues {
		fmt.Fprintf(&b, "\n**Standings (%s):** %s", lg.Name, formatChannel(cfg.StandingsChannel(lg.Key)))
	}
	for _, lg := range leagues {
		fmt.Fprintf(&b, "\n**Schedule (%s):** %s", lg.Name, formatChannel(cfg.ScheduleChannel(lg.Key)))
	}
	fmt.Fprintf(&b, "\n**Logs:** %s", formatChannel(cfg.LogsChannelID))
	fmt.Fprintf(&b, "\n**Announcements:** %s", formatChannel(cfg.AnnouncementsChannelID))

	return eph(b.String())
}

func (h *Handler) help(ctx context.Context, _ Request) Reply {
	_, span := startSpan(ctx, "command.Handler.Help")
	defer span.End()

	defs := Definitions()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })

	lines := make([]string, 0, len(defs))
	for _, def := range defs {
		lines = append(lines, fmt.Sprintf("**/%s** — %s", def.Name, def.Description))
	}

	return Reply{
		View: &usecase.MessageView{
			Title:       "📖 Bot Commands",
			Description: strings.Join(lines, "\n"),
			Color:       helpEmbedColor,
		},
		Ephemeral: true,
	}
}

// formatChannel renders a channel binding as a mention, "Not set" when
// empty.
func formatChannel(channelID string) string {
	if channelID == "" {
		return "Not set"
	}
	return "<#" + channelID + ">"
}
