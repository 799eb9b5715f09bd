package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dangue13/rlvs-discord-bot/internal/usecase"
)

// matchListLimit keeps /matches replies under the platform's message cap.
const matchListLimit = 20

func (h *Handler) schedule(ctx context.Context, req Request) Reply {
	ctx, span := startSpan(ctx, "command.Handler.Schedule")
	defer span.End()

	input := usecase.ScheduleInput{
		League:   req.Option("league"),
		Team:     req.Option("team"),
		Opponent: req.Option("opponent"),
		Date:     req.Option("date"),
		Time:     req.Option("time"),
	}

	rec, err := h.scheduler.Schedule(ctx, req.Invoker, input)
	if err != nil {
		h.logger.WarnContext(ctx, "schedule rejected",
			"guild_id", req.Invoker.GuildID, "user_id", req.Invoker.UserID, "error", err)
		return replyForError(err)
	}

	h.refreshBoard(ctx, req.Invoker.GuildID, rec.LeagueKey)

	return eph(fmt.Sprintf("✅ **%s** vs **%s** scheduled for <t:%d:F>",
		rec.Team, rec.Opponent, rec.ScheduledAt.Unix()))
}

func (h *Handler) cancelMatch(ctx context.Context, req Request) Reply {
	ctx, span := startSpan(ctx, "command.Handler.CancelMatch")
	defer span.End()

	removed, err := h.scheduler.Cancel(ctx, req.Option("match_id"))
	if err != nil {
		h.logger.WarnContext(ctx, "cancel rejected",
			"guild_id", req.Invoker.GuildID, "match_id", req.Option("match_id"), "error", err)
		return replyForError(err)
	}

	h.refreshBoard(ctx, req.Invoker.GuildID, removed.LeagueKey)

	return eph(fmt.Sprintf("🗑️ Match `%s` cancelled.", removed.ID))
}

func (h *Handler) matches(ctx context.Context, req Request) Reply {
	ctx, span := startSpan(ctx, "command.Handler.Matches")
	defer span.End()

	items, err := h.scheduler.List(ctx, req.Invoker.GuildID, req.Option("league"))
	if err != nil {
		h.logger.WarnContext(ctx, "match list failed",
			"guild_id", req.Invoker.GuildID, "error", err)
		return replyForError(err)
	}
	if len(items) == 0 {
		return eph("No matches scheduled.")
	}

	lines := make([]string, 0, len(items)+1)
	for i, m := range items {
		if i == matchListLimit {
			lines = append(lines, fmt.Sprintf("…and %d more.", len(items)-matchListLimit))
			break
		}
		lines = append(lines, usecase.FormatMatchLine(m))
	}

	return eph(strings.Join(lines, "\n"))
}

func (h *Handler) postMatches(ctx context.Context, req Request) Reply {
	ctx, span := startSpan(ctx, "command.Handler.PostMatches")
	defer span.End()

	results, err := h.boards.RefreshAll(ctx, req.Invoker.GuildID)
	if err != nil {
		h.logger.ErrorContext(ctx, "board refresh failed",
			"guild_id", req.Invoker.GuildID, "error", err)
		return replyForError(err)
	}

	for _, res := range results {
		if res.Err == nil {
			continue
		}
		// A league without a schedule channel just has no board yet.
		if errors.Is(res.Err, usecase.ErrUnconfigured) {
			h.logger.DebugContext(ctx, "schedule board skipped", "league", res.League.Key)
			continue
		}
		h.logger.WarnContext(ctx, "schedule board refresh failed",
			"league", res.League.Key, "error", res.Err)
	}

	return eph("✅ Match boards posted/updated.")
}

// refreshBoard updates the league's schedule board after a roster mutation.
// Board problems never fail the command; the match list is already updated.
func (h *Handler) refreshBoard(ctx context.Context, guildID, leagueKey string) {
	err := h.boards.Refresh(ctx, guildID, leagueKey)
	switch {
	case err == nil:
	case errors.Is(err, usecase.ErrUnconfigured):
		h.logger.DebugContext(ctx, "schedule board skipped", "league", leagueKey)
	default:
		h.logger.WarnContext(ctx, "schedule board refresh failed",
			"league", leagueKey, "error", err)
	}
}
