package command

import (
	"context"
	"fmt"
	"strings"
)

const standingsUnconfiguredHint = "No standings channels configured yet.\n" +
	"Set these in `.env` (use real integer channel IDs):\n" +
	"- CHAMPION_STANDINGS_CHANNEL_ID\n" +
	"- CHALLENGER_STANDINGS_CHANNEL_ID\n"

func (h *Handler) postStandings(ctx context.Context, req Request) Reply {
	ctx, span := startSpan(ctx, "command.Handler.PostStandings")
	defer span.End()

	results, err := h.standings.RefreshAll(ctx, req.Invoker.GuildID)
	if err != nil {
		h.logger.ErrorContext(ctx, "standings refresh failed",
			"guild_id", req.Invoker.GuildID, "error", err)
		return replyForError(err)
	}
	if len(results) == 0 {
		return eph(standingsUnconfiguredHint)
	}

	lines := make([]string, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			h.logger.WarnContext(ctx, "standings refresh failed",
				"league", res.League.Key, "error", res.Err)
			lines = append(lines, fmt.Sprintf("❌ %s: %v", res.League.Name, res.Err))
			continue
		}
		lines = append(lines, fmt.Sprintf("✅ %s: updated (msg %s)", res.League.Name, res.MessageID))
	}

	return eph(strings.Join(lines, "\n"))
}

func (h *Handler) forceCheck(ctx context.Context, req Request) Reply {
	ctx, span := startSpan(ctx, "command.Handler.ForceCheck")
	defer span.End()

	results, err := h.standings.RefreshAll(ctx, req.Invoker.GuildID)
	if err != nil {
		h.logger.ErrorContext(ctx, "forced standings refresh failed",
			"guild_id", req.Invoker.GuildID, "error", err)
		return replyForError(err)
	}
	if len(results) == 0 {
		return eph("No standings channels configured yet (Champion/Challenger channel IDs are still standby).")
	}

	lines := make([]string, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			h.logger.WarnContext(ctx, "forced standings refresh failed",
				"league", res.League.Key, "error", res.Err)
			lines = append(lines, fmt.Sprintf("❌ %s: %v", res.League.Name, res.Err))
			continue
		}
		lines = append(lines, fmt.Sprintf("✅ %s: forced update complete", res.League.Name))
	}

	return eph(strings.Join(lines, "\n"))
}
