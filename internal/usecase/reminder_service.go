package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/guild"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/league"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/match"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/logging"
)

// reminderThresholds fire longest lead first so a freshly scheduled match
// inside both windows announces 24h before 1h within one sweep.
var reminderThresholds = []struct {
	Label string
	Lead  time.Duration
}{
	{Label: match.Reminder24h, Lead: 24 * time.Hour},
	{Label: match.Reminder1h, Lead: time.Hour},
}

// ReminderService announces upcoming matches. Each threshold fires at most
// once per match; a failed send leaves the threshold unset for the next
// sweep.
type ReminderService struct {
	matches   match.Repository
	leagues   league.Repository
	guilds    guild.Repository
	messenger Messenger
	logger    *logging.Logger
	now       func() time.Time
}

func NewReminderService(
	matches match.Repository,
	leagues league.Repository,
	guilds guild.Repository,
	messenger Messenger,
	logger *logging.Logger,
) *ReminderService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ReminderService{
		matches:   matches,
		leagues:   leagues,
		guilds:    guilds,
		messenger: messenger,
		logger:    logger,
		now:       time.Now,
	}
}

// SweepOnce walks every stored match and sends the reminders that are due.
// Delivered thresholds are marked in one batched write at the end.
func (s *ReminderService) SweepOnce(ctx context.Context) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReminderService.SweepOnce")
	defer span.End()

	matches, err := s.matches.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "list matches for reminder sweep", "error", err)
		return
	}
	if len(matches) == 0 {
		return
	}

	now := s.now()
	var delivered []match.ReminderMark

	for _, m := range matches {
		if m.ScheduledAt.IsZero() || !m.ScheduledAt.After(now) {
			continue
		}

		channelID := s.resolveReminderChannel(ctx, m)
		if channelID == "" {
			s.logger.DebugContext(ctx, "no reminder channel for match",
				"match_id", m.ID, "league", m.LeagueKey, "guild_id", m.GuildID)
			continue
		}

		for _, threshold := range reminderThresholds {
			if m.ReminderSent(threshold.Label) {
				continue
			}
			if now.Before(m.ScheduledAt.Add(-threshold.Lead)) {
				continue
			}

			content := s.renderReminder(ctx, m, threshold.Label)
			if _, err := s.messenger.SendText(ctx, channelID, content); err != nil {
				s.logger.WarnContext(ctx, "reminder send failed",
					"match_id", m.ID, "threshold", threshold.Label, "error", err)
				continue
			}

			delivered = append(delivered, match.ReminderMark{MatchID: m.ID, Label: threshold.Label})
		}
	}

	if len(delivered) == 0 {
		return
	}
	if err := s.matches.MarkReminders(ctx, delivered); err != nil {
		s.logger.ErrorContext(ctx, "mark delivered reminders", "count", len(delivered), "error", err)
	}
}

// resolveReminderChannel prefers the guild's schedule channel for the match's
// league, then the league fallback. Empty means skip.
func (s *ReminderService) resolveReminderChannel(ctx context.Context, m match.Match) string {
	if m.GuildID != "" {
		cfg, err := s.guilds.Get(ctx, m.GuildID)
		if err != nil {
			s.logger.WarnContext(ctx, "get guild config for reminder", "guild_id", m.GuildID, "error", err)
			return ""
		}
		if channelID := cfg.ScheduleChannel(strings.ToLower(m.LeagueKey)); channelID != "" {
			return channelID
		}
	}

	lg, ok, err := s.leagues.GetByKeyOrName(ctx, m.LeagueKey)
	if err != nil || !ok {
		return ""
	}
	return lg.ChannelID
}

func (s *ReminderService) renderReminder(ctx context.Context, m match.Match, label string) string {
	team := strings.TrimSpace(m.Team)
	opponent := strings.TrimSpace(m.Opponent)

	teamMention := s.mentionOrName(ctx, m.GuildID, team)
	opponentMention := s.mentionOrName(ctx, m.GuildID, opponent)
	ts := m.ScheduledAt.Unix()

	return fmt.Sprintf("⏰ **Match Reminder (%s)** — `%s` — ID `%s`\n%s vs %s\nWhen: <t:%d:F> (<t:%d:R>)",
		label, m.LeagueKey, m.ID, teamMention, opponentMention, ts, ts)
}

// mentionOrName falls back to the raw team name when no role matches it.
func (s *ReminderService) mentionOrName(ctx context.Context, guildID, name string) string {
	if name == "" || guildID == "" {
		return name
	}
	if mention, ok := s.messenger.ResolveRoleMention(ctx, guildID, name); ok {
		return mention
	}
	return name
}
