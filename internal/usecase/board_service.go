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
	"github.com/valyala/bytebufferpool"
)

const (
	scheduleEmbedColor    = 0x2ECC71
	emptyBoardPlaceholder = "_No matches scheduled._"
)

// BoardService maintains one schedule-board message per (guild, league).
type BoardService struct {
	scheduler *SchedulerService
	leagues   league.Repository
	guilds    guild.Repository
	messenger Messenger
	logger    *logging.Logger
	now       func() time.Time
}

func NewBoardService(
	scheduler *SchedulerService,
	leagues league.Repository,
	guilds guild.Repository,
	messenger Messenger,
	logger *logging.Logger,
) *BoardService {
	if logger == nil {
		logger = logging.Default()
	}

	return &BoardService{
		scheduler: scheduler,
		leagues:   leagues,
		guilds:    guilds,
		messenger: messenger,
		logger:    logger,
		now:       time.Now,
	}
}

// Refresh rebuilds a league's board message, editing the recorded message
// when possible and sending a fresh one otherwise.
func (s *BoardService) Refresh(ctx context.Context, guildID, leagueValue string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.Refresh")
	defer span.End()

	lg, ok, err := s.leagues.GetByKeyOrName(ctx, leagueValue)
	if err != nil {
		return fmt.Errorf("resolve league: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: unknown league '%s'", ErrInvalidInput, strings.TrimSpace(leagueValue))
	}

	cfg, err := s.guilds.Get(ctx, guildID)
	if err != nil {
		return fmt.Errorf("get guild config: %w", err)
	}

	channelID := cfg.ScheduleChannel(lg.Key)
	if channelID == "" {
		channelID = lg.ChannelID
	}
	if channelID == "" {
		return fmt.Errorf("%w: %s schedule channel not configured yet", ErrUnconfigured, lg.Name)
	}

	matches, err := s.scheduler.ListForBoard(ctx, guildID, lg.Key)
	if err != nil {
		return err
	}

	view := s.renderBoard(lg, matches)

	if messageID := cfg.ScheduleMessageID(lg.Key); messageID != "" {
		editErr := s.messenger.EditView(ctx, channelID, messageID, view)
		if editErr == nil {
			return nil
		}
		s.logger.WarnContext(ctx, "schedule board edit failed, sending new",
			"league", lg.Key, "message_id", messageID, "error", editErr)
	}

	messageID, err := s.messenger.SendView(ctx, channelID, view)
	if err != nil {
		return fmt.Errorf("send schedule board: %w", err)
	}
	if err := s.guilds.SetScheduleMessageID(ctx, guildID, lg.Key, messageID); err != nil {
		return fmt.Errorf("record schedule board id: %w", err)
	}

	return nil
}

// BoardResult reports one league's outcome from a bulk board refresh.
type BoardResult struct {
	League league.League
	Err    error
}

// RefreshAll rebuilds the boards of every active league for the guild.
func (s *BoardService) RefreshAll(ctx context.Context, guildID string) ([]BoardResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BoardService.RefreshAll")
	defer span.End()

	leagues, err := s.leagues.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active leagues: %w", err)
	}

	results := make([]BoardResult, 0, len(leagues))
	for _, lg := range leagues {
		results = append(results, BoardResult{League: lg, Err: s.Refresh(ctx, guildID, lg.Key)})
	}

	return results, nil
}

func (s *BoardService) renderBoard(lg league.League, matches []match.Match) MessageView {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for i, m := range matches {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(FormatMatchLine(m))
	}

	description := buf.String()
	if description == "" {
		description = emptyBoardPlaceholder
	}

	return MessageView{
		Title:       fmt.Sprintf("📅 %s Schedule", lg.Name),
		Description: description,
		Color:       scheduleEmbedColor,
		Timestamp:   s.now().UTC(),
	}
}

// FormatMatchLine renders one schedule line the way boards and match lists
// show it. Records without a parseable time keep their id visible so they
// can still be cancelled.
func FormatMatchLine(m match.Match) string {
	if m.ScheduledAt.IsZero() {
		return fmt.Sprintf("• **%s** vs **%s** — time unknown (`%s`)", m.Team, m.Opponent, m.ID)
	}
	ts := m.ScheduledAt.Unix()
	return fmt.Sprintf("• **%s** vs **%s** — <t:%d:F> (`%s`)", m.Team, m.Opponent, ts, m.ID)
}
