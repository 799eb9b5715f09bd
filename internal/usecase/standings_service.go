package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/guild"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/league"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/standings"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/logging"
	"github.com/panjf2000/ants/v2"
	"github.com/valyala/bytebufferpool"
)

const (
	standingsTopN       = 12
	standingsEmbedColor = 0x3498DB
	standingsFooter     = "Velocity Series • LeagueRepublic"
)

// StandingsService polls standings pages and keeps one pinned message per
// league up to date.
type StandingsService struct {
	leagues     league.Repository
	states      standings.StateRepository
	guilds      guild.Repository
	source      StandingsSource
	messenger   Messenger
	logger      *logging.Logger
	homeGuildID string
	workers     int
	now         func() time.Time
}

func NewStandingsService(
	leagues league.Repository,
	states standings.StateRepository,
	guilds guild.Repository,
	source StandingsSource,
	messenger Messenger,
	homeGuildID string,
	workers int,
	logger *logging.Logger,
) *StandingsService {
	if logger == nil {
		logger = logging.Default()
	}
	if workers < 1 {
		workers = 1
	}

	return &StandingsService{
		leagues:     leagues,
		states:      states,
		guilds:      guilds,
		source:      source,
		messenger:   messenger,
		logger:      logger,
		homeGuildID: homeGuildID,
		workers:     workers,
		now:         time.Now,
	}
}

// PollOnce fetches every active league and republishes the ones whose
// standings content changed since the last publish. Per-league failures are
// logged and do not stop the sweep.
func (s *StandingsService) PollOnce(ctx context.Context) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.PollOnce")
	defer span.End()

	leagues, err := s.leagues.ListActive(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "list active leagues", "error", err)
		return
	}

	for _, lg := range leagues {
		if err := s.pollLeague(ctx, lg); err != nil {
			s.logger.WarnContext(ctx, "standings poll failed", "league", lg.Key, "error", err)
		}
	}
}

func (s *StandingsService) pollLeague(ctx context.Context, lg league.League) error {
	rows, err := s.source.FetchStandings(ctx, lg.StandingsURL)
	if err != nil {
		return err
	}

	hash, view, err := s.renderStandings(rows, lg)
	if err != nil {
		return err
	}

	state, err := s.states.Get(ctx, lg.Key)
	if err != nil {
		return fmt.Errorf("get standings state: %w", err)
	}
	if state.LastHash == hash {
		return nil
	}

	// The new hash is recorded before the publish attempt.
	if err := s.states.SetLastHash(ctx, lg.Key, hash); err != nil {
		return fmt.Errorf("save standings hash: %w", err)
	}

	if _, err := s.upsertMessage(ctx, s.homeGuildID, lg, view); err != nil {
		return err
	}

	return nil
}

// RefreshResult reports one league's outcome from a manual refresh.
type RefreshResult struct {
	League    league.League
	MessageID string
	Err       error
}

// RefreshAll republishes every active league regardless of the stored
// fingerprint. Pages are fetched and rendered concurrently; persistence and
// publishing run sequentially in league order.
func (s *StandingsService) RefreshAll(ctx context.Context, guildID string) ([]RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingsService.RefreshAll")
	defer span.End()

	leagues, err := s.leagues.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active leagues: %w", err)
	}
	if len(leagues) == 0 {
		return nil, nil
	}

	type rendered struct {
		hash string
		view MessageView
		err  error
	}
	items := make([]rendered, len(leagues))

	workerCount := s.workers
	if workerCount > len(leagues) {
		workerCount = len(leagues)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for i, lg := range leagues {
		i, lg := i, lg
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			rows, fetchErr := s.source.FetchStandings(ctx, lg.StandingsURL)
			if fetchErr != nil {
				items[i] = rendered{err: fetchErr}
				return
			}
			hash, view, renderErr := s.renderStandings(rows, lg)
			items[i] = rendered{hash: hash, view: view, err: renderErr}
		}); err != nil {
			workers.Done()
			return nil, fmt.Errorf("submit refresh task: %w", err)
		}
	}
	workers.Wait()

	results := make([]RefreshResult, 0, len(leagues))
	for i, lg := range leagues {
		item := items[i]
		if item.err != nil {
			results = append(results, RefreshResult{League: lg, Err: item.err})
			continue
		}
		if err := s.states.SetLastHash(ctx, lg.Key, item.hash); err != nil {
			results = append(results, RefreshResult{League: lg, Err: fmt.Errorf("save standings hash: %w", err)})
			continue
		}
		messageID, err := s.upsertMessage(ctx, guildID, lg, item.view)
		if err != nil {
			results = append(results, RefreshResult{League: lg, Err: err})
			continue
		}
		results = append(results, RefreshResult{League: lg, MessageID: messageID})
	}

	return results, nil
}

// upsertMessage edits the recorded standings message when one exists,
// otherwise sends a fresh message and records its id.
func (s *StandingsService) upsertMessage(ctx context.Context, guildID string, lg league.League, view MessageView) (string, error) {
	channelID, err := s.resolveStandingsChannel(ctx, guildID, lg)
	if err != nil {
		return "", err
	}

	state, err := s.states.Get(ctx, lg.Key)
	if err != nil {
		return "", fmt.Errorf("get standings state: %w", err)
	}

	if state.MessageID != "" {
		editErr := s.messenger.EditView(ctx, channelID, state.MessageID, view)
		if editErr == nil {
			return state.MessageID, nil
		}
		s.logger.WarnContext(ctx, "standings message edit failed, sending new",
			"league", lg.Key, "message_id", state.MessageID, "error", editErr)
	}

	messageID, err := s.messenger.SendView(ctx, channelID, view)
	if err != nil {
		return "", fmt.Errorf("send standings message: %w", err)
	}
	if err := s.states.SetMessageID(ctx, lg.Key, messageID); err != nil {
		return "", fmt.Errorf("record standings message id: %w", err)
	}

	return messageID, nil
}

// resolveStandingsChannel prefers the guild's configured channel over the
// league's fallback.
func (s *StandingsService) resolveStandingsChannel(ctx context.Context, guildID string, lg league.League) (string, error) {
	if guildID == "" {
		guildID = s.homeGuildID
	}
	if guildID != "" {
		cfg, err := s.guilds.Get(ctx, guildID)
		if err != nil {
			return "", fmt.Errorf("get guild config: %w", err)
		}
		if channelID := cfg.StandingsChannel(lg.Key); channelID != "" {
			return channelID, nil
		}
	}
	if lg.ChannelID != "" {
		return lg.ChannelID, nil
	}

	return "", fmt.Errorf("%w: %s standings channel not configured yet", ErrUnconfigured, lg.Name)
}

func (s *StandingsService) renderStandings(rows []standings.Row, lg league.League) (string, MessageView, error) {
	hash, err := fingerprintRows(rows)
	if err != nil {
		return "", MessageView{}, err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for i, row := range rows {
		if i >= standingsTopN {
			break
		}
		if i > 0 {
			buf.WriteString("\n\n")
		}
		wl := strings.TrimSpace(row.WinLoss)
		if wl == "" {
			wl = "—"
		}
		gb := strings.TrimSpace(row.GamesBehind)
		if gb == "—" || gb == "" {
			gb = "-"
		}
		fmt.Fprintf(buf, "**%d. %s**  •  `%s`  •  `GB %s`", row.Rank, row.Team, wl, gb)
	}

	description := buf.String()
	if description == "" {
		description = "—"
	}

	return hash, MessageView{
		Title:       fmt.Sprintf("🏆 %s Standings", lg.Name),
		Description: description,
		URL:         lg.StandingsURL,
		Color:       standingsEmbedColor,
		Footer:      standingsFooter,
		Timestamp:   s.now().UTC(),
	}, nil
}

// fingerprintRows hashes the full parsed table, not just the rendered top
// rows: any cell change counts as new content.
func fingerprintRows(rows []standings.Row) (string, error) {
	raw, err := sonic.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode standings rows: %w", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}
