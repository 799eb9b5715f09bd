package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/dangue13/rlvs-discord-bot/external/leaguerepublic"
	"github.com/dangue13/rlvs-discord-bot/internal/config"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/league"
	notifydiscord "github.com/dangue13/rlvs-discord-bot/internal/infrastructure/notify/discord"
	"github.com/dangue13/rlvs-discord-bot/internal/infrastructure/repository/memory"
	"github.com/dangue13/rlvs-discord-bot/internal/infrastructure/repository/statefile"
	"github.com/dangue13/rlvs-discord-bot/internal/interfaces/command"
	idgen "github.com/dangue13/rlvs-discord-bot/internal/platform/id"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/logging"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/resilience"
	"github.com/dangue13/rlvs-discord-bot/internal/usecase"
)

// Bot owns the Discord connection and the background loops.
type Bot struct {
	cfg       config.Config
	logger    *logging.Logger
	connector *notifydiscord.Connector
	router    *command.Handler
	leagues   []league.League
	standings *usecase.StandingsService
	reminders *usecase.ReminderService
}

// Build wires every component from configuration. Nothing touches the
// network until Run.
func Build(cfg config.Config, logger *logging.Logger) (*Bot, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store, err := statefile.Open(cfg.StatePath)
	if err != nil {
		return nil, fmt.Errorf("open state file: %w", err)
	}

	guildRepo := statefile.NewGuildRepository(store)
	matchRepo := statefile.NewMatchRepository(store)
	stateRepo := statefile.NewStandingsStateRepository(store)

	leagues := leaguesFromConfig(cfg)
	leagueRepo := memory.NewLeagueRepository(leagues)

	source := leaguerepublic.NewClient(leaguerepublic.ClientConfig{
		Timeout: cfg.StandingsTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.StandingsCircuitEnabled,
			FailureThreshold: cfg.StandingsCircuitFailureCount,
			OpenTimeout:      cfg.StandingsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.StandingsCircuitHalfOpenMaxReq,
		},
	})

	connector, err := notifydiscord.New(notifydiscord.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.GuildID,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build discord connector: %w", err)
	}

	policy := usecase.PermissionPolicy{
		Bypass:            cfg.BypassSchedulerPermissions,
		DevUserIDs:        cfg.DevUserIDs,
		CommissionerRoles: cfg.CommissionerRoles,
		GMRoles:           cfg.GMRoles,
		OrgGMRole:         cfg.OrgGMRole,
		GMOrgMap:          cfg.GMOrgMap,
	}

	standingsSvc := usecase.NewStandingsService(
		leagueRepo, stateRepo, guildRepo,
		source, connector,
		cfg.GuildID, cfg.PollWorkers, logger,
	)
	schedulerSvc := usecase.NewSchedulerService(
		matchRepo, leagueRepo, guildRepo,
		idgen.NewTokenGenerator(), policy, cfg.LeagueTZ, logger,
	)
	boardSvc := usecase.NewBoardService(schedulerSvc, leagueRepo, guildRepo, connector, logger)
	reminderSvc := usecase.NewReminderService(matchRepo, leagueRepo, guildRepo, connector, logger)
	teamDir := usecase.NewTeamDirectory(leagueRepo, source, cfg.TeamCacheTTL, logger)

	router := command.NewHandler(standingsSvc, schedulerSvc, boardSvc, teamDir, guildRepo, leagueRepo, logger)

	return &Bot{
		cfg:       cfg,
		logger:    logger,
		connector: connector,
		router:    router,
		leagues:   leagues,
		standings: standingsSvc,
		reminders: reminderSvc,
	}, nil
}

// Run connects to Discord, registers the slash commands, and drives the
// poll and reminder loops until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.connector.Start(ctx, b.router, b.leagues); err != nil {
		return err
	}
	defer func() {
		if err := b.connector.Stop(); err != nil {
			b.logger.Warn("discord close failed", "error", err)
		}
	}()

	b.logger.InfoContext(ctx, "bot started",
		"poll_interval", b.cfg.PollInterval,
		"sweep_interval", b.cfg.ReminderSweepInterval,
		"leagues", len(b.leagues),
	)

	var loops conc.WaitGroup
	loops.Go(func() { b.pollLoop(ctx) })
	loops.Go(func() { b.sweepLoop(ctx) })
	loops.Wait()

	b.logger.Info("bot stopped")
	return nil
}

// pollLoop polls immediately on startup so a fresh deploy publishes without
// waiting out the first interval.
func (b *Bot) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.PollInterval)
	defer ticker.Stop()

	for {
		b.logger.DebugContext(ctx, "standings poll tick")
		b.standings.PollOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (b *Bot) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(b.cfg.ReminderSweepInterval)
	defer ticker.Stop()

	for {
		b.logger.DebugContext(ctx, "reminder sweep tick")
		b.reminders.SweepOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// leaguesFromConfig builds the fixed two-division league set. A division
// without a standings URL stays registered so its command choices resolve,
// but the poll loop skips it.
func leaguesFromConfig(cfg config.Config) []league.League {
	return []league.League{
		{
			Key:          league.KeyChampion,
			Name:         "Champion",
			StandingsURL: cfg.ChampionStandingsURL,
			ChannelID:    cfg.ChampionStandingsChannelID,
		},
		{
			Key:          league.KeyChallenger,
			Name:         "Challenger",
			StandingsURL: cfg.ChallengerStandingsURL,
			ChannelID:    cfg.ChallengerStandingsChannelID,
		},
	}
}
