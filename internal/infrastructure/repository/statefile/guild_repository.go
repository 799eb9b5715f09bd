package statefile

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/guild"
)

type GuildRepository struct {
	store *Store
}

func NewGuildRepository(store *Store) *GuildRepository {
	return &GuildRepository{store: store}
}

func (r *GuildRepository) Get(_ context.Context, guildID string) (guild.Config, error) {
	var cfg guild.Config
	r.store.view(func(doc *document) {
		cfg = toGuildConfig(guildID, doc.Guilds[guildID])
	})
	return cfg, nil
}

func (r *GuildRepository) SetChannel(_ context.Context, guildID string, purpose guild.ChannelPurpose, leagueKey, channelID string) error {
	return r.store.update(func(doc *document) error {
		g := doc.guild(guildID)
		switch purpose {
		case guild.PurposeStandings:
			g.StandingsChannels[leagueKey] = channelID
		case guild.PurposeSchedule:
			g.ScheduleChannels[leagueKey] = channelID
		case guild.PurposeLogs:
			g.LogsChannelID = channelID
		case guild.PurposeAnnouncements:
			g.AnnouncementsChannelID = channelID
		default:
			return crerr.Newf("unknown channel purpose %q", purpose)
		}
		return nil
	})
}

func (r *GuildRepository) SetScheduleMessageID(_ context.Context, guildID, leagueKey, messageID string) error {
	return r.store.update(func(doc *document) error {
		doc.guild(guildID).ScheduleMessageIDs[leagueKey] = messageID
		return nil
	})
}

func (r *GuildRepository) SetWeek(_ context.Context, guildID, leagueKey string, week int) error {
	return r.store.update(func(doc *document) error {
		doc.guild(guildID).CurrentWeek[leagueKey] = week
		return nil
	})
}

func (r *GuildRepository) SetSchedulerEnabled(_ context.Context, guildID string, enabled bool) error {
	return r.store.update(func(doc *document) error {
		value := enabled
		doc.guild(guildID).SchedulerEnabled = &value
		return nil
	})
}

func toGuildConfig(guildID string, g *guildDocument) guild.Config {
	cfg := guild.Config{
		GuildID:            guildID,
		StandingsChannels:  make(map[string]string),
		ScheduleChannels:   make(map[string]string),
		ScheduleMessageIDs: make(map[string]string),
		CurrentWeek:        make(map[string]int),
		SchedulerEnabled:   true,
	}
	if g == nil {
		return cfg
	}

	for k, v := range g.StandingsChannels {
		cfg.StandingsChannels[k] = v
	}
	for k, v := range g.ScheduleChannels {
		cfg.ScheduleChannels[k] = v
	}
	for k, v := range g.ScheduleMessageIDs {
		cfg.ScheduleMessageIDs[k] = v
	}
	for k, v := range g.CurrentWeek {
		cfg.CurrentWeek[k] = v
	}
	cfg.LogsChannelID = g.LogsChannelID
	cfg.AnnouncementsChannelID = g.AnnouncementsChannelID
	if g.SchedulerEnabled != nil {
		cfg.SchedulerEnabled = *g.SchedulerEnabled
	}

	return cfg
}
