package guild

import "context"

// Repository persists per-guild configuration. Unknown guilds read as the
// default Config with the scheduler enabled.
type Repository interface {
	Get(ctx context.Context, guildID string) (Config, error)
	SetChannel(ctx context.Context, guildID string, purpose ChannelPurpose, leagueKey, channelID string) error
	SetScheduleMessageID(ctx context.Context, guildID, leagueKey, messageID string) error
	SetWeek(ctx context.Context, guildID, leagueKey string, week int) error
	SetSchedulerEnabled(ctx context.Context, guildID string, enabled bool) error
}
