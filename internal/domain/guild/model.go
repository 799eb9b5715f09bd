package guild

// ChannelPurpose identifies which destination a channel binding configures.
type ChannelPurpose string

const (
	PurposeStandings     ChannelPurpose = "standings"
	PurposeSchedule      ChannelPurpose = "schedule"
	PurposeLogs          ChannelPurpose = "logs"
	PurposeAnnouncements ChannelPurpose = "announcements"
)

// Config is the per-guild bot configuration. Standings and schedule bindings
// are per league; logs and announcements are guild-wide.
type Config struct {
	GuildID                string
	StandingsChannels      map[string]string
	ScheduleChannels       map[string]string
	ScheduleMessageIDs     map[string]string
	CurrentWeek            map[string]int
	LogsChannelID          string
	AnnouncementsChannelID string
	SchedulerEnabled       bool
}

// StandingsChannel returns the per-league override, empty when unset.
func (c Config) StandingsChannel(leagueKey string) string {
	return c.StandingsChannels[leagueKey]
}

// ScheduleChannel returns the per-league override, empty when unset.
func (c Config) ScheduleChannel(leagueKey string) string {
	return c.ScheduleChannels[leagueKey]
}

// ScheduleMessageID returns the recorded board message id, empty when none.
func (c Config) ScheduleMessageID(leagueKey string) string {
	return c.ScheduleMessageIDs[leagueKey]
}

// Week returns the current week counter for a league. Weeks start at 1.
func (c Config) Week(leagueKey string) int {
	if w, ok := c.CurrentWeek[leagueKey]; ok && w >= 1 {
		return w
	}

	return 1
}
