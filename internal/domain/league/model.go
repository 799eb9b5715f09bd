package league

// Storage keys for the two divisions the bot tracks.
const (
	KeyChampion   = "champion"
	KeyChallenger = "challenger"
)

// League is one standings source the bot watches.
type League struct {
	Key          string
	Name         string
	StandingsURL string
	ChannelID    string
}

// Active reports whether the league participates in polling and scheduling.
// A league parked without a source URL stays visible to commands but is
// skipped by the poll loop. A missing fallback channel does not deactivate
// it: a guild override can still route its messages.
func (l League) Active() bool {
	return l.StandingsURL != ""
}
