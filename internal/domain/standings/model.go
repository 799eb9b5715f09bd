package standings

// Row is one parsed standings line. Field order is the canonical
// serialization order for fingerprinting.
type Row struct {
	Rank        int    `json:"rank"`
	Team        string `json:"team"`
	WinLoss     string `json:"win_loss"`
	GamesWon    string `json:"games_won"`
	GamesLost   string `json:"games_lost"`
	PointMargin string `json:"point_margin"`
	GamesBehind string `json:"games_behind"`
}

// State tracks what the bot last published for a league.
type State struct {
	LastHash  string
	MessageID string
}
