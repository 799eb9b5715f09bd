package command

// OptionKind selects the platform option type an argument registers as.
type OptionKind int

const (
	OptionString OptionKind = iota
	OptionInteger
	OptionChannel
)

// Option describes one command argument for registration. LeagueChoices
// marks options whose choice list is filled from the configured leagues at
// registration time; TeamAutocomplete marks options served by
// Handler.AutocompleteTeams while the user types.
type Option struct {
	Name             string
	Description      string
	Kind             OptionKind
	Required         bool
	Choices          []string
	LeagueChoices    bool
	TeamAutocomplete bool
}

// Definition describes one slash command. The connector registers these
// with the chat platform; the help command renders them.
type Definition struct {
	Name        string
	Description string
	Options     []Option
}

// Definitions lists every command the bot registers. The returned slice is
// fresh on each call so callers may reorder it.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        "schedule",
			Description: "Schedule a match",
			Options: []Option{
				{Name: "league", Description: "League", Required: true, LeagueChoices: true},
				{Name: "team", Description: "Your team", Required: true, TeamAutocomplete: true},
				{Name: "opponent", Description: "Opposing team", Required: true, TeamAutocomplete: true},
				{Name: "date", Description: "Match date, M/D", Required: true},
				{Name: "time", Description: "Match time, H:MMam/pm", Required: true},
			},
		},
		{
			Name:        "cancelmatch",
			Description: "Cancel a scheduled match by ID",
			Options: []Option{
				{Name: "match_id", Description: "Match ID from the schedule board", Required: true},
			},
		},
		{
			Name:        "matches",
			Description: "List scheduled matches",
			Options: []Option{
				{Name: "league", Description: "Filter by league", LeagueChoices: true},
			},
		},
		{
			Name:        "postmatches",
			Description: "Post scheduled matches for all leagues",
		},
		{
			Name:        "poststandings",
			Description: "Create (or find) the standings message(s) and update them",
		},
		{
			Name:        "forcecheck",
			Description: "Force update standings for all leagues (even if unchanged)",
		},
		{
			Name:        "setchannel",
			Description: "Bind a bot channel for this server",
			Options: []Option{
				{Name: "target", Description: "What the channel is for", Required: true,
					Choices: []string{"standings", "schedule", "logs", "announcements"}},
				{Name: "channel", Description: "Channel to use", Kind: OptionChannel, Required: true},
				{Name: "league", Description: "League, for standings and schedule targets", LeagueChoices: true},
			},
		},
		{
			Name:        "setweek",
			Description: "Set the current week for a league",
			Options: []Option{
				{Name: "league", Description: "League", Required: true, LeagueChoices: true},
				{Name: "week", Description: "Week number", Kind: OptionInteger, Required: true},
			},
		},
		{
			Name:        "advanceweek",
			Description: "Advance a league to the next week",
			Options: []Option{
				{Name: "league", Description: "League", Required: true, LeagueChoices: true},
			},
		},
		{
			Name:        "status",
			Description: "Show current bot channel configuration",
		},
		{
			Name:        "help",
			Description: "List all bot commands",
		},
	}
}
