package league

import "strings"

// orgAffiliations maps an org key to the rosters it fields per division:
// champion team first, challenger team second.
var orgAffiliations = map[string][2]string{
	"angels":      {"Angels", "Saints"},
	"devils":      {"Devils", "Demons"},
	"dragons":     {"Dragons", "Dracos"},
	"reapers":     {"Reapers", "Ghouls"},
	"lumberjacks": {"Lumberjacks", "Miners"},
	"tigers":      {"Tigers", "Panthers"},
	"ninjas":      {"Ninjas", "Samurais"},
	"orcas":       {"Orcas", "Sharks"},
	"rockets":     {"Rockets", "Astronauts"},
	"spartans":    {"Spartans", "Warriors"},
}

// TeamForOrg resolves the roster an org fields in the given division.
func TeamForOrg(org, leagueKey string) (string, bool) {
	teams, ok := orgAffiliations[strings.ToLower(strings.TrimSpace(org))]
	if !ok {
		return "", false
	}

	switch leagueKey {
	case KeyChampion:
		return teams[0], true
	case KeyChallenger:
		return teams[1], true
	default:
		return "", false
	}
}
