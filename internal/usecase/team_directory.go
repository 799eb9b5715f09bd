package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/league"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/cache"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/logging"
)

// Discord caps autocomplete responses at 25 choices.
const teamSuggestionLimit = 25

const defaultTeamCacheTTL = 10 * time.Minute

// TeamDirectory serves team names per league, sourced from the latest parsed
// standings and cached briefly.
type TeamDirectory struct {
	leagues league.Repository
	source  StandingsSource
	cache   *cache.Store[[]string]
	logger  *logging.Logger
}

func NewTeamDirectory(leagues league.Repository, source StandingsSource, ttl time.Duration, logger *logging.Logger) *TeamDirectory {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = defaultTeamCacheTTL
	}

	return &TeamDirectory{
		leagues: leagues,
		source:  source,
		cache:   cache.NewStore[[]string](ttl),
		logger:  logger,
	}
}

// TeamNames returns the league's team names in standings order, deduplicated
// case-insensitively with the first spelling kept.
func (d *TeamDirectory) TeamNames(ctx context.Context, leagueValue string) ([]string, error) {
	lg, ok, err := d.leagues.GetByKeyOrName(ctx, leagueValue)
	if err != nil {
		return nil, fmt.Errorf("resolve league: %w", err)
	}
	if !ok || !lg.Active() {
		return nil, fmt.Errorf("%w: unknown league '%s'", ErrInvalidInput, strings.TrimSpace(leagueValue))
	}

	key := "teams:" + strings.ToLower(lg.Key)
	return d.cache.GetOrLoad(ctx, key, func(ctx context.Context) ([]string, error) {
		rows, err := d.source.FetchStandings(ctx, lg.StandingsURL)
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(rows))
		seen := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			name := strings.TrimSpace(row.Team)
			if name == "" {
				continue
			}
			lower := strings.ToLower(name)
			if _, dup := seen[lower]; dup {
				continue
			}
			seen[lower] = struct{}{}
			names = append(names, name)
		}
		return names, nil
	})
}

// Suggest filters team names for autocomplete. Prefix matches rank before
// substring matches; an empty query returns the leaders.
func (d *TeamDirectory) Suggest(ctx context.Context, leagueValue, query string) ([]string, error) {
	names, err := d.TeamNames(ctx, leagueValue)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return capSuggestions(names), nil
	}

	prefix := make([]string, 0, len(names))
	substring := make([]string, 0, len(names))
	for _, name := range names {
		lower := strings.ToLower(name)
		switch {
		case strings.HasPrefix(lower, query):
			prefix = append(prefix, name)
		case strings.Contains(lower, query):
			substring = append(substring, name)
		}
	}

	return capSuggestions(append(prefix, substring...)), nil
}

func capSuggestions(names []string) []string {
	if len(names) > teamSuggestionLimit {
		return names[:teamSuggestionLimit]
	}
	return names
}
