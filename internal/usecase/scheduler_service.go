package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/guild"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/league"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/match"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/id"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/logging"
	"github.com/go-playground/validator/v10"
)

var (
	matchDatePattern = regexp.MustCompile(`^\s*(\d{1,2})/(\d{1,2})\s*$`)
	matchTimePattern = regexp.MustCompile(`(?i)^\s*(\d{1,2}):(\d{2})\s*([ap]m)\s*$`)
)

const invalidDateTimeMessage = "Invalid date or time format. Use M/D and H:MMam/pm (e.g. 1/14 and 9:30pm)."

// PermissionPolicy decides who may schedule matches and which roster an org
// GM is allowed to schedule for.
type PermissionPolicy struct {
	Bypass            bool
	DevUserIDs        map[string]struct{}
	CommissionerRoles []string
	GMRoles           []string
	OrgGMRole         string
	// GMOrgMap maps a user id to the org whose roster they manage.
	GMOrgMap map[string]string
}

// CanSchedule reports whether the invoker may use the scheduler at all.
func (p PermissionPolicy) CanSchedule(inv Invoker) bool {
	if p.Bypass {
		return true
	}
	if _, ok := p.DevUserIDs[inv.UserID]; ok {
		return true
	}
	if inv.HasAnyRole(p.CommissionerRoles) || inv.HasAnyRole(p.GMRoles) {
		return true
	}
	return inv.HasRole(p.OrgGMRole)
}

// orgRestriction returns the org whose roster the invoker is limited to.
// Developers, commissioners, the bypass flag, and unmapped users schedule
// without restriction.
func (p PermissionPolicy) orgRestriction(inv Invoker) (string, bool) {
	if p.Bypass {
		return "", false
	}
	if _, ok := p.DevUserIDs[inv.UserID]; ok {
		return "", false
	}
	if inv.HasAnyRole(p.CommissionerRoles) {
		return "", false
	}
	org, ok := p.GMOrgMap[inv.UserID]
	if !ok || strings.TrimSpace(org) == "" {
		return "", false
	}
	return strings.ToLower(strings.TrimSpace(org)), true
}

// ScheduleInput carries the slash-command arguments for a new match.
type ScheduleInput struct {
	League   string `validate:"required"`
	Team     string `validate:"required"`
	Opponent string `validate:"required"`
	Date     string `validate:"required"`
	Time     string `validate:"required"`
}

// SchedulerService manages the shared scheduled-match list.
type SchedulerService struct {
	matches   match.Repository
	leagues   league.Repository
	guilds    guild.Repository
	ids       id.Generator
	policy    PermissionPolicy
	loc       *time.Location
	logger    *logging.Logger
	validator *validator.Validate
	now       func() time.Time
}

func NewSchedulerService(
	matches match.Repository,
	leagues league.Repository,
	guilds guild.Repository,
	ids id.Generator,
	policy PermissionPolicy,
	loc *time.Location,
	logger *logging.Logger,
) *SchedulerService {
	if logger == nil {
		logger = logging.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	if ids == nil {
		ids = id.NewTokenGenerator()
	}

	return &SchedulerService{
		matches:   matches,
		leagues:   leagues,
		guilds:    guilds,
		ids:       ids,
		policy:    policy,
		loc:       loc,
		logger:    logger,
		validator: validator.New(),
		now:       time.Now,
	}
}

// Schedule validates, authorizes, and stores a new match, returning the
// stored record.
func (s *SchedulerService) Schedule(ctx context.Context, inv Invoker, input ScheduleInput) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.Schedule")
	defer span.End()

	input.League = strings.TrimSpace(input.League)
	input.Team = strings.TrimSpace(input.Team)
	input.Opponent = strings.TrimSpace(input.Opponent)

	if err := s.validator.StructCtx(ctx, input); err != nil {
		return match.Match{}, fmt.Errorf("%w: validation failed: %v", ErrInvalidInput, err)
	}

	if !s.policy.CanSchedule(inv) {
		return match.Match{}, fmt.Errorf("%w: scheduler access denied", ErrUnauthorized)
	}

	lg, err := s.resolveLeague(ctx, input.League)
	if err != nil {
		return match.Match{}, err
	}

	cfg, err := s.guilds.Get(ctx, inv.GuildID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get guild config: %w", err)
	}
	if !cfg.SchedulerEnabled {
		return match.Match{}, fmt.Errorf("%w: the scheduler is disabled for this server", ErrUnauthorized)
	}

	if org, restricted := s.policy.orgRestriction(inv); restricted {
		roster, known := league.TeamForOrg(org, lg.Key)
		if known && !strings.EqualFold(strings.TrimSpace(input.Team), roster) {
			return match.Match{}, fmt.Errorf("%w: you can only schedule matches for **%s** in %s", ErrUnauthorized, roster, lg.Name)
		}
	}

	when, err := s.parseMatchTime(input.Date, input.Time)
	if err != nil {
		return match.Match{}, err
	}

	matchID, err := s.newMatchID(ctx)
	if err != nil {
		return match.Match{}, err
	}

	rec := match.Match{
		ID:          matchID,
		LeagueKey:   strings.ToLower(lg.Key),
		Week:        cfg.Week(lg.Key),
		Team:        input.Team,
		Opponent:    input.Opponent,
		ScheduledAt: when,
		GuildID:     inv.GuildID,
		CreatedBy:   inv.UserID,
	}
	if err := s.matches.Insert(ctx, rec); err != nil {
		return match.Match{}, fmt.Errorf("store match: %w", err)
	}

	s.logger.InfoContext(ctx, "match scheduled",
		"match_id", rec.ID, "league", rec.LeagueKey, "week", rec.Week, "scheduled_at", rec.ScheduledAt)

	return rec, nil
}

// Find looks a match up by id, compared case-insensitively.
func (s *SchedulerService) Find(ctx context.Context, id string) (match.Match, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	all, err := s.matches.List(ctx)
	if err != nil {
		return match.Match{}, fmt.Errorf("list matches: %w", err)
	}
	for _, m := range all {
		if m.HasID(id) {
			return m, nil
		}
	}

	return match.Match{}, fmt.Errorf("%w: match %s", ErrNotFound, strings.ToUpper(id))
}

// Cancel removes a match by id. Any member may cancel; ids compare
// case-insensitively.
func (s *SchedulerService) Cancel(ctx context.Context, id string) (match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.Cancel")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	removed, found, err := s.matches.Delete(ctx, id)
	if err != nil {
		return match.Match{}, fmt.Errorf("delete match: %w", err)
	}
	if !found {
		return match.Match{}, fmt.Errorf("%w: match %s", ErrNotFound, strings.ToUpper(id))
	}

	s.logger.InfoContext(ctx, "match cancelled", "match_id", removed.ID, "league", removed.LeagueKey)

	return removed, nil
}

// List returns the guild's matches, optionally filtered to one league,
// soonest first. Records without a parseable time sort last.
func (s *SchedulerService) List(ctx context.Context, guildID, leagueValue string) ([]match.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.List")
	defer span.End()

	leagueKey := ""
	if strings.TrimSpace(leagueValue) != "" {
		lg, err := s.resolveLeague(ctx, leagueValue)
		if err != nil {
			return nil, err
		}
		leagueKey = lg.Key
	}

	all, err := s.matches.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Match, 0, len(all))
	for _, m := range all {
		if guildID != "" && m.GuildID != guildID {
			continue
		}
		if leagueKey != "" && !strings.EqualFold(m.LeagueKey, leagueKey) {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].ScheduledAt, out[j].ScheduledAt
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})

	return out, nil
}

// ListForBoard returns the matches shown on a league's schedule board, in
// insertion order.
func (s *SchedulerService) ListForBoard(ctx context.Context, guildID, leagueKey string) ([]match.Match, error) {
	all, err := s.matches.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Match, 0, len(all))
	for _, m := range all {
		if m.GuildID != guildID {
			continue
		}
		if !strings.EqualFold(m.LeagueKey, leagueKey) {
			continue
		}
		out = append(out, m)
	}

	return out, nil
}

// SetWeek pins a league's current week counter. Weeks start at 1.
func (s *SchedulerService) SetWeek(ctx context.Context, guildID, leagueValue string, week int) (league.League, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.SetWeek")
	defer span.End()

	if week < 1 {
		return league.League{}, fmt.Errorf("%w: week must be at least 1", ErrInvalidInput)
	}

	lg, err := s.resolveLeague(ctx, leagueValue)
	if err != nil {
		return league.League{}, err
	}

	if err := s.guilds.SetWeek(ctx, guildID, lg.Key, week); err != nil {
		return league.League{}, fmt.Errorf("set week: %w", err)
	}

	return lg, nil
}

// AdvanceWeek bumps a league's current week counter by one and returns the
// new value.
func (s *SchedulerService) AdvanceWeek(ctx context.Context, guildID, leagueValue string) (league.League, int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SchedulerService.AdvanceWeek")
	defer span.End()

	lg, err := s.resolveLeague(ctx, leagueValue)
	if err != nil {
		return league.League{}, 0, err
	}

	cfg, err := s.guilds.Get(ctx, guildID)
	if err != nil {
		return league.League{}, 0, fmt.Errorf("get guild config: %w", err)
	}

	next := cfg.Week(lg.Key) + 1
	if err := s.guilds.SetWeek(ctx, guildID, lg.Key, next); err != nil {
		return league.League{}, 0, fmt.Errorf("advance week: %w", err)
	}

	return lg, next, nil
}

func (s *SchedulerService) resolveLeague(ctx context.Context, value string) (league.League, error) {
	lg, ok, err := s.leagues.GetByKeyOrName(ctx, value)
	if err != nil {
		return league.League{}, fmt.Errorf("resolve league: %w", err)
	}
	if !ok || !lg.Active() {
		return league.League{}, fmt.Errorf("%w: unknown league '%s'", ErrInvalidInput, strings.TrimSpace(value))
	}
	return lg, nil
}

// newMatchID draws generator tokens until one misses every stored id.
func (s *SchedulerService) newMatchID(ctx context.Context) (string, error) {
	existing, err := s.matches.IDs(ctx)
	if err != nil {
		return "", fmt.Errorf("list match ids: %w", err)
	}

	for {
		candidate, err := s.ids.NewID()
		if err != nil {
			return "", fmt.Errorf("generate match id: %w", err)
		}
		if _, taken := existing[strings.ToUpper(candidate)]; !taken {
			return strings.ToUpper(candidate), nil
		}
	}
}

// parseMatchTime interprets M/D + H:MMam/pm in the league timezone. Dates
// already past this year roll over to the next year.
func (s *SchedulerService) parseMatchTime(dateRaw, timeRaw string) (time.Time, error) {
	dm := matchDatePattern.FindStringSubmatch(dateRaw)
	tm := matchTimePattern.FindStringSubmatch(timeRaw)
	if dm == nil || tm == nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidInput, invalidDateTimeMessage)
	}

	month, _ := strconv.Atoi(dm[1])
	day, _ := strconv.Atoi(dm[2])
	hour, _ := strconv.Atoi(tm[1])
	minute, _ := strconv.Atoi(tm[2])
	meridiem := strings.ToLower(tm[3])

	if meridiem == "pm" && hour != 12 {
		hour += 12
	}
	if meridiem == "am" && hour == 12 {
		hour = 0
	}

	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidInput, invalidDateTimeMessage)
	}

	now := s.now().In(s.loc)
	when := time.Date(now.Year(), time.Month(month), day, hour, minute, 0, 0, s.loc)
	// time.Date normalizes impossible dates like 2/31; reject instead.
	if int(when.Month()) != month || when.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidInput, invalidDateTimeMessage)
	}

	if beforeToday(when, now) {
		when = time.Date(now.Year()+1, time.Month(month), day, hour, minute, 0, 0, s.loc)
		if int(when.Month()) != month || when.Day() != day {
			return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidInput, invalidDateTimeMessage)
		}
	}

	return when, nil
}

// beforeToday compares calendar dates, not instants: a match later today is
// not in the past.
func beforeToday(when, now time.Time) bool {
	wy, wm, wd := when.Date()
	ny, nm, nd := now.Date()
	if wy != ny {
		return wy < ny
	}
	if wm != nm {
		return wm < nm
	}
	return wd < nd
}
