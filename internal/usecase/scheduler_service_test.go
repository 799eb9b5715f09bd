package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/league"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/match"
)

var schedulerTestNow = time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

func newSchedulerForTest(matches *stubMatchRepo, guilds *stubGuildRepo, gen *stubIDGenerator, policy PermissionPolicy) *SchedulerService {
	leagues := &stubLeagueRepo{leagues: []league.League{testChampion(), testChallenger()}}
	svc := NewSchedulerService(matches, leagues, guilds, gen, policy, time.UTC, nil)
	svc.now = func() time.Time { return schedulerTestNow }
	return svc
}

func validScheduleInput() ScheduleInput {
	return ScheduleInput{League: "Champion", Team: "Angels", Opponent: "Devils", Date: "1/14", Time: "9:30pm"}
}

func TestSchedulerService_Schedule_StoresMatch(t *testing.T) {
	t.Parallel()

	matches := &stubMatchRepo{}
	guilds := newStubGuildRepo()
	if err := guilds.SetWeek(context.Background(), "guild-1", league.KeyChampion, 3); err != nil {
		t.Fatalf("seed week: %v", err)
	}
	svc := newSchedulerForTest(matches, guilds, &stubIDGenerator{ids: []string{"abc123"}}, PermissionPolicy{Bypass: true})

	input := validScheduleInput()
	input.Team = "  Angels  "
	inv := Invoker{GuildID: "guild-1", UserID: "user-1"}

	rec, err := svc.Schedule(context.Background(), inv, input)
	if err != nil {
		t.Fatalf("Schedule error: %v", err)
	}

	if rec.ID != "ABC123" {
		t.Fatalf("expected uppercase id, got %q", rec.ID)
	}
	if rec.LeagueKey != league.KeyChampion {
		t.Fatalf("unexpected league key %q", rec.LeagueKey)
	}
	if rec.Week != 3 {
		t.Fatalf("expected week 3, got %d", rec.Week)
	}
	if rec.Team != "Angels" || rec.Opponent != "Devils" {
		t.Fatalf("expected trimmed team names, got %q vs %q", rec.Team, rec.Opponent)
	}
	if want := time.Date(2026, 1, 14, 21, 30, 0, 0, time.UTC); !rec.ScheduledAt.Equal(want) {
		t.Fatalf("scheduled at %v, want %v", rec.ScheduledAt, want)
	}
	if rec.GuildID != "guild-1" || rec.CreatedBy != "user-1" {
		t.Fatalf("unexpected attribution %q/%q", rec.GuildID, rec.CreatedBy)
	}
	if len(matches.matches) != 1 {
		t.Fatalf("expected 1 stored match, got %d", len(matches.matches))
	}
}

func TestSchedulerService_Schedule_RequiresAllFields(t *testing.T) {
	t.Parallel()

	svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{ids: []string{"abc123"}}, PermissionPolicy{Bypass: true})

	input := validScheduleInput()
	input.Opponent = "   "

	_, err := svc.Schedule(context.Background(), Invoker{GuildID: "guild-1"}, input)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSchedulerService_Schedule_PermissionMatrix(t *testing.T) {
	t.Parallel()

	basePolicy := PermissionPolicy{
		DevUserIDs:        map[string]struct{}{"dev-1": {}},
		CommissionerRoles: []string{"League Commissioner"},
		GMRoles:           []string{"GM"},
		OrgGMRole:         "Org GM",
	}

	cases := []struct {
		name    string
		policy  PermissionPolicy
		invoker Invoker
		allowed bool
	}{
		{
			name:    "plain member denied",
			policy:  basePolicy,
			invoker: Invoker{GuildID: "guild-1", UserID: "user-1", RoleNames: []string{"Member"}},
		},
		{
			name:    "commissioner role matches case-insensitively",
			policy:  basePolicy,
			invoker: Invoker{GuildID: "guild-1", UserID: "user-2", RoleNames: []string{"  league commissioner  "}},
			allowed: true,
		},
		{
			name:    "gm role allowed",
			policy:  basePolicy,
			invoker: Invoker{GuildID: "guild-1", UserID: "user-3", RoleNames: []string{"GM"}},
			allowed: true,
		},
		{
			name:    "org gm role allowed",
			policy:  basePolicy,
			invoker: Invoker{GuildID: "guild-1", UserID: "user-4", RoleNames: []string{"org gm"}},
			allowed: true,
		},
		{
			name:    "developer id allowed without roles",
			policy:  basePolicy,
			invoker: Invoker{GuildID: "guild-1", UserID: "dev-1"},
			allowed: true,
		},
		{
			name:    "bypass opens the scheduler to everyone",
			policy:  PermissionPolicy{Bypass: true},
			invoker: Invoker{GuildID: "guild-1", UserID: "user-5"},
			allowed: true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{ids: []string{"abc123"}}, tc.policy)

			_, err := svc.Schedule(context.Background(), tc.invoker, validScheduleInput())
			if tc.allowed && err != nil {
				t.Fatalf("expected success, got %v", err)
			}
			if !tc.allowed && !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestSchedulerService_Schedule_RejectsWhenSchedulerDisabled(t *testing.T) {
	t.Parallel()

	guilds := newStubGuildRepo()
	if err := guilds.SetSchedulerEnabled(context.Background(), "guild-1", false); err != nil {
		t.Fatalf("seed flag: %v", err)
	}
	svc := newSchedulerForTest(&stubMatchRepo{}, guilds, &stubIDGenerator{ids: []string{"abc123"}}, PermissionPolicy{Bypass: true})

	_, err := svc.Schedule(context.Background(), Invoker{GuildID: "guild-1"}, validScheduleInput())
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected disabled message, got %q", err.Error())
	}
}

func TestSchedulerService_Schedule_OrgGMLimitedToRoster(t *testing.T) {
	t.Parallel()

	policy := PermissionPolicy{
		CommissionerRoles: []string{"League Commissioner"},
		OrgGMRole:         "Org GM",
		GMOrgMap:          map[string]string{"user-7": " Angels "},
	}
	orgGM := Invoker{GuildID: "guild-1", UserID: "user-7", RoleNames: []string{"Org GM"}}

	t.Run("wrong roster denied", func(t *testing.T) {
		t.Parallel()

		svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{ids: []string{"abc123"}}, policy)
		input := validScheduleInput()
		input.Team = "Devils"

		_, err := svc.Schedule(context.Background(), orgGM, input)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
		if !strings.Contains(err.Error(), "**Angels**") {
			t.Fatalf("expected the allowed roster in the message, got %q", err.Error())
		}
	})

	t.Run("own roster allowed in any case", func(t *testing.T) {
		t.Parallel()

		svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{ids: []string{"abc123"}}, policy)
		input := validScheduleInput()
		input.Team = "angels"

		if _, err := svc.Schedule(context.Background(), orgGM, input); err != nil {
			t.Fatalf("Schedule error: %v", err)
		}
	})

	t.Run("challenger division maps to the sister roster", func(t *testing.T) {
		t.Parallel()

		svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{ids: []string{"abc123"}}, policy)
		input := validScheduleInput()
		input.League = "Challenger"
		input.Team = "Saints"

		if _, err := svc.Schedule(context.Background(), orgGM, input); err != nil {
			t.Fatalf("Schedule error: %v", err)
		}

		svc = newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{ids: []string{"abc123"}}, policy)
		input.Team = "Angels"
		if _, err := svc.Schedule(context.Background(), orgGM, input); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})

	t.Run("commissioner with a mapping is exempt", func(t *testing.T) {
		t.Parallel()

		svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{ids: []string{"abc123"}}, policy)
		commissioner := Invoker{GuildID: "guild-1", UserID: "user-7", RoleNames: []string{"League Commissioner"}}
		input := validScheduleInput()
		input.Team = "Devils"

		if _, err := svc.Schedule(context.Background(), commissioner, input); err != nil {
			t.Fatalf("Schedule error: %v", err)
		}
	})

	t.Run("unmapped org schedules freely", func(t *testing.T) {
		t.Parallel()

		free := PermissionPolicy{
			OrgGMRole: "Org GM",
			GMOrgMap:  map[string]string{"user-9": "expansion-club"},
		}
		svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{ids: []string{"abc123"}}, free)
		inv := Invoker{GuildID: "guild-1", UserID: "user-9", RoleNames: []string{"Org GM"}}
		input := validScheduleInput()
		input.Team = "Devils"

		if _, err := svc.Schedule(context.Background(), inv, input); err != nil {
			t.Fatalf("Schedule error: %v", err)
		}
	})
}

func TestSchedulerService_Schedule_UnknownLeagueRejected(t *testing.T) {
	t.Parallel()

	svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{ids: []string{"abc123"}}, PermissionPolicy{Bypass: true})

	input := validScheduleInput()
	input.League = "mystery"

	_, err := svc.Schedule(context.Background(), Invoker{GuildID: "guild-1"}, input)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown league 'mystery'") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestSchedulerService_Schedule_ParkedLeagueRejected(t *testing.T) {
	t.Parallel()

	parked := league.League{Key: league.KeyChallenger, Name: "Challenger", StandingsURL: "https://standings.test/challenger"}
	leagues := &stubLeagueRepo{leagues: []league.League{testChampion(), parked}}
	svc := NewSchedulerService(&stubMatchRepo{}, leagues, newStubGuildRepo(), &stubIDGenerator{ids: []string{"abc123"}}, PermissionPolicy{Bypass: true}, time.UTC, nil)
	svc.now = func() time.Time { return schedulerTestNow }

	input := validScheduleInput()
	input.League = "Challenger"

	_, err := svc.Schedule(context.Background(), Invoker{GuildID: "guild-1"}, input)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for parked league, got %v", err)
	}
}

func TestSchedulerService_Schedule_RetriesOnIDCollision(t *testing.T) {
	t.Parallel()

	matches := &stubMatchRepo{matches: []match.Match{{ID: "AAAAAA", LeagueKey: league.KeyChampion, GuildID: "guild-1"}}}
	gen := &stubIDGenerator{ids: []string{"aaaaaa", "bbbbbb"}}
	svc := newSchedulerForTest(matches, newStubGuildRepo(), gen, PermissionPolicy{Bypass: true})

	rec, err := svc.Schedule(context.Background(), Invoker{GuildID: "guild-1"}, validScheduleInput())
	if err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	if rec.ID != "BBBBBB" {
		t.Fatalf("expected the collision to be skipped, got %q", rec.ID)
	}
}

// idSetMatchRepo hands back a caller-owned id set directly, skipping the
// per-call copy the full stub makes so the generation loop below stays cheap.
type idSetMatchRepo struct {
	stubMatchRepo
	ids map[string]struct{}
}

func (r *idSetMatchRepo) IDs(_ context.Context) (map[string]struct{}, error) {
	return r.ids, nil
}

func TestSchedulerService_NewMatchID_NeverDuplicates(t *testing.T) {
	t.Parallel()

	taken := make(map[string]struct{})
	for i := 0; i < 4096; i++ {
		taken[fmt.Sprintf("%06X", i)] = struct{}{}
	}

	matches := &idSetMatchRepo{ids: taken}
	leagues := &stubLeagueRepo{leagues: []league.League{testChampion()}}
	svc := NewSchedulerService(matches, leagues, newStubGuildRepo(), nil, PermissionPolicy{Bypass: true}, time.UTC, nil)

	for i := 0; i < 10000; i++ {
		matchID, err := svc.newMatchID(context.Background())
		if err != nil {
			t.Fatalf("newMatchID: %v", err)
		}
		if _, dup := taken[matchID]; dup {
			t.Fatalf("duplicate id %q after %d generations", matchID, i)
		}
		taken[matchID] = struct{}{}
	}
}

func TestSchedulerService_Schedule_RejectsBadDateFormat(t *testing.T) {
	t.Parallel()

	svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{ids: []string{"abc123"}}, PermissionPolicy{Bypass: true})

	input := validScheduleInput()
	input.Date = "Jan 14"

	_, err := svc.Schedule(context.Background(), Invoker{GuildID: "guild-1"}, input)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid date or time format") {
		t.Fatalf("expected format hint, got %q", err.Error())
	}
}

func TestSchedulerService_ParseMatchTime_ParsesMeridiem(t *testing.T) {
	t.Parallel()

	svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{}, PermissionPolicy{Bypass: true})

	cases := []struct {
		date, clock string
		want        time.Time
	}{
		{"1/14", "9:30pm", time.Date(2026, 1, 14, 21, 30, 0, 0, time.UTC)},
		{"1/14", "9:30am", time.Date(2026, 1, 14, 9, 30, 0, 0, time.UTC)},
		{"1/14", "12:00am", time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)},
		{"1/14", "12:15pm", time.Date(2026, 1, 14, 12, 15, 0, 0, time.UTC)},
		{"1/14", " 9:30 PM ", time.Date(2026, 1, 14, 21, 30, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, err := svc.parseMatchTime(tc.date, tc.clock)
		if err != nil {
			t.Fatalf("parseMatchTime(%q, %q) error: %v", tc.date, tc.clock, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("parseMatchTime(%q, %q) = %v, want %v", tc.date, tc.clock, got, tc.want)
		}
	}
}

func TestSchedulerService_ParseMatchTime_RollsPastDatesToNextYear(t *testing.T) {
	t.Parallel()

	svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{}, PermissionPolicy{Bypass: true})
	svc.now = func() time.Time { return time.Date(2026, 12, 30, 10, 0, 0, 0, time.UTC) }

	got, err := svc.parseMatchTime("1/2", "7:00pm")
	if err != nil {
		t.Fatalf("parseMatchTime error: %v", err)
	}
	if want := time.Date(2027, 1, 2, 19, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("parseMatchTime = %v, want %v", got, want)
	}
}

func TestSchedulerService_ParseMatchTime_SameDayIsNotPast(t *testing.T) {
	t.Parallel()

	svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{}, PermissionPolicy{Bypass: true})
	svc.now = func() time.Time { return time.Date(2026, 5, 10, 22, 0, 0, 0, time.UTC) }

	// Past-date handling compares calendar dates, so even a morning slot
	// today stays in the current year.
	got, err := svc.parseMatchTime("5/10", "8:00am")
	if err != nil {
		t.Fatalf("parseMatchTime error: %v", err)
	}
	if want := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("parseMatchTime = %v, want %v", got, want)
	}
}

func TestSchedulerService_ParseMatchTime_UsesConfiguredLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("EST", -5*3600)
	leagues := &stubLeagueRepo{leagues: []league.League{testChampion()}}
	svc := NewSchedulerService(&stubMatchRepo{}, leagues, newStubGuildRepo(), &stubIDGenerator{}, PermissionPolicy{Bypass: true}, loc, nil)
	svc.now = func() time.Time { return time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC) }

	got, err := svc.parseMatchTime("1/14", "9:30pm")
	if err != nil {
		t.Fatalf("parseMatchTime error: %v", err)
	}
	if want := time.Date(2026, 1, 14, 21, 30, 0, 0, loc); !got.Equal(want) {
		t.Fatalf("parseMatchTime = %v, want %v", got, want)
	}
}

func TestSchedulerService_ParseMatchTime_RejectsImpossibleValues(t *testing.T) {
	t.Parallel()

	svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{}, PermissionPolicy{Bypass: true})

	cases := []struct {
		name        string
		date, clock string
	}{
		{"day overflow normalized away", "2/31", "9:30pm"},
		{"month zero", "0/5", "9:30pm"},
		{"day zero", "1/0", "9:30pm"},
		{"month thirteen", "13/1", "9:30pm"},
		{"minute sixty", "1/14", "12:60pm"},
		{"hour beyond meridiem range", "1/14", "13:00pm"},
		{"spelled month", "Jan 14", "9:30pm"},
		{"24h clock", "1/14", "2130"},
		{"missing minutes", "1/14", "9pm"},
	}

	for _, tc := range cases {
		if _, err := svc.parseMatchTime(tc.date, tc.clock); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected invalid input, got %v", tc.name, err)
		}
	}
}

func TestSchedulerService_ParseMatchTime_RejectsLeapDayRollover(t *testing.T) {
	t.Parallel()

	svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{}, PermissionPolicy{Bypass: true})
	svc.now = func() time.Time { return time.Date(2028, 3, 5, 10, 0, 0, 0, time.UTC) }

	// Feb 29 exists in 2028 but the past-date rollover lands on 2029,
	// which has no leap day.
	if _, err := svc.parseMatchTime("2/29", "8:00pm"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSchedulerService_Find_MatchesCaseInsensitively(t *testing.T) {
	t.Parallel()

	matches := &stubMatchRepo{matches: []match.Match{{ID: "A1B2C3", LeagueKey: league.KeyChampion, GuildID: "guild-1"}}}
	svc := newSchedulerForTest(matches, newStubGuildRepo(), &stubIDGenerator{}, PermissionPolicy{})

	found, err := svc.Find(context.Background(), " a1b2c3 ")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if found.ID != "A1B2C3" {
		t.Fatalf("expected the stored record back, got %q", found.ID)
	}
	if len(matches.matches) != 1 {
		t.Fatalf("Find must not remove the match, %d left", len(matches.matches))
	}

	if _, err := svc.Find(context.Background(), "zzzzzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := svc.Find(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSchedulerService_Cancel_MatchesCaseInsensitively(t *testing.T) {
	t.Parallel()

	matches := &stubMatchRepo{matches: []match.Match{{ID: "A1B2C3", LeagueKey: league.KeyChampion, GuildID: "guild-1"}}}
	svc := newSchedulerForTest(matches, newStubGuildRepo(), &stubIDGenerator{}, PermissionPolicy{})

	removed, err := svc.Cancel(context.Background(), " a1b2c3 ")
	if err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if removed.ID != "A1B2C3" {
		t.Fatalf("expected the stored record back, got %q", removed.ID)
	}
	if len(matches.matches) != 0 {
		t.Fatalf("expected the match to be removed, %d left", len(matches.matches))
	}
}

func TestSchedulerService_Cancel_UnknownID(t *testing.T) {
	t.Parallel()

	svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{}, PermissionPolicy{})

	_, err := svc.Cancel(context.Background(), "zzzzzz")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if !strings.Contains(err.Error(), "ZZZZZZ") {
		t.Fatalf("expected uppercased id in message, got %q", err.Error())
	}
}

func TestSchedulerService_Cancel_RequiresID(t *testing.T) {
	t.Parallel()

	svc := newSchedulerForTest(&stubMatchRepo{}, newStubGuildRepo(), &stubIDGenerator{}, PermissionPolicy{})

	if _, err := svc.Cancel(context.Background(), "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestSchedulerService_List_SortsSoonestFirstWithUnknownLast(t *testing.T) {
	t.Parallel()

	base := schedulerTestNow
	matches := &stubMatchRepo{matches: []match.Match{
		{ID: "LATE01", LeagueKey: league.KeyChampion, GuildID: "guild-1", ScheduledAt: base.Add(48 * time.Hour)},
		{ID: "SOON01", LeagueKey: league.KeyChampion, GuildID: "guild-1", ScheduledAt: base.Add(2 * time.Hour)},
		{ID: "NOTIME", LeagueKey: league.KeyChampion, GuildID: "guild-1"},
		{ID: "OTHER1", LeagueKey: league.KeyChampion, GuildID: "guild-2", ScheduledAt: base.Add(time.Hour)},
		{ID: "CHAL01", LeagueKey: league.KeyChallenger, GuildID: "guild-1", ScheduledAt: base.Add(30 * time.Minute)},
	}}
	svc := newSchedulerForTest(matches, newStubGuildRepo(), &stubIDGenerator{}, PermissionPolicy{})

	got, err := svc.List(context.Background(), "guild-1", "")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	ids := make([]string, 0, len(got))
	for _, m := range got {
		ids = append(ids, m.ID)
	}
	if want := "CHAL01,SOON01,LATE01,NOTIME"; strings.Join(ids, ",") != want {
		t.Fatalf("unexpected order %v, want %s", ids, want)
	}

	filtered, err := svc.List(context.Background(), "guild-1", "Champion")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	for _, m := range filtered {
		if m.LeagueKey != league.KeyChampion {
			t.Fatalf("league filter leaked %q", m.ID)
		}
	}
	if len(filtered) != 3 {
		t.Fatalf("expected 3 champion matches, got %d", len(filtered))
	}
}

func TestSchedulerService_ListForBoard_KeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	base := schedulerTestNow
	matches := &stubMatchRepo{matches: []match.Match{
		{ID: "LATE01", LeagueKey: league.KeyChampion, GuildID: "guild-1", ScheduledAt: base.Add(48 * time.Hour)},
		{ID: "SOON01", LeagueKey: league.KeyChampion, GuildID: "guild-1", ScheduledAt: base.Add(2 * time.Hour)},
		{ID: "OTHER1", LeagueKey: league.KeyChampion, GuildID: "guild-2", ScheduledAt: base.Add(time.Hour)},
		{ID: "CHAL01", LeagueKey: league.KeyChallenger, GuildID: "guild-1", ScheduledAt: base.Add(30 * time.Minute)},
	}}
	svc := newSchedulerForTest(matches, newStubGuildRepo(), &stubIDGenerator{}, PermissionPolicy{})

	got, err := svc.ListForBoard(context.Background(), "guild-1", league.KeyChampion)
	if err != nil {
		t.Fatalf("ListForBoard error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "LATE01" || got[1].ID != "SOON01" {
		t.Fatalf("unexpected board rows %+v", got)
	}
}

func TestSchedulerService_SetWeek_Validates(t *testing.T) {
	t.Parallel()

	guilds := newStubGuildRepo()
	svc := newSchedulerForTest(&stubMatchRepo{}, guilds, &stubIDGenerator{}, PermissionPolicy{})

	if _, err := svc.SetWeek(context.Background(), "guild-1", "Champion", 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for week 0, got %v", err)
	}

	lg, err := svc.SetWeek(context.Background(), "guild-1", "Champion", 5)
	if err != nil {
		t.Fatalf("SetWeek error: %v", err)
	}
	if lg.Key != league.KeyChampion {
		t.Fatalf("unexpected league %q", lg.Key)
	}
	cfg, err := guilds.Get(context.Background(), "guild-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if cfg.Week(league.KeyChampion) != 5 {
		t.Fatalf("expected week 5, got %d", cfg.Week(league.KeyChampion))
	}
}

func TestSchedulerService_AdvanceWeek_Increments(t *testing.T) {
	t.Parallel()

	guilds := newStubGuildRepo()
	svc := newSchedulerForTest(&stubMatchRepo{}, guilds, &stubIDGenerator{}, PermissionPolicy{})

	lg, next, err := svc.AdvanceWeek(context.Background(), "guild-1", "Champion")
	if err != nil {
		t.Fatalf("AdvanceWeek error: %v", err)
	}
	if lg.Key != league.KeyChampion || next != 2 {
		t.Fatalf("expected week 2 for champion, got %d for %q", next, lg.Key)
	}

	if _, next, err = svc.AdvanceWeek(context.Background(), "guild-1", "Champion"); err != nil || next != 3 {
		t.Fatalf("expected week 3, got %d (err %v)", next, err)
	}
}
