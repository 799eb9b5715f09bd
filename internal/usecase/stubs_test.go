package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/guild"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/league"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/match"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/standings"
)

func testChampion() league.League {
	return league.League{
		Key:          league.KeyChampion,
		Name:         "Champion",
		StandingsURL: "https://standings.test/champion",
		ChannelID:    "chan-champion",
	}
}

func testChallenger() league.League {
	return league.League{
		Key:          league.KeyChallenger,
		Name:         "Challenger",
		StandingsURL: "https://standings.test/challenger",
		ChannelID:    "chan-challenger",
	}
}

func standingsFixture(teams ...string) []standings.Row {
	rows := make([]standings.Row, 0, len(teams))
	for i, team := range teams {
		rows = append(rows, standings.Row{
			Rank:        i + 1,
			Team:        team,
			WinLoss:     fmt.Sprintf("%d-%d", 10-i, i),
			GamesWon:    fmt.Sprintf("%d", 10-i),
			GamesLost:   fmt.Sprintf("%d", i),
			PointMargin: fmt.Sprintf("+%d", 20-i),
			GamesBehind: fmt.Sprintf("%d", i),
		})
	}
	return rows
}

type stubLeagueRepo struct {
	leagues []league.League
	err     error
}

func (r *stubLeagueRepo) List(_ context.Context) ([]league.League, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]league.League, len(r.leagues))
	copy(out, r.leagues)
	return out, nil
}

func (r *stubLeagueRepo) ListActive(_ context.Context) ([]league.League, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]league.League, 0, len(r.leagues))
	for _, lg := range r.leagues {
		if lg.Active() {
			out = append(out, lg)
		}
	}
	return out, nil
}

func (r *stubLeagueRepo) GetByKeyOrName(_ context.Context, value string) (league.League, bool, error) {
	if r.err != nil {
		return league.League{}, false, r.err
	}
	needle := strings.ToLower(strings.TrimSpace(value))
	for _, lg := range r.leagues {
		if strings.ToLower(lg.Key) == needle || strings.ToLower(lg.Name) == needle {
			return lg, true, nil
		}
	}
	return league.League{}, false, nil
}

type stubGuildRepo struct {
	configs map[string]*guild.Config
	err     error
}

func newStubGuildRepo() *stubGuildRepo {
	return &stubGuildRepo{configs: map[string]*guild.Config{}}
}

func (r *stubGuildRepo) config(guildID string) *guild.Config {
	cfg, ok := r.configs[guildID]
	if !ok {
		cfg = &guild.Config{
			GuildID:            guildID,
			StandingsChannels:  map[string]string{},
			ScheduleChannels:   map[string]string{},
			ScheduleMessageIDs: map[string]string{},
			CurrentWeek:        map[string]int{},
			SchedulerEnabled:   true,
		}
		r.configs[guildID] = cfg
	}
	return cfg
}

func (r *stubGuildRepo) Get(_ context.Context, guildID string) (guild.Config, error) {
	if r.err != nil {
		return guild.Config{}, r.err
	}
	return *r.config(guildID), nil
}

func (r *stubGuildRepo) SetChannel(_ context.Context, guildID string, purpose guild.ChannelPurpose, leagueKey, channelID string) error {
	cfg := r.config(guildID)
	switch purpose {
	case guild.PurposeStandings:
		cfg.StandingsChannels[leagueKey] = channelID
	case guild.PurposeSchedule:
		cfg.ScheduleChannels[leagueKey] = channelID
	case guild.PurposeLogs:
		cfg.LogsChannelID = channelID
	case guild.PurposeAnnouncements:
		cfg.AnnouncementsChannelID = channelID
	default:
		return fmt.Errorf("unknown channel purpose %q", purpose)
	}
	return nil
}

func (r *stubGuildRepo) SetScheduleMessageID(_ context.Context, guildID, leagueKey, messageID string) error {
	r.config(guildID).ScheduleMessageIDs[leagueKey] = messageID
	return nil
}

func (r *stubGuildRepo) SetWeek(_ context.Context, guildID, leagueKey string, week int) error {
	r.config(guildID).CurrentWeek[leagueKey] = week
	return nil
}

func (r *stubGuildRepo) SetSchedulerEnabled(_ context.Context, guildID string, enabled bool) error {
	r.config(guildID).SchedulerEnabled = enabled
	return nil
}

type stubStateRepo struct {
	states     map[string]standings.State
	hashErr    error
	hashWrites []string
}

func newStubStateRepo() *stubStateRepo {
	return &stubStateRepo{states: map[string]standings.State{}}
}

func (r *stubStateRepo) Get(_ context.Context, leagueKey string) (standings.State, error) {
	return r.states[leagueKey], nil
}

func (r *stubStateRepo) SetLastHash(_ context.Context, leagueKey, hash string) error {
	if r.hashErr != nil {
		return r.hashErr
	}
	st := r.states[leagueKey]
	st.LastHash = hash
	r.states[leagueKey] = st
	r.hashWrites = append(r.hashWrites, leagueKey)
	return nil
}

func (r *stubStateRepo) SetMessageID(_ context.Context, leagueKey, messageID string) error {
	st := r.states[leagueKey]
	st.MessageID = messageID
	r.states[leagueKey] = st
	return nil
}

type stubMatchRepo struct {
	matches   []match.Match
	insertErr error
	markErr   error
	markCalls [][]match.ReminderMark
}

func (r *stubMatchRepo) List(_ context.Context) ([]match.Match, error) {
	out := make([]match.Match, len(r.matches))
	copy(out, r.matches)
	return out, nil
}

func (r *stubMatchRepo) Insert(_ context.Context, m match.Match) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.matches = append(r.matches, m)
	return nil
}

func (r *stubMatchRepo) Delete(_ context.Context, id string) (match.Match, bool, error) {
	for i, m := range r.matches {
		if m.HasID(id) {
			r.matches = append(r.matches[:i], r.matches[i+1:]...)
			return m, true, nil
		}
	}
	return match.Match{}, false, nil
}

func (r *stubMatchRepo) MarkReminders(_ context.Context, marks []match.ReminderMark) error {
	if r.markErr != nil {
		return r.markErr
	}
	r.markCalls = append(r.markCalls, marks)
	for _, mark := range marks {
		for i := range r.matches {
			if !r.matches[i].HasID(mark.MatchID) {
				continue
			}
			if r.matches[i].RemindersSent == nil {
				r.matches[i].RemindersSent = map[string]bool{}
			}
			r.matches[i].RemindersSent[mark.Label] = true
		}
	}
	return nil
}

func (r *stubMatchRepo) IDs(_ context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(r.matches))
	for _, m := range r.matches {
		out[strings.ToUpper(m.ID)] = struct{}{}
	}
	return out, nil
}

// sentMessage records one messenger call; MessageID carries the id assigned
// on send or the id targeted by an edit.
type sentMessage struct {
	ChannelID string
	MessageID string
	Content   string
	View      MessageView
}

type stubMessenger struct {
	sends        []sentMessage
	edits        []sentMessage
	texts        []sentMessage
	sendErr      error
	editErr      error
	textFailures int
	roles        map[string]string
	nextID       int
}

func (m *stubMessenger) SendView(_ context.Context, channelID string, view MessageView) (string, error) {
	m.nextID++
	id := fmt.Sprintf("msg-%d", m.nextID)
	m.sends = append(m.sends, sentMessage{ChannelID: channelID, MessageID: id, View: view})
	if m.sendErr != nil {
		return "", m.sendErr
	}
	return id, nil
}

func (m *stubMessenger) EditView(_ context.Context, channelID, messageID string, view MessageView) error {
	m.edits = append(m.edits, sentMessage{ChannelID: channelID, MessageID: messageID, View: view})
	return m.editErr
}

func (m *stubMessenger) SendText(_ context.Context, channelID, content string) (string, error) {
	m.nextID++
	id := fmt.Sprintf("msg-%d", m.nextID)
	m.texts = append(m.texts, sentMessage{ChannelID: channelID, MessageID: id, Content: content})
	if m.textFailures > 0 {
		m.textFailures--
		return "", errors.New("send rejected")
	}
	return id, nil
}

func (m *stubMessenger) ResolveRoleMention(_ context.Context, _ string, roleName string) (string, bool) {
	mention, ok := m.roles[strings.ToLower(strings.TrimSpace(roleName))]
	return mention, ok
}

// stubStandingsSource serves canned rows per URL. Safe for concurrent
// fetches.
type stubStandingsSource struct {
	mu    sync.Mutex
	rows  map[string][]standings.Row
	errs  map[string]error
	calls map[string]int
}

func newStubStandingsSource() *stubStandingsSource {
	return &stubStandingsSource{
		rows:  map[string][]standings.Row{},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (s *stubStandingsSource) FetchStandings(_ context.Context, pageURL string) ([]standings.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[pageURL]++
	if err := s.errs[pageURL]; err != nil {
		return nil, err
	}
	rows := s.rows[pageURL]
	out := make([]standings.Row, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *stubStandingsSource) callCount(pageURL string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[pageURL]
}

// stubIDGenerator hands out a fixed sequence and errors once exhausted, so a
// broken collision loop fails the test instead of spinning.
type stubIDGenerator struct {
	ids []string
	idx int
}

func (g *stubIDGenerator) NewID() (string, error) {
	if g.idx >= len(g.ids) {
		return "", errors.New("id generator exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id, nil
}
