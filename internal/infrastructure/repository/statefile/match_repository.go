package statefile

import (
	"context"
	"strings"
	"time"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/match"
)

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) List(_ context.Context) ([]match.Match, error) {
	var out []match.Match
	r.store.view(func(doc *document) {
		out = make([]match.Match, 0, len(doc.ScheduledMatches))
		for _, rec := range doc.ScheduledMatches {
			out = append(out, toDomainMatch(rec))
		}
	})
	return out, nil
}

func (r *MatchRepository) Insert(_ context.Context, m match.Match) error {
	return r.store.update(func(doc *document) error {
		doc.ScheduledMatches = append(doc.ScheduledMatches, toMatchDocument(m))
		return nil
	})
}

func (r *MatchRepository) Delete(_ context.Context, id string) (match.Match, bool, error) {
	var (
		removed match.Match
		found   bool
	)
	err := r.store.update(func(doc *document) error {
		idx := -1
		for i, rec := range doc.ScheduledMatches {
			if strings.EqualFold(rec.ID, strings.TrimSpace(id)) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil
		}
		removed = toDomainMatch(doc.ScheduledMatches[idx])
		found = true
		doc.ScheduledMatches = append(doc.ScheduledMatches[:idx], doc.ScheduledMatches[idx+1:]...)
		return nil
	})
	return removed, found, err
}

func (r *MatchRepository) MarkReminders(_ context.Context, marks []match.ReminderMark) error {
	if len(marks) == 0 {
		return nil
	}
	return r.store.update(func(doc *document) error {
		for _, mark := range marks {
			for i := range doc.ScheduledMatches {
				rec := &doc.ScheduledMatches[i]
				if !strings.EqualFold(rec.ID, mark.MatchID) {
					continue
				}
				if rec.RemindersSent == nil {
					rec.RemindersSent = make(map[string]bool)
				}
				rec.RemindersSent[mark.Label] = true
				break
			}
		}
		return nil
	})
}

func (r *MatchRepository) IDs(_ context.Context) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	r.store.view(func(doc *document) {
		for _, rec := range doc.ScheduledMatches {
			out[strings.ToUpper(rec.ID)] = struct{}{}
		}
	})
	return out, nil
}

func toMatchDocument(m match.Match) matchDocument {
	rec := matchDocument{
		ID:           m.ID,
		League:       m.LeagueKey,
		Week:         m.Week,
		Team:         m.Team,
		Opponent:     m.Opponent,
		ScheduledISO: m.ScheduledAt.Format(time.RFC3339),
		GuildID:      m.GuildID,
		CreatedBy:    m.CreatedBy,
	}
	if len(m.RemindersSent) > 0 {
		rec.RemindersSent = make(map[string]bool, len(m.RemindersSent))
		for k, v := range m.RemindersSent {
			rec.RemindersSent[k] = v
		}
	}
	return rec
}

// toDomainMatch keeps records with an unparseable timestamp: they still list
// and cancel, and the reminder sweep skips the zero time.
func toDomainMatch(rec matchDocument) match.Match {
	m := match.Match{
		ID:        rec.ID,
		LeagueKey: rec.League,
		Week:      rec.Week,
		Team:      rec.Team,
		Opponent:  rec.Opponent,
		GuildID:   rec.GuildID,
		CreatedBy: rec.CreatedBy,
	}
	if when, err := time.Parse(time.RFC3339, rec.ScheduledISO); err == nil {
		m.ScheduledAt = when
	}
	if len(rec.RemindersSent) > 0 {
		m.RemindersSent = make(map[string]bool, len(rec.RemindersSent))
		for k, v := range rec.RemindersSent {
			m.RemindersSent[k] = v
		}
	}
	return m
}
