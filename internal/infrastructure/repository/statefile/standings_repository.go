package statefile

import (
	"context"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/standings"
)

type StandingsStateRepository struct {
	store *Store
}

func NewStandingsStateRepository(store *Store) *StandingsStateRepository {
	return &StandingsStateRepository{store: store}
}

func (r *StandingsStateRepository) Get(_ context.Context, leagueKey string) (standings.State, error) {
	var state standings.State
	r.store.view(func(doc *document) {
		if entry := doc.Standings[leagueKey]; entry != nil {
			state = standings.State{LastHash: entry.LastHash, MessageID: entry.MessageID}
		}
	})
	return state, nil
}

func (r *StandingsStateRepository) SetLastHash(_ context.Context, leagueKey, hash string) error {
	return r.store.update(func(doc *document) error {
		doc.standings(leagueKey).LastHash = hash
		return nil
	})
}

func (r *StandingsStateRepository) SetMessageID(_ context.Context, leagueKey, messageID string) error {
	return r.store.update(func(doc *document) error {
		doc.standings(leagueKey).MessageID = messageID
		return nil
	})
}
