package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/league"
)

type LeagueRepository struct {
	mu     sync.RWMutex
	items  map[string]league.League
	orders []string
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	orders := make([]string, 0, len(leagues))

	for _, l := range leagues {
		items[l.Key] = l
		orders = append(orders, l.Key)
	}

	return &LeagueRepository{
		items:  items,
		orders: orders,
	}
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.orders))
	for _, key := range r.orders {
		out = append(out, r.items[key])
	}

	return out, nil
}

func (r *LeagueRepository) ListActive(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.orders))
	for _, key := range r.orders {
		if l := r.items[key]; l.Active() {
			out = append(out, l)
		}
	}

	return out, nil
}

func (r *LeagueRepository) GetByKeyOrName(_ context.Context, value string) (league.League, bool, error) {
	want := strings.ToLower(strings.TrimSpace(value))
	if want == "" {
		return league.League{}, false, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, key := range r.orders {
		l := r.items[key]
		if strings.ToLower(l.Key) == want || strings.ToLower(l.Name) == want {
			return l, true, nil
		}
	}

	return league.League{}, false, nil
}
