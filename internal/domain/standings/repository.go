package standings

import "context"

// StateRepository persists per-league publish state. Absent leagues read as
// the zero State.
type StateRepository interface {
	Get(ctx context.Context, leagueKey string) (State, error)
	SetLastHash(ctx context.Context, leagueKey, hash string) error
	SetMessageID(ctx context.Context, leagueKey, messageID string) error
}
