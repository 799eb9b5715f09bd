package match

import "context"

// ReminderMark flags one threshold of one match as delivered.
type ReminderMark struct {
	MatchID string
	Label   string
}

// Repository persists scheduled matches.
type Repository interface {
	List(ctx context.Context) ([]Match, error)
	Insert(ctx context.Context, m Match) error
	Delete(ctx context.Context, id string) (Match, bool, error)
	MarkReminders(ctx context.Context, marks []ReminderMark) error
	IDs(ctx context.Context) (map[string]struct{}, error)
}
