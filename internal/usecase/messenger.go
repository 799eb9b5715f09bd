package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/standings"
)

// MessageView is a renderer-agnostic rich message. The notify adapter turns
// it into the platform's embed type.
type MessageView struct {
	Title       string
	Description string
	URL         string
	Color       int
	Footer      string
	Timestamp   time.Time
}

// Messenger publishes bot output to chat channels.
type Messenger interface {
	SendView(ctx context.Context, channelID string, view MessageView) (string, error)
	EditView(ctx context.Context, channelID, messageID string, view MessageView) error
	SendText(ctx context.Context, channelID, content string) (string, error)
	// ResolveRoleMention maps a role name (case-insensitive, exact) to a
	// mention token. The second return reports whether a role matched.
	ResolveRoleMention(ctx context.Context, guildID, roleName string) (string, bool)
}

// StandingsSource fetches and parses one standings page.
type StandingsSource interface {
	FetchStandings(ctx context.Context, pageURL string) ([]standings.Row, error)
}

// Invoker identifies the user behind a command and what the connector could
// establish about them.
type Invoker struct {
	GuildID   string
	UserID    string
	RoleNames []string
	IsAdmin   bool
}

// HasRole reports whether the invoker carries the role, compared
// case-insensitively against trimmed names.
func (inv Invoker) HasRole(name string) bool {
	want := normalizeRoleName(name)
	if want == "" {
		return false
	}
	for _, have := range inv.RoleNames {
		if normalizeRoleName(have) == want {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the invoker carries at least one of the roles.
func (inv Invoker) HasAnyRole(names []string) bool {
	for _, name := range names {
		if inv.HasRole(name) {
			return true
		}
	}
	return false
}

func normalizeRoleName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
