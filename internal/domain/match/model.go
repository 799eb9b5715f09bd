package match

import (
	"strings"
	"time"
)

// Reminder threshold labels, longest lead first.
const (
	Reminder24h = "24h"
	Reminder1h  = "1h"
)

// Match is one scheduled fixture between two rosters.
type Match struct {
	ID            string
	LeagueKey     string
	Week          int
	Team          string
	Opponent      string
	ScheduledAt   time.Time
	GuildID       string
	CreatedBy     string
	RemindersSent map[string]bool
}

// ReminderSent reports whether the given threshold has already fired.
func (m Match) ReminderSent(label string) bool {
	return m.RemindersSent[label]
}

// HasID compares match ids case-insensitively; stored ids are uppercase but
// user input arrives in any case.
func (m Match) HasID(id string) bool {
	return strings.EqualFold(m.ID, strings.TrimSpace(id))
}
