package statefile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

// document is the on-disk shape of the whole bot state. Key names are part of
// the persisted format and must not change.
type document struct {
	Guilds           map[string]*guildDocument     `json:"guilds"`
	Standings        map[string]*standingsDocument `json:"standings"`
	ScheduledMatches []matchDocument               `json:"scheduled_matches"`
}

type guildDocument struct {
	StandingsChannels      map[string]string `json:"standings_channels,omitempty"`
	ScheduleChannels       map[string]string `json:"schedule_channels,omitempty"`
	ScheduleMessageIDs     map[string]string `json:"schedule_message_ids,omitempty"`
	CurrentWeek            map[string]int    `json:"current_week,omitempty"`
	LogsChannelID          string            `json:"logs_channel_id,omitempty"`
	AnnouncementsChannelID string            `json:"announcements_channel_id,omitempty"`
	// SchedulerEnabled is a pointer so an absent key keeps the default (true)
	// while an explicit false survives a save/load cycle.
	SchedulerEnabled *bool `json:"scheduler_enabled,omitempty"`
}

type standingsDocument struct {
	LastHash  string `json:"last_hash,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

type matchDocument struct {
	ID            string          `json:"id"`
	League        string          `json:"league"`
	Week          int             `json:"week"`
	Team          string          `json:"team"`
	Opponent      string          `json:"opponent"`
	ScheduledISO  string          `json:"scheduled_iso"`
	GuildID       string          `json:"guild_id,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
	RemindersSent map[string]bool `json:"reminders_sent,omitempty"`
}

// Store owns the single state file. All repositories in this package share
// one Store so every mutation is serialized and persisted atomically.
type Store struct {
	mu   sync.Mutex
	path string
	doc  document
}

// Open loads the state file at path. A missing or empty file starts a fresh
// document; a file that exists but does not decode is an error, never
// silently discarded state.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, crerr.New("state file path is required")
	}

	st := &Store{path: path, doc: emptyDocument()}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, crerr.Wrapf(err, "read state file %s", path)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return st, nil
	}

	var doc document
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, crerr.Wrapf(err, "decode state file %s", path)
	}
	normalizeDocument(&doc)
	st.doc = doc

	return st, nil
}

// Path returns the backing file location.
func (s *Store) Path() string {
	return s.path
}

func emptyDocument() document {
	return document{
		Guilds:           make(map[string]*guildDocument),
		Standings:        make(map[string]*standingsDocument),
		ScheduledMatches: make([]matchDocument, 0),
	}
}

func normalizeDocument(doc *document) {
	if doc.Guilds == nil {
		doc.Guilds = make(map[string]*guildDocument)
	}
	if doc.Standings == nil {
		doc.Standings = make(map[string]*standingsDocument)
	}
	if doc.ScheduledMatches == nil {
		doc.ScheduledMatches = make([]matchDocument, 0)
	}
	for _, g := range doc.Guilds {
		if g == nil {
			continue
		}
		if g.StandingsChannels == nil {
			g.StandingsChannels = make(map[string]string)
		}
		if g.ScheduleChannels == nil {
			g.ScheduleChannels = make(map[string]string)
		}
		if g.ScheduleMessageIDs == nil {
			g.ScheduleMessageIDs = make(map[string]string)
		}
		if g.CurrentWeek == nil {
			g.CurrentWeek = make(map[string]int)
		}
	}
}

// guild returns the guild entry, creating it when absent.
func (d *document) guild(guildID string) *guildDocument {
	g, ok := d.Guilds[guildID]
	if !ok || g == nil {
		g = &guildDocument{}
		d.Guilds[guildID] = g
	}
	if g.StandingsChannels == nil {
		g.StandingsChannels = make(map[string]string)
	}
	if g.ScheduleChannels == nil {
		g.ScheduleChannels = make(map[string]string)
	}
	if g.ScheduleMessageIDs == nil {
		g.ScheduleMessageIDs = make(map[string]string)
	}
	if g.CurrentWeek == nil {
		g.CurrentWeek = make(map[string]int)
	}
	return g
}

// standings returns the league entry, creating it when absent.
func (d *document) standings(leagueKey string) *standingsDocument {
	entry, ok := d.Standings[leagueKey]
	if !ok || entry == nil {
		entry = &standingsDocument{}
		d.Standings[leagueKey] = entry
	}
	return entry
}

// update runs fn under the lock and persists the document when fn succeeds.
func (s *Store) update(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(&s.doc); err != nil {
		return err
	}
	return s.persistLocked()
}

// view runs fn under the lock without persisting. fn must copy anything it
// keeps past the call.
func (s *Store) view(fn func(doc *document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.doc)
}

// persistLocked writes the whole document to a temp file in the target
// directory and renames it over the state file, so readers never observe a
// half-written document. Callers must hold s.mu.
func (s *Store) persistLocked() error {
	raw, err := sonic.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return crerr.Wrap(err, "encode state document")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return crerr.Wrapf(err, "create state dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return crerr.Wrap(err, "create temp state file")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return crerr.Wrap(err, "write temp state file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return crerr.Wrap(err, "close temp state file")
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return crerr.Wrapf(err, "replace state file %s", s.path)
	}

	return nil
}
