package command

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dangue13/rlvs-discord-bot/internal/domain/guild"
	"github.com/dangue13/rlvs-discord-bot/internal/domain/league"
	"github.com/dangue13/rlvs-discord-bot/internal/platform/logging"
	"github.com/dangue13/rlvs-discord-bot/internal/usecase"
)

// Request is one slash-command invocation, already translated from the chat
// platform's payload. Option values arrive as strings regardless of the
// declared option kind; handlers parse what they need.
type Request struct {
	Name    string
	Options map[string]string
	Invoker usecase.Invoker
}

// Option returns the trimmed option value, empty when absent.
func (r Request) Option(name string) string {
	return strings.TrimSpace(r.Options[name])
}

// Reply is the response shown to the invoking user. View renders as an
// embed; Content as plain text. Every command replies ephemerally, the
// shared channels only ever receive messages through the Messenger.
type Reply struct {
	Content   string
	View      *usecase.MessageView
	Ephemeral bool
}

// Handler routes slash commands to the use-case layer and shapes replies.
type Handler struct {
	standings *usecase.StandingsService
	scheduler *usecase.SchedulerService
	boards    *usecase.BoardService
	teams     *usecase.TeamDirectory
	guilds    guild.Repository
	leagues   league.Repository
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(
	standings *usecase.StandingsService,
	scheduler *usecase.SchedulerService,
	boards *usecase.BoardService,
	teams *usecase.TeamDirectory,
	guilds guild.Repository,
	leagues league.Repository,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		standings: standings,
		scheduler: scheduler,
		boards:    boards,
		teams:     teams,
		guilds:    guilds,
		leagues:   leagues,
		logger:    logger,
		validator: validator.New(),
	}
}

// Handle dispatches one invocation. Unknown names get a reply rather than a
// panic so a stale command registration never kills an interaction.
func (h *Handler) Handle(ctx context.Context, req Request) Reply {
	switch req.Name {
	case "schedule":
		return h.schedule(ctx, req)
	case "cancelmatch":
		return h.cancelMatch(ctx, req)
	case "matches":
		return h.matches(ctx, req)
	case "postmatches":
		return h.postMatches(ctx, req)
	case "poststandings":
		return h.postStandings(ctx, req)
	case "forcecheck":
		return h.forceCheck(ctx, req)
	case "setchannel":
		return h.setChannel(ctx, req)
	case "setweek":
		return h.setWeek(ctx, req)
	case "advanceweek":
		return h.advanceWeek(ctx, req)
	case "status":
		return h.status(ctx, req)
	case "help":
		return h.help(ctx, req)
	default:
		h.logger.WarnContext(ctx, "unknown command", "command", req.Name)
		return eph("Unknown command.")
	}
}

// AutocompleteTeams serves team-name suggestions while the user is still
// typing. Failures degrade to no suggestions; the command itself will
// surface the error when submitted.
func (h *Handler) AutocompleteTeams(ctx context.Context, leagueValue, query string) []string {
	names, err := h.teams.Suggest(ctx, leagueValue, query)
	if err != nil {
		h.logger.DebugContext(ctx, "team autocomplete failed", "league", leagueValue, "error", err)
		return nil
	}
	return names
}
