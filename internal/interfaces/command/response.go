package command

import (
	"errors"
	"strings"

	"github.com/dangue13/rlvs-discord-bot/internal/usecase"
)

const adminsOnlyMessage = "❌ Admins only."

// eph wraps plain text as an ephemeral reply.
func eph(content string) Reply {
	return Reply{Content: content, Ephemeral: true}
}

// replyForError maps use-case errors onto user-facing replies. Validation
// and authorization failures carry their concrete reason; everything else
// collapses to a generic apology so internals never leak into chat.
func replyForError(err error) Reply {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		msg := userMessage(err, usecase.ErrUnauthorized)
		if msg == "scheduler access denied" {
			return eph("Permission denied.")
		}
		return eph(msg)
	case errors.Is(err, usecase.ErrNotFound):
		return eph("Match not found.")
	case errors.Is(err, usecase.ErrInvalidInput):
		return eph(userMessage(err, usecase.ErrInvalidInput))
	case errors.Is(err, usecase.ErrUnconfigured):
		return eph(userMessage(err, usecase.ErrUnconfigured))
	case errors.Is(err, usecase.ErrTransport), errors.Is(err, usecase.ErrParse),
		errors.Is(err, usecase.ErrDependencyUnavailable):
		return eph("The standings source is unavailable right now. Try again shortly.")
	default:
		return eph("Something went wrong. Try again shortly.")
	}
}

// userMessage strips the sentinel prefix so the reply reads as a sentence
// instead of a wrapped error chain.
func userMessage(err error, sentinel error) string {
	msg := err.Error()
	if prefix := sentinel.Error() + ": "; strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return msg
}
