package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrUnconfigured          = errors.New("channel not configured")
	ErrTransport             = errors.New("standings fetch failed")
	ErrParse                 = errors.New("standings parse failed")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
