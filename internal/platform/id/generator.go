package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Generator creates opaque IDs suitable for external references.
type Generator interface {
	NewID() (string, error)
}

// TokenGenerator produces short uppercase hex tokens. They end up in chat
// messages and get retyped by hand, so they stay at six characters.
type TokenGenerator struct{}

func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

func (g *TokenGenerator) NewID() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
