// Package auth provides event token generation and the authorization gate
// that maps a supplied token to an access role.
package auth

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// tokenAlphabet is the character set for generated tokens. URL-safe so both
// tokens can be embedded in share links without escaping.
const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	// publicTokenLength is long enough to make public tokens unguessable
	// while keeping share URLs short.
	publicTokenLength = 12
	// moderatorTokenLength gives the moderator secret a far larger space;
	// it gates destructive operations.
	moderatorTokenLength = 28
)

// Generator implements domain.TokenGenerator backed by nanoid.
type Generator struct{}

// NewPublicToken returns a new unguessable public event token.
func (Generator) NewPublicToken() (string, error) {
	id, err := nanoid.Generate(tokenAlphabet, publicTokenLength)
	if err != nil {
		return "", fmt.Errorf("generate public token: %w", err)
	}
	return id, nil
}

// NewModeratorToken returns a new moderator secret.
func (Generator) NewModeratorToken() (string, error) {
	id, err := nanoid.Generate(tokenAlphabet, moderatorTokenLength)
	if err != nil {
		return "", fmt.Errorf("generate moderator token: %w", err)
	}
	return id, nil
}
