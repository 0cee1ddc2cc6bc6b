package auth

import (
	"crypto/subtle"

	"liveask/internal/domain"
)

// Authorize maps a supplied token to the role it grants on the event.
// An empty token grants public read access; anything else must match the
// stored moderator token exactly. The comparison is constant-time so the
// check leaks nothing about the secret.
//
// Authorize is a pure check: it performs no lookups and emits no state change.
func Authorize(event *domain.Event, suppliedToken string) domain.Role {
	if event == nil {
		return domain.RoleDenied
	}
	if suppliedToken == "" {
		return domain.RolePublic
	}
	if subtle.ConstantTimeCompare([]byte(event.ModeratorToken), []byte(suppliedToken)) == 1 {
		return domain.RoleModerator
	}
	return domain.RoleDenied
}
