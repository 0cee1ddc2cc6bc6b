package auth

import (
	"testing"

	"liveask/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	event := &domain.Event{ID: "pub-token", ModeratorToken: "mod-secret"}
	otherEvent := &domain.Event{ID: "other-pub", ModeratorToken: "other-secret"}

	tests := []struct {
		name  string
		event *domain.Event
		token string
		want  domain.Role
	}{
		{"empty token grants public", event, "", domain.RolePublic},
		{"moderator token grants moderator", event, "mod-secret", domain.RoleModerator},
		{"wrong token is denied", event, "nope", domain.RoleDenied},
		{"public token is not a moderator credential", event, "pub-token", domain.RoleDenied},
		{"moderator token of another event is denied", otherEvent, "mod-secret", domain.RoleDenied},
		{"nil event is denied", nil, "mod-secret", domain.RoleDenied},
		{"nil event with empty token is denied", nil, "", domain.RoleDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.event, tt.token))
		})
	}
}

func TestNewTokens(t *testing.T) {
	var gen Generator
	pub, err := gen.NewPublicToken()
	require.NoError(t, err)
	mod, err := gen.NewModeratorToken()
	require.NoError(t, err)

	assert.Len(t, pub, publicTokenLength)
	assert.Len(t, mod, moderatorTokenLength)
	assert.NotEqual(t, pub, mod)

	for _, r := range pub + mod {
		assert.Contains(t, tokenAlphabet, string(r))
	}

	// Two generations must not collide.
	pub2, err := gen.NewPublicToken()
	require.NoError(t, err)
	assert.NotEqual(t, pub, pub2)
}
