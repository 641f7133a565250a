package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quill-blog/internal/domain"
)

func TestGuards(t *testing.T) {
	admin := IdentityFor(&domain.User{ID: 1, Name: "Alice", Role: domain.RoleAdmin}, "s1")
	reader := IdentityFor(&domain.User{ID: 3, Name: "Carol", Role: domain.RoleReader}, "s3")
	// a stale role without a user id is still anonymous
	roleOnly := Identity{Role: domain.RoleAdmin}

	tests := []struct {
		name          string
		id            Identity
		authenticated error
		privileged    error
	}{
		{name: "anonymous", id: Anonymous, authenticated: domain.ErrUnauthenticated, privileged: domain.ErrForbidden},
		{name: "reader", id: reader, authenticated: nil, privileged: domain.ErrForbidden},
		{name: "admin", id: admin, authenticated: nil, privileged: nil},
		{name: "role without user", id: roleOnly, authenticated: domain.ErrUnauthenticated, privileged: domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, RequireAuthenticated(tt.id), tt.authenticated)
			assert.ErrorIs(t, RequirePrivileged(tt.id), tt.privileged)
		})
	}
}

func TestIdentityFor(t *testing.T) {
	id := IdentityFor(&domain.User{ID: 2, Name: "Bob", Email: "bob@x.com", Role: domain.RoleReader}, "sess")

	assert.Equal(t, int64(2), id.UserID)
	assert.Equal(t, "Bob", id.Name)
	assert.Equal(t, "bob@x.com", id.Email)
	assert.Equal(t, "sess", id.SessionID)
	assert.True(t, id.Authenticated())
	assert.False(t, id.Privileged())
}
