// Package auth carries the per-request identity and the authorization
// checks applied to post mutations.
package auth

import (
	"quill-blog/internal/domain"
)

// Identity is who the current request acts as. The zero value is the
// anonymous visitor.
type Identity struct {
	UserID    int64
	Name      string
	Email     string
	Role      domain.Role
	SessionID string
}

// Anonymous is the identity of a visitor without a session.
var Anonymous = Identity{}

// IdentityFor builds the identity of a signed-in user.
func IdentityFor(user *domain.User, sessionID string) Identity {
	return Identity{
		UserID:    user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		SessionID: sessionID,
	}
}

func (id Identity) Authenticated() bool {
	return id.UserID != 0
}

func (id Identity) Privileged() bool {
	return id.Authenticated() && id.Role == domain.RoleAdmin
}

// RequireAuthenticated guards post creation.
func RequireAuthenticated(id Identity) error {
	if !id.Authenticated() {
		return domain.ErrUnauthenticated
	}
	return nil
}

// RequirePrivileged guards post edit and delete.
func RequirePrivileged(id Identity) error {
	if !id.Privileged() {
		return domain.ErrForbidden
	}
	return nil
}
