package domain

import "time"

// Role controls which post mutations a user may perform.
type Role string

const (
	RoleReader Role = "reader"
	RoleAdmin  Role = "admin"
)

// User represents a registered account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Privileged reports whether the user may edit or delete any post.
func (u User) Privileged() bool {
	return u.Role == RoleAdmin
}
