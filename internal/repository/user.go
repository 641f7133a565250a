package repository

import (
	"context"

	"quill-blog/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// CreateBootstrapped inserts user as an admin while fewer than
	// bootstrapAdmins users exist. The count and the insert are one
	// statement, so concurrent registrations cannot both see a free slot.
	// A user already carrying RoleAdmin stays admin. The stored role is
	// written back to user.Role.
	CreateBootstrapped(ctx context.Context, user *domain.User, bootstrapAdmins int) (int64, error)
}
