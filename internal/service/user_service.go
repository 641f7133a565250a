package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"quill-blog/internal/domain"
	"quill-blog/internal/password"
	"quill-blog/internal/repository"
)

var validate = validator.New()

// UserService registers accounts and manages their login sessions.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*domain.Session, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Logout(ctx context.Context, sessionID string) error
	// Resolve returns the owner of a live session.
	Resolve(ctx context.Context, sessionID string) (*domain.User, error)
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// UserServiceConfig tunes credential hashing, session lifetime and role assignment.
type UserServiceConfig struct {
	Policy     password.Policy
	SessionTTL time.Duration
	// BootstrapAdmins is how many of the first registered accounts become admins.
	BootstrapAdmins int
	AdminEmails     []string
	Now             func() time.Time
}

type userService struct {
	users       repository.UserRepository
	sessions    repository.SessionRepository
	policy      password.Policy
	ttl         time.Duration
	bootstrap   int
	adminEmails map[string]struct{}
	now         func() time.Time
}

func NewUserService(users repository.UserRepository, sessions repository.SessionRepository, cfg UserServiceConfig) UserService {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, email := range cfg.AdminEmails {
		if email = normalizeEmail(email); email != "" {
			admins[email] = struct{}{}
		}
	}
	return &userService{
		users:       users,
		sessions:    sessions,
		policy:      cfg.Policy,
		ttl:         cfg.SessionTTL,
		bootstrap:   cfg.BootstrapAdmins,
		adminEmails: admins,
		now:         cfg.Now,
	}
}

func (s *userService) Register(ctx context.Context, name, email, pw string) (*domain.Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	fields := map[string]string{}
	if name == "" {
		fields["name"] = "Name is required."
	}
	if msg := checkEmail(email); msg != "" {
		fields["email"] = msg
	}
	if pw == "" {
		fields["password"] = "Password is required."
	}
	if err := domain.NewValidationError(fields); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.policy.Hash(pw)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         s.listedRole(email),
	}
	if _, err := s.users.CreateBootstrapped(ctx, user, s.bootstrap); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, err
	}

	return s.startSession(ctx, user.ID)
}

func (s *userService) Login(ctx context.Context, email, pw string) (*domain.Session, error) {
	email = normalizeEmail(email)

	fields := map[string]string{}
	if msg := checkEmail(email); msg != "" {
		fields["email"] = msg
	}
	if pw == "" {
		fields["password"] = "Password is required."
	}
	if err := domain.NewValidationError(fields); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUnknownEmail
		}
		return nil, err
	}

	if !password.Verify(user.PasswordHash, pw) {
		return nil, domain.ErrInvalidPassword
	}

	return s.startSession(ctx, user.ID)
}

func (s *userService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

func (s *userService) Resolve(ctx context.Context, sessionID string) (*domain.User, error) {
	if sessionID == "" {
		return nil, domain.ErrNotFound
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			return nil, err
		}
		return nil, domain.ErrNotFound
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func (s *userService) startSession(ctx context.Context, userID int64) (*domain.Session, error) {
	now := s.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	return session, nil
}

// listedRole is the role granted by configuration alone. Bootstrap admins
// are decided by the repository at insert time.
func (s *userService) listedRole(email string) domain.Role {
	if _, ok := s.adminEmails[email]; ok {
		return domain.RoleAdmin
	}
	return domain.RoleReader
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func checkEmail(email string) string {
	if email == "" {
		return "Email is required."
	}
	if err := validate.Var(email, "email"); err != nil {
		return "Invalid email address."
	}
	return ""
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
