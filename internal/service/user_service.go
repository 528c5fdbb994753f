package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/blog-api/internal/domain"
	"github.com/phrazzld/blog-api/internal/platform/logger"
	"github.com/phrazzld/blog-api/internal/service/auth"
	"github.com/phrazzld/blog-api/internal/store"
)

// UserService provides registration and credential checks.
type UserService interface {
	// Register creates a user with a hashed password.
	// Returns store.ErrUsernameExists if the username is taken.
	Register(ctx context.Context, username, password string) (*domain.User, error)

	// Authenticate returns the user when username and password match.
	// Returns auth.ErrInvalidCredentials otherwise, without revealing which part was wrong.
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
}

// unknownUserPassword seeds the hash compared against when a login names an
// unknown user, so that path costs the same bcrypt work as a wrong password.
const unknownUserPassword = "blog-api-unknown-user"

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	users  store.UserStore
	hasher auth.PasswordHasher
	logger *slog.Logger

	dummyHash func() (string, error)
}

var _ UserService = (*UserServiceImpl)(nil)

// NewUserService creates a new UserService
func NewUserService(users store.UserStore, hasher auth.PasswordHasher, logger *slog.Logger) *UserServiceImpl {
	if users == nil || hasher == nil {
		panic("user store and password hasher cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &UserServiceImpl{
		users:  users,
		hasher: hasher,
		logger: logger.With(slog.String("component", "user_service")),
		dummyHash: sync.OnceValues(func() (string, error) {
			return hasher.Hash(unknownUserPassword)
		}),
	}
}

// Register creates a user with a hashed password.
func (s *UserServiceImpl) Register(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, domain.NewValidationError("password", "must be at most 72 bytes", domain.ErrValidation)
		}
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	user, err := domain.NewUser(username, hash)
	if err != nil {
		return nil, domain.NewValidationError("username", "is required", domain.ErrValidation)
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("attempted to register existing username", slog.String("username", username))
		} else {
			log.Error("failed to save user", slog.String("error", err.Error()))
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.Info("user registered", slog.String("user_id", created.ID))
	return created, nil
}

// Authenticate checks a username/password pair.
func (s *UserServiceImpl) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown username")
			s.compareDummy(password)
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to look up user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Debug("login with wrong password", slog.String("user_id", user.ID))
			return nil, auth.ErrInvalidCredentials
		}
		log.Error("failed to compare password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	return user, nil
}

// compareDummy spends one password comparison on a throwaway hash.
func (s *UserServiceImpl) compareDummy(password string) {
	hash, err := s.dummyHash()
	if err != nil {
		return
	}
	_ = s.hasher.Compare(hash, password)
}
