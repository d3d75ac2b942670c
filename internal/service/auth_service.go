package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/repository"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

const (
	invalidCredentials  = "Invalid username or password"
	registerInvalidRole = "Invalid role. Allowed roles: Student, Faculty, Contributor"
)

// AuthService coordinates registration, login and logout flows.
type AuthService struct {
	store      repository.Store
	guard      *auth.AccessGuard
	tokens     *auth.TokenManager
	throttle   *auth.LoginThrottle
	dispatcher events.Dispatcher
	bcryptCost int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	Store      repository.Store
	Guard      *auth.AccessGuard
	Tokens     *auth.TokenManager
	Throttle   *auth.LoginThrottle
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		store:      deps.Store,
		guard:      deps.Guard,
		tokens:     deps.Tokens,
		throttle:   deps.Throttle,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// NewUser describes an account to create.
type NewUser struct {
	Username string
	Password string
	Role     domain.Role
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, input NewUser) (*domain.User, error) {
	user, err := createUser(ctx, s.store, s.bcryptCost, input, registerInvalidRole)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, events.EventUserRegistered, events.Actor{Username: user.Username, Role: user.Role},
		events.UserRegisteredPayload{UserID: user.ID, Username: user.Username, Role: user.Role})
	return user, nil
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, *auth.IssuedToken, error) {
	if !s.throttle.Allow(ctx, username) {
		return nil, nil, apperrors.NewTooManyRequests("Too many failed login attempts. Try again later.")
	}

	user, err := s.store.Repositories().Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.throttle.Fail(ctx, username)
			return nil, nil, apperrors.NewUnauthorized(invalidCredentials)
		}
		return nil, nil, apperrors.NewStorageError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.throttle.Fail(ctx, username)
		return nil, nil, apperrors.NewUnauthorized(invalidCredentials)
	}
	s.throttle.Reset(ctx, username)

	token, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}
	return user, token, nil
}

// Logout revokes the token the caller authenticated with.
func (s *AuthService) Logout(ctx context.Context, identity *domain.Identity) error {
	if identity == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	s.guard.Revoke(identity)
	publish(ctx, s.dispatcher, events.EventUserLoggedOut, events.Actor{Username: identity.Username, Role: identity.Role},
		events.UserLoggedOutPayload{TokenID: identity.TokenID})
	return nil
}

func createUser(ctx context.Context, store repository.Store, cost int, input NewUser, invalidRole string) (*domain.User, error) {
	if input.Username == "" || input.Password == "" || input.Role == "" {
		return nil, apperrors.NewValidationError("Missing required fields", nil)
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError(invalidRole, nil)
	}

	hash, err := auth.HashPassword(input.Password, cost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{Username: input.Username, PasswordHash: hash, Role: input.Role}
	err = store.WithinTx(ctx, func(repos repository.Repositories) error {
		return repos.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, storageError(err, "username already exists")
	}
	return user, nil
}

func storageError(err error, conflictMessage string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperrors.NewConflict(conflictMessage, nil)
	}
	return apperrors.NewStorageError(err)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, eventType events.EventType, actor events.Actor, payload interface{}) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
