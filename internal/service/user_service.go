package service

import (
	"context"
	"errors"

	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/repository"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// UserService manages accounts on behalf of authenticated callers.
// Role requirements are enforced by the access guard before these methods run.
type UserService struct {
	store      repository.Store
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, store repository.Store) *UserService {
	return &UserService{store: store, bcryptCost: cfg.Auth.BcryptCost}
}

// UserUpdate carries optional changes for an account.
type UserUpdate struct {
	Username *string
	Role     *domain.Role
}

// List returns every account ordered by id.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.store.Repositories().Users.List(ctx)
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return users, nil
}

// Get returns one account.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.store.Repositories().Users.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User", "user_id", id)
	}
	return user, nil
}

// Create adds an account.
func (s *UserService) Create(ctx context.Context, input NewUser) (*domain.User, error) {
	return createUser(ctx, s.store, s.bcryptCost, input, "Invalid role")
}

// Update applies the provided changes to an existing account.
func (s *UserService) Update(ctx context.Context, id int64, update UserUpdate) (*domain.User, error) {
	if update.Role != nil && !update.Role.Valid() {
		return nil, apperrors.NewValidationError("Invalid role", map[string]any{"role": *update.Role})
	}
	if update.Username != nil && *update.Username == "" {
		return nil, apperrors.NewValidationError("username cannot be empty", nil)
	}

	var updated *domain.User
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		user, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if update.Username != nil {
			user.Username = *update.Username
		}
		if update.Role != nil {
			user.Role = *update.Role
		}
		if err := repos.Users.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("User", map[string]any{"user_id": id})
		}
		return nil, storageError(err, "username already exists")
	}
	return updated, nil
}

// Delete removes an account.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	err := s.store.WithinTx(ctx, func(repos repository.Repositories) error {
		return repos.Users.Delete(ctx, id)
	})
	if err != nil {
		return notFoundOr(err, "User", "user_id", id)
	}
	return nil
}

func notFoundOr(err error, resource, key string, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{key: id})
	}
	return apperrors.NewStorageError(err)
}
