package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/articlehub/internal/apperrors"
	"github.com/nkiryanov/articlehub/internal/models"
	"github.com/nkiryanov/articlehub/internal/repository"
	"github.com/nkiryanov/articlehub/internal/service/auth"
)

type RegisterParams struct {
	Name     string
	Email    string
	Username string
	Password string
}

type UserService struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage) *UserService {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &UserService{
		hasher:  hasher,
		storage: storage,
	}
}

// Register new user
// Returns apperrors.ErrUserAlreadyExists if username is taken
func (s *UserService) Register(ctx context.Context, params RegisterParams) (models.User, error) {
	var user models.User

	if params.Password == "" {
		return user, errors.New("password must not be empty")
	}

	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	user, err = s.storage.User().CreateUser(ctx, repository.CreateUserParams{
		Name:           params.Name,
		Email:          params.Email,
		Username:       params.Username,
		HashedPassword: hash,
	})
	if err != nil {
		return user, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

// Login checks credentials
// Returns apperrors.ErrUserNotFound both for unknown username and for wrong password
func (s *UserService) Login(ctx context.Context, username string, password string) (models.User, error) {
	user, err := s.storage.User().GetUserByUsername(ctx, username)
	if err != nil {
		return user, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.User{}, apperrors.ErrUserNotFound
	}

	return user, nil
}
