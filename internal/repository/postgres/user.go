package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/articlehub/internal/apperrors"
	"github.com/nkiryanov/articlehub/internal/models"
	"github.com/nkiryanov/articlehub/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO users (id, name, email, username, password)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, created_at, name, email, username, password
`

func (r *UserRepo) CreateUser(ctx context.Context, params repository.CreateUserParams) (models.User, error) {
	user, err := fetchOne(ctx, r.DB, createUser, rowToUser, uuid.New(), params.Name, params.Email, params.Username, params.HashedPassword)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByUsername = `-- name: GetUserByUsername
SELECT id, created_at, name, email, username, password
FROM users
WHERE username = $1
`

func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	return userOrNotFound(fetchOne(ctx, r.DB, getUserByUsername, rowToUser, username))
}

func userOrNotFound(user models.User, err error) (models.User, error) {
	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Name, &u.Email, &u.Username, &u.HashedPassword)
	return u, err
}
