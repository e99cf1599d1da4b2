package repository

import (
	"context"

	"github.com/nkiryanov/articlehub/internal/models"
)

type CreateUserParams struct {
	Name           string
	Email          string
	Username       string
	HashedPassword string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with username exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by username
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// Article repository interface
type ArticleRepo interface {
	// All articles in insertion order
	ListArticles(ctx context.Context) ([]models.Article, error)

	// If article not found must return apperrors.ErrArticleNotFound
	GetArticle(ctx context.Context, id int64) (models.Article, error)

	CreateArticle(ctx context.Context, title string, body string, author string) (models.Article, error)

	// Replace title and body, author and created_at stay untouched
	// If article not found must return apperrors.ErrArticleNotFound
	UpdateArticle(ctx context.Context, id int64, title string, body string) (models.Article, error)

	// Return number of deleted rows, zero if article did not exist
	DeleteArticle(ctx context.Context, id int64) (int64, error)
}

type Storage interface {
	User() UserRepo
	Article() ArticleRepo

	// Run fn in transaction
	// Commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}
