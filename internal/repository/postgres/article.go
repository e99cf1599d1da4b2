package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nkiryanov/articlehub/internal/apperrors"
	"github.com/nkiryanov/articlehub/internal/models"
)

type ArticleRepo struct {
	DB DBTX
}

const listArticles = `-- name: ListArticles
SELECT id, created_at, title, body, author
FROM articles
ORDER BY id
`

func (r *ArticleRepo) ListArticles(ctx context.Context) ([]models.Article, error) {
	articles, err := fetchAll(ctx, r.DB, listArticles, rowToArticle)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return articles, nil
}

const getArticle = `-- name: GetArticle
SELECT id, created_at, title, body, author
FROM articles
WHERE id = $1
`

func (r *ArticleRepo) GetArticle(ctx context.Context, id int64) (models.Article, error) {
	return articleOrNotFound(fetchOne(ctx, r.DB, getArticle, rowToArticle, id))
}

const createArticle = `-- name: CreateArticle
INSERT INTO articles (title, body, author)
VALUES ($1, $2, $3)
RETURNING id, created_at, title, body, author
`

func (r *ArticleRepo) CreateArticle(ctx context.Context, title string, body string, author string) (models.Article, error) {
	article, err := fetchOne(ctx, r.DB, createArticle, rowToArticle, title, body, author)
	if err != nil {
		return article, fmt.Errorf("db error: %w", err)
	}

	return article, nil
}

const updateArticle = `-- name: UpdateArticle
UPDATE articles
SET title = $2, body = $3
WHERE id = $1
RETURNING id, created_at, title, body, author
`

func (r *ArticleRepo) UpdateArticle(ctx context.Context, id int64, title string, body string) (models.Article, error) {
	return articleOrNotFound(fetchOne(ctx, r.DB, updateArticle, rowToArticle, id, title, body))
}

const deleteArticle = `-- name: DeleteArticle
DELETE FROM articles
WHERE id = $1
`

func (r *ArticleRepo) DeleteArticle(ctx context.Context, id int64) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteArticle, id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

func articleOrNotFound(article models.Article, err error) (models.Article, error) {
	switch {
	case err == nil:
		return article, nil
	case errors.Is(err, pgx.ErrNoRows):
		return article, apperrors.ErrArticleNotFound
	default:
		return article, fmt.Errorf("db error: %w", err)
	}
}

func rowToArticle(row pgx.CollectableRow) (models.Article, error) {
	var a models.Article
	err := row.Scan(&a.ID, &a.CreatedAt, &a.Title, &a.Body, &a.Author)
	return a, err
}
