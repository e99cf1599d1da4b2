package article

import (
	"context"
	"fmt"

	"github.com/nkiryanov/articlehub/internal/models"
	"github.com/nkiryanov/articlehub/internal/repository"
)

type ArticleService struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *ArticleService {
	return &ArticleService{storage: storage}
}

func (s *ArticleService) List(ctx context.Context) ([]models.Article, error) {
	articles, err := s.storage.Article().ListArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("can't list articles. Err: %w", err)
	}
	return articles, nil
}

// Returns apperrors.ErrArticleNotFound if there is no such article
func (s *ArticleService) Get(ctx context.Context, id int64) (models.Article, error) {
	return s.storage.Article().GetArticle(ctx, id)
}

func (s *ArticleService) Create(ctx context.Context, title string, body string, author string) (models.Article, error) {
	article, err := s.storage.Article().CreateArticle(ctx, title, body, author)
	if err != nil {
		return article, fmt.Errorf("can't create article. Err: %w", err)
	}
	return article, nil
}

// Returns apperrors.ErrArticleNotFound if there is no such article
func (s *ArticleService) Update(ctx context.Context, id int64, title string, body string) (models.Article, error) {
	return s.storage.Article().UpdateArticle(ctx, id, title, body)
}

// Delete article in its own transaction
// Missing article is not an error, nothing is deleted then
func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	return s.storage.InTx(ctx, func(tx repository.Storage) error {
		_, err := tx.Article().DeleteArticle(ctx, id)
		return err
	})
}
