package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nkiryanov/articlehub/internal/apperrors"
	"github.com/nkiryanov/articlehub/internal/handlers/forms"
	"github.com/nkiryanov/articlehub/internal/handlers/render"
	"github.com/nkiryanov/articlehub/internal/logger"
	"github.com/nkiryanov/articlehub/internal/models"
	"github.com/nkiryanov/articlehub/internal/session"
)

type articlesPage struct {
	Articles []models.Article
	Msg      string
}

// List all articles on public list or dashboard
func handleListArticles(articleService articleService, renderer renderer, page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		articles, err := articleService.List(r.Context())
		if err != nil {
			renderer.ServerError(w, r, err)
			return
		}

		data := articlesPage{Articles: articles}
		if len(articles) == 0 {
			data.Msg = "No Articles Found"
		}

		renderer.Page(w, r, http.StatusOK, page, data)
	}
}

type articlePage struct {
	Article models.Article
}

func handleArticle(articleService articleService, renderer renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := articleID(r)
		if !ok {
			renderer.NotFound(w, r)
			return
		}

		article, err := articleService.Get(r.Context(), id)
		switch {
		case errors.Is(err, apperrors.ErrArticleNotFound):
			renderer.NotFound(w, r)
			return
		case err != nil:
			renderer.ServerError(w, r, err)
			return
		}

		renderer.Page(w, r, http.StatusOK, render.PageArticle, articlePage{Article: article})
	}
}

type articleFormPage struct {
	Action string
	Form   forms.ArticleForm
	Errors forms.Errors
}

func handleAddArticle(articleService articleService, sessions sessionStore, renderer renderer, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := articleFormPage{Action: "/add_article"}

		if r.Method != http.MethodPost {
			renderer.Page(w, r, http.StatusOK, render.PageAddArticle, page)
			return
		}

		form, errs, err := forms.Bind[forms.ArticleForm](w, r)
		if err != nil {
			renderer.Page(w, r, http.StatusBadRequest, render.PageAddArticle, page)
			return
		}
		if errs != nil {
			page.Form, page.Errors = form, errs
			renderer.Page(w, r, http.StatusOK, render.PageAddArticle, page)
			return
		}

		article, err := articleService.Create(r.Context(), form.Title, form.Body, sessions.Username(r))
		if err != nil {
			renderer.ServerError(w, r, err)
			return
		}

		logger.Info("article created", "id", article.ID, "author", article.Author)
		flashAndRedirect(w, r, sessions, logger, session.Flash{Category: session.CategorySuccess, Message: "Article Created"}, "/dashboard")
	}
}

func handleEditArticle(articleService articleService, sessions sessionStore, renderer renderer, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := articleID(r)
		if !ok {
			renderer.NotFound(w, r)
			return
		}
		page := articleFormPage{Action: "/edit_article/" + strconv.FormatInt(id, 10)}

		if r.Method != http.MethodPost {
			article, err := articleService.Get(r.Context(), id)
			switch {
			case errors.Is(err, apperrors.ErrArticleNotFound):
				renderer.NotFound(w, r)
				return
			case err != nil:
				renderer.ServerError(w, r, err)
				return
			}

			page.Form = forms.ArticleForm{Title: article.Title, Body: article.Body}
			renderer.Page(w, r, http.StatusOK, render.PageEditArticle, page)
			return
		}

		form, errs, err := forms.Bind[forms.ArticleForm](w, r)
		if err != nil {
			renderer.Page(w, r, http.StatusBadRequest, render.PageEditArticle, page)
			return
		}
		if errs != nil {
			page.Form, page.Errors = form, errs
			renderer.Page(w, r, http.StatusOK, render.PageEditArticle, page)
			return
		}

		_, err = articleService.Update(r.Context(), id, form.Title, form.Body)
		switch {
		case errors.Is(err, apperrors.ErrArticleNotFound):
			renderer.NotFound(w, r)
			return
		case err != nil:
			renderer.ServerError(w, r, err)
			return
		}

		logger.Info("article updated", "id", id, "by", sessions.Username(r))
		flashAndRedirect(w, r, sessions, logger, session.Flash{Category: session.CategorySuccess, Message: "Article Updated"}, "/dashboard")
	}
}

// Delete does not check the article exists, missing or malformed id deletes nothing
func handleDeleteArticle(articleService articleService, sessions sessionStore, renderer renderer, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := articleID(r); ok {
			if err := articleService.Delete(r.Context(), id); err != nil {
				renderer.ServerError(w, r, err)
				return
			}
			logger.Info("article deleted", "id", id, "by", sessions.Username(r))
		}

		flashAndRedirect(w, r, sessions, logger, session.Flash{Category: session.CategorySuccess, Message: "Article Deleted"}, "/dashboard")
	}
}

func articleID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}
