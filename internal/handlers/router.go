package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/nkiryanov/articlehub/internal/handlers/middleware"
	"github.com/nkiryanov/articlehub/internal/handlers/render"
	"github.com/nkiryanov/articlehub/internal/logger"
	"github.com/nkiryanov/articlehub/internal/models"
	"github.com/nkiryanov/articlehub/internal/service/user"
	"github.com/nkiryanov/articlehub/internal/session"
)

func NewRouter(
	userService userService,
	articleService articleService,
	sessions sessionStore,
	renderer renderer,
	logger logger.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.LoggerMiddleware(logger),
		chimw.Recoverer,
	)

	r.NotFound(renderer.NotFound)

	r.Get("/", handleStatic(renderer, render.PageHome))
	r.Get("/about", handleStatic(renderer, render.PageAbout))
	r.Get("/articles", handleListArticles(articleService, renderer, render.PageArticles))
	r.Get("/articles/{id}", handleArticle(articleService, renderer))
	r.Get("/articles/{id}/", handleArticle(articleService, renderer))

	register := handleRegister(userService, sessions, renderer, logger)
	r.Get("/register", register)
	r.Post("/register", register)

	login := handleLogin(userService, sessions, renderer, logger)
	r.Get("/login", login)
	r.Post("/login", login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin(sessions, logger))

		r.Get("/logout", handleLogout(sessions, logger))
		r.Get("/dashboard", handleListArticles(articleService, renderer, render.PageDashboard))

		addArticle := handleAddArticle(articleService, sessions, renderer, logger)
		r.Get("/add_article", addArticle)
		r.Post("/add_article", addArticle)

		editArticle := handleEditArticle(articleService, sessions, renderer, logger)
		r.Get("/edit_article/{id}", editArticle)
		r.Post("/edit_article/{id}", editArticle)
		r.Post("/delete_article/{id}", handleDeleteArticle(articleService, sessions, renderer, logger))
	})

	return r
}

type userService interface {
	// Has to return apperrors.ErrUserAlreadyExists if username is taken
	Register(ctx context.Context, params user.RegisterParams) (models.User, error)

	// Has to return apperrors.ErrUserNotFound if user not found or password does not match
	Login(ctx context.Context, username string, password string) (models.User, error)
}

type articleService interface {
	List(ctx context.Context) ([]models.Article, error)

	// Get and Update have to return apperrors.ErrArticleNotFound if article does not exist
	Get(ctx context.Context, id int64) (models.Article, error)
	Update(ctx context.Context, id int64, title string, body string) (models.Article, error)

	Create(ctx context.Context, title string, body string, author string) (models.Article, error)

	// Missing article is not an error
	Delete(ctx context.Context, id int64) error
}

type sessionStore interface {
	IsLoggedIn(r *http.Request) bool
	Username(r *http.Request) string
	Login(w http.ResponseWriter, r *http.Request, username string, flash session.Flash) error
	Logout(w http.ResponseWriter, r *http.Request, flash session.Flash) error
	AddFlash(w http.ResponseWriter, r *http.Request, flash session.Flash) error
}

type renderer interface {
	Page(w http.ResponseWriter, r *http.Request, status int, name string, data any)
	NotFound(w http.ResponseWriter, r *http.Request)
	ServerError(w http.ResponseWriter, r *http.Request, err error)
}
