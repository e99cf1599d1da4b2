package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/render"

	"github.com/nkiryanov/articlehub/internal/logger"
	"github.com/nkiryanov/articlehub/internal/session"
)

//go:embed templates/*.html
var templates embed.FS

// Page names, each one is a file in templates dir
const (
	PageHome        = "home"
	PageAbout       = "about"
	PageArticles    = "articles"
	PageArticle     = "article"
	PageRegister    = "register"
	PageLogin       = "login"
	PageDashboard   = "dashboard"
	PageAddArticle  = "add_article"
	PageEditArticle = "edit_article"
	PageNotFound    = "not_found"
	PageError       = "error"
)

var pages = []string{
	PageHome, PageAbout, PageArticles, PageArticle, PageRegister, PageLogin,
	PageDashboard, PageAddArticle, PageEditArticle, PageNotFound, PageError,
}

// Everything a page template gets
// Data is page specific, the rest is filled from session
type View struct {
	LoggedIn bool
	Username string
	Flashes  []session.Flash
	Data     any
}

type Renderer struct {
	pages    map[string]*template.Template
	sessions *session.Store
	logger   logger.Logger
}

func NewRenderer(sessions *session.Store, logger logger.Logger) (*Renderer, error) {
	parsed := make(map[string]*template.Template, len(pages))

	for _, name := range pages {
		tmpl, err := template.ParseFS(templates, "templates/base.html", "templates/article_form.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("can't parse template %q. Err: %w", name, err)
		}
		parsed[name] = tmpl
	}

	return &Renderer{
		pages:    parsed,
		sessions: sessions,
		logger:   logger,
	}, nil
}

// Render page with status code
// Pending flashes are popped and shown on this page
func (rr *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, ok := rr.pages[name]
	if !ok {
		rr.logger.Error("unknown page", "page", name)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	flashes, err := rr.sessions.Flashes(w, r)
	if err != nil {
		rr.logger.Warn("can't save session after popping flashes", "error", err)
	}

	view := View{
		LoggedIn: rr.sessions.IsLoggedIn(r),
		Username: rr.sessions.Username(r),
		Flashes:  flashes,
		Data:     data,
	}

	// Execute into buffer first, so half written page never reaches client
	buf := &bytes.Buffer{}
	if err := tmpl.ExecuteTemplate(buf, "base", view); err != nil {
		rr.logger.Error("can't execute template", "page", name, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	render.Status(r, status)
	render.HTML(w, r, buf.String())
}

func (rr *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	rr.Page(w, r, http.StatusNotFound, PageNotFound, nil)
}

// Log unexpected error and render generic error page
func (rr *Renderer) ServerError(w http.ResponseWriter, r *http.Request, err error) {
	rr.logger.Error("request failed", "method", r.Method, "uri", r.RequestURI, "error", err)
	rr.Page(w, r, http.StatusInternalServerError, PageError, nil)
}
