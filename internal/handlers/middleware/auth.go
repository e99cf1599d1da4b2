package middleware

import (
	"net/http"

	"github.com/nkiryanov/articlehub/internal/session"
)

type sessionStore interface {
	IsLoggedIn(r *http.Request) bool
	AddFlash(w http.ResponseWriter, r *http.Request, flash session.Flash) error
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// Let only logged in users through
// Others are redirected to login page with a flash, wrapped handler is not called
func RequireLogin(sessions sessionStore, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessions.IsLoggedIn(r) {
				next.ServeHTTP(w, r)
				return
			}

			err := sessions.AddFlash(w, r, session.Flash{Category: session.CategoryDanger, Message: "Unauthorized, please login!"})
			if err != nil {
				l.Error("can't save session", "error", err)
			}
			http.Redirect(w, r, "/login", http.StatusFound)
		})
	}
}
