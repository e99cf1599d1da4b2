package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/articlehub/internal/apperrors"
	"github.com/nkiryanov/articlehub/internal/handlers/forms"
	"github.com/nkiryanov/articlehub/internal/handlers/render"
	"github.com/nkiryanov/articlehub/internal/logger"
	"github.com/nkiryanov/articlehub/internal/service/user"
	"github.com/nkiryanov/articlehub/internal/session"
)

type registerPage struct {
	Form   forms.RegisterForm
	Errors forms.Errors
}

func handleRegister(userService userService, sessions sessionStore, renderer renderer, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			renderer.Page(w, r, http.StatusOK, render.PageRegister, registerPage{})
			return
		}

		form, errs, err := forms.Bind[forms.RegisterForm](w, r)
		if err != nil {
			renderer.Page(w, r, http.StatusBadRequest, render.PageRegister, registerPage{})
			return
		}

		// Passwords are never sent back
		page := registerPage{
			Form: forms.RegisterForm{Name: form.Name, Email: form.Email, Username: form.Username},
		}

		if errs != nil {
			page.Errors = errs
			renderer.Page(w, r, http.StatusOK, render.PageRegister, page)
			return
		}

		_, err = userService.Register(r.Context(), user.RegisterParams{
			Name:     form.Name,
			Email:    form.Email,
			Username: form.Username,
			Password: form.Password,
		})
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			page.Errors = forms.Errors{"username": "Username is already taken"}
			renderer.Page(w, r, http.StatusOK, render.PageRegister, page)
			return
		case err != nil:
			renderer.ServerError(w, r, err)
			return
		}

		logger.Info("user registered", "username", form.Username)
		flashAndRedirect(w, r, sessions, logger, session.Flash{Category: session.CategorySuccess, Message: "You are now registered and can log in"}, "/login")
	}
}

type loginPage struct {
	Username string
	Error    string
}

func handleLogin(userService userService, sessions sessionStore, renderer renderer, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			renderer.Page(w, r, http.StatusOK, render.PageLogin, loginPage{})
			return
		}

		form, errs, err := forms.Bind[forms.LoginForm](w, r)
		if err != nil {
			renderer.Page(w, r, http.StatusBadRequest, render.PageLogin, loginPage{Error: "Invalid login"})
			return
		}
		if errs != nil {
			renderer.Page(w, r, http.StatusOK, render.PageLogin, loginPage{Error: "Invalid login"})
			return
		}

		u, err := userService.Login(r.Context(), form.Username, form.Password)
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			// Do not tell which one was wrong: username or password
			renderer.Page(w, r, http.StatusOK, render.PageLogin, loginPage{Username: form.Username, Error: "Invalid login"})
			return
		case err != nil:
			renderer.ServerError(w, r, err)
			return
		}

		err = sessions.Login(w, r, u.Username, session.Flash{Category: session.CategorySuccess, Message: "You are now logged in"})
		if err != nil {
			renderer.ServerError(w, r, err)
			return
		}

		http.Redirect(w, r, "/dashboard", http.StatusFound)
	}
}

func handleLogout(sessions sessionStore, logger logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := sessions.Logout(w, r, session.Flash{Category: session.CategorySuccess, Message: "You are now logged out"})
		if err != nil {
			logger.Error("can't clear session", "error", err)
		}

		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

// Failed flash is logged only, redirect happens anyway
func flashAndRedirect(w http.ResponseWriter, r *http.Request, sessions sessionStore, logger logger.Logger, flash session.Flash, url string) {
	if err := sessions.AddFlash(w, r, flash); err != nil {
		logger.Error("can't save session", "error", err)
	}

	http.Redirect(w, r, url, http.StatusFound)
}
