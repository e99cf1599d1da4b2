package handlers

import (
	"net/http"
)

// Page without data, e.g. home or about
func handleStatic(renderer renderer, page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderer.Page(w, r, http.StatusOK, page, nil)
	}
}
