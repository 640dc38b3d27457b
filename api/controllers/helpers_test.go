package controllers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
)

// newTestRouter mounts a handler on a chi route so URL params resolve.
func newTestRouter(t *testing.T, pattern string, handler http.HandlerFunc) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.HandleFunc(pattern, handler)
	return r
}
