// Package devserver is a local implementation of the plog backend API.
//
// It exists so the client can be developed and tested without the hosted
// service: same endpoints, same payloads, same verification semantics
// (token containment in the post's title and body, terminal disown).
package devserver

import (
	"github.com/go-chi/chi/v5"

	"github.com/docqmentary/plog/internal/devserver/handlers"
	"github.com/docqmentary/plog/internal/posts"
	"github.com/docqmentary/plog/internal/storage"
)

// Options configures optional dev server behavior.
type Options struct {
	// Fetcher, when non-nil, lets the verify endpoint fetch the post itself
	// if the client supplied no title/body hints.
	Fetcher *posts.Fetcher
}

// NewRouter creates the HTTP router with all backend routes.
func NewRouter(store *storage.Store, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)

	r.Get("/healthz", handlers.Health())
	r.Post("/auth/google/callback", handlers.Login(store))

	// Everything below requires a valid X-API-Key.
	r.Group(func(auth chi.Router) {
		auth.Use(handlers.Authenticator(store))

		auth.Get("/blogs", handlers.ListBlogs(store))
		auth.Post("/blogs", handlers.CreateBlog(store))
		auth.Post("/blogs/{id}/verify", handlers.VerifyBlog(store, opts.Fetcher))
		auth.Post("/blogs/{id}/disown", handlers.DisownBlog(store))

		auth.Get("/blogs/{id}/collaborators", handlers.ListCollaborators(store))
		auth.Post("/blogs/{id}/collaborators", handlers.InviteCollaborator(store))
		auth.Delete("/blogs/{id}/collaborators/{collaboratorID}", handlers.RevokeCollaborator(store))
	})

	return r
}
