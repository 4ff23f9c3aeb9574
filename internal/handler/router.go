package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/addressbook/addressbook-go/internal/middleware"
	"github.com/addressbook/addressbook-go/internal/service"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Contacts *service.ContactService

	Limiter         middleware.Limiter
	RateLimitWindow time.Duration
	Metrics         *middleware.Metrics
	Logger          *zap.Logger

	// BaseURL overrides the host used in confirmation links.
	BaseURL string
	// Ping reports storage health for /health. Optional.
	Ping func(ctx context.Context) error
}

// NewRouter wires every route under /api plus /health and /metrics.
func NewRouter(d Deps) http.Handler {
	authHandler := NewAuthHandler(d.Auth, d.BaseURL, d.Logger)
	userHandler := NewUserHandler(d.Users, d.Logger)
	contactHandler := NewContactHandler(d.Contacts, d.Logger)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Handle("/metrics", d.Metrics.Handler())
	}

	r.Get("/health", healthHandler(d.Ping))

	requireUser := middleware.RequireUser(d.Auth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimit(d.Limiter, "auth", d.RateLimitWindow))
			r.Post("/signup", authHandler.HandleSignup)
			r.Get("/confirmed_email/{token}", authHandler.HandleConfirmEmail)
			r.Post("/request_email", authHandler.HandleRequestEmail)
			r.Post("/login", authHandler.HandleLogin)
			r.Get("/refresh_token", authHandler.HandleRefresh)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/me", userHandler.HandleMe)
			r.Patch("/avatar", userHandler.HandleUpdateAvatar)
		})

		r.Route("/contacts", func(r chi.Router) {
			r.Use(requireUser)
			r.Use(middleware.RateLimit(d.Limiter, "contacts", d.RateLimitWindow))
			r.Get("/", contactHandler.HandleList)
			r.Post("/", contactHandler.HandleCreate)
			r.Get("/birthdays", contactHandler.HandleBirthdays)
			r.Get("/birthdays/", contactHandler.HandleBirthdays)
			r.Get("/{contact_id}", contactHandler.HandleGet)
			r.Patch("/{contact_id}", contactHandler.HandleUpdate)
			r.Delete("/{contact_id}", contactHandler.HandleDelete)
		})
	})

	return r
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
