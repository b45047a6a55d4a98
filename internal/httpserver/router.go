package httpserver

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"assetbase/internal/assets"
	"assetbase/internal/auth"
	"assetbase/internal/categories"
	"assetbase/internal/metrics"
	"assetbase/internal/reports"
)

type RouterDeps struct {
	Logger         *slog.Logger
	AuthHandler    *auth.Handler
	Assets         *assets.Handler
	Categories     *categories.Handler
	Reports        *reports.Handler
	Tokens         *auth.TokenIssuer
	Sessions       *auth.SessionManager
	Metrics        *metrics.Collector
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

// NewRouter wires all routes. Protected routes resolve claims first — bearer
// header or session cookie, in that order — and then pass through the role
// gate for the operation.
func NewRouter(deps RouterDeps) http.Handler {
	mux := chi.NewRouter()

	mux.Use(RequestID)
	mux.Use(chimiddleware.Recoverer)
	if deps.Metrics != nil {
		mux.Use(deps.Metrics.Middleware)
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	if deps.Gatherer != nil {
		mux.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	bearer := &auth.BearerAuthenticator{Tokens: deps.Tokens}
	if deps.Metrics != nil {
		bearer.Metrics = deps.Metrics
	}
	requireAuth := auth.RequireAuth(
		bearer,
		&auth.SessionAuthenticator{Sessions: deps.Sessions},
	)

	mux.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/login", deps.AuthHandler.Login)
			ar.Post("/register", deps.AuthHandler.Register)
			ar.Post("/reset-password", deps.AuthHandler.ResetPassword)
			ar.Get("/github", deps.AuthHandler.GithubLogin)
			ar.Get("/github/callback", deps.AuthHandler.GithubCallback)
			ar.With(requireAuth).Get("/me", deps.AuthHandler.Me)
			ar.With(requireAuth).Post("/logout", deps.AuthHandler.Logout)
		})

		api.Group(func(protected chi.Router) {
			protected.Use(requireAuth)

			protected.Route("/assets", func(r chi.Router) {
				r.With(auth.RequireRole(auth.RoleViewer)).Get("/", deps.Assets.ListHandler)
				r.With(auth.RequireRole(auth.RoleViewer)).Get("/{id}", deps.Assets.GetHandler)
				r.With(auth.RequireRole(auth.RoleManager)).Post("/", deps.Assets.CreateHandler)
				r.With(auth.RequireRole(auth.RoleManager)).Put("/{id}", deps.Assets.UpdateHandler)
				r.With(auth.RequireRole(auth.RoleManager)).Delete("/{id}", deps.Assets.DeleteHandler)
			})

			protected.Route("/categories", func(r chi.Router) {
				r.With(auth.RequireRole(auth.RoleViewer)).Get("/", deps.Categories.ListHandler)
				r.With(auth.RequireRole(auth.RoleManager)).Post("/", deps.Categories.CreateHandler)
				r.With(auth.RequireRole(auth.RoleManager)).Put("/{id}", deps.Categories.UpdateHandler)
				r.With(auth.RequireRole(auth.RoleManager)).Delete("/{id}", deps.Categories.DeleteHandler)
			})

			protected.With(auth.RequireRole(auth.RoleViewer)).
				Get("/reports/assets", deps.Reports.AssetStatsHandler)

			protected.With(auth.RequireRole(auth.RoleAdmin)).
				Get("/users", deps.AuthHandler.ListUsers)
		})
	})

	return mux
}
