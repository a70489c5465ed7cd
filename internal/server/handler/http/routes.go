package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/akovalyov/deeptrace/internal/middleware"
)

// RouterConfig carries the router-level settings sourced from config.
type RouterConfig struct {
	// Prefix is prepended to every API route, e.g. "/api/v1".
	Prefix string
	// AllowedOrigins is the CORS origin allowlist.
	AllowedOrigins []string
}

// NewRouter constructs the HTTP handler serving the DeepTrace API.
//
// Routes (under cfg.Prefix):
//
//	POST   /authentication/access-token  → auth.AccessToken (public)
//	POST   /authentication/test-token    → auth.TestToken
//	POST   /users/                       → users.Create (public)
//	GET    /users/me                     → users.Me
//	PATCH  /users/me                     → users.UpdateMe
//	GET    /users/{id}                   → users.GetByID
//	POST   /detection/upload             → detections.Upload
//	GET    /detection/                   → detections.List
//	GET    /detection/{id}               → detections.Get
//	DELETE /detection/{id}               → detections.Delete
//
// authMW is the bearer-token Authenticator guarding the non-public group.
func NewRouter(
	cfg RouterConfig,
	auth *AuthenticationHandler,
	users *UsersHandler,
	detections *DetectionHandler,
	authMW func(http.Handler) http.Handler,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})

	jsonOnly := chiMiddleware.AllowContentType("application/json")

	r.Route(cfg.Prefix, func(r chi.Router) {
		// Public endpoints
		r.Post("/authentication/access-token", auth.AccessToken)
		r.With(jsonOnly).Post("/users/", users.Create)

		// Protected group: requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(authMW)

			r.Post("/authentication/test-token", auth.TestToken)
			r.Get("/users/me", users.Me)
			r.With(jsonOnly).Patch("/users/me", users.UpdateMe)
			r.Get("/users/{id}", users.GetByID)

			r.Post("/detection/upload", detections.Upload)
			r.Get("/detection/", detections.List)
			r.Get("/detection/{id}", detections.Get)
			r.Delete("/detection/{id}", detections.Delete)
		})
	})

	return r
}
