// Package router wires handlers and middleware into the HTTP route tree.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chautara/identity/internal/api/http/handler"
	"github.com/chautara/identity/internal/api/http/middleware"
	"github.com/chautara/identity/internal/logger"
	"github.com/chautara/identity/internal/metrics"
	"github.com/chautara/identity/internal/model"
	"github.com/chautara/identity/internal/service"
)

// Router assembles the HTTP API from services and middleware.
type Router struct {
	authService    *service.Auth
	registrar      *service.Registrar
	profileService *service.Profile
	tokenService   *service.TokenService
	store          model.DocumentStore
	contextManager model.ContextManager
	registry       *prometheus.Registry
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	authService *service.Auth,
	registrar *service.Registrar,
	profileService *service.Profile,
	tokenService *service.TokenService,
	store model.DocumentStore,
	contextManager model.ContextManager,
	registry *prometheus.Registry,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		registrar:      registrar,
		profileService: profileService,
		tokenService:   tokenService,
		store:          store,
		contextManager: contextManager,
		registry:       registry,
		logger:         logger,
	}
}

// Register builds the route tree with request logging on every route and
// bearer-token authentication on the session-bound routes.
func (rt *Router) Register() http.Handler {
	logging := middleware.NewLogging(rt.logger)
	authenticate := middleware.NewAuthenticate(rt.tokenService, rt.contextManager, rt.logger)

	authHandler := handler.NewAuth(rt.authService, rt.registrar, rt.contextManager, rt.logger)
	usernameHandler := handler.NewUsername(rt.registrar, rt.authService, rt.contextManager, rt.logger)
	profileHandler := handler.NewProfile(rt.profileService, rt.contextManager, rt.logger)
	sessionHandler := handler.NewSession(rt.store, rt.authService, rt.contextManager, rt.logger)

	r := chi.NewRouter()
	r.Use(logging.Handle)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)
		r.Get("/usernames/{name}", usernameHandler.Availability)

		r.Group(func(r chi.Router) {
			r.Use(authenticate.Handle)

			r.Post("/auth/logout", authHandler.Logout)
			r.Post("/username", usernameHandler.Claim)
			r.Get("/profile", profileHandler.Me)
			r.Put("/profile/avatar", profileHandler.UploadAvatar)
			r.Get("/profile/avatar", profileHandler.DownloadAvatar)
			r.Delete("/profile/avatar", profileHandler.DeleteAvatar)
			r.Get("/session", sessionHandler.State)
			r.Get("/session/stream", sessionHandler.Stream)
		})
	})

	if rt.registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.SetupMetricsRoute(rt.registry))
	}

	return r
}
