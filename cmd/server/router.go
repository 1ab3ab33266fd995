package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/tasks-api/internal/api"
	apiMiddleware "github.com/phrazzld/tasks-api/internal/api/middleware"
	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/service"
)

// routerDeps is everything the HTTP layer needs.
type routerDeps struct {
	identity  service.IdentityService
	tasks     service.TaskService
	rateLimit config.RateLimitConfig
	// trustProxy enables chi's RealIP, which rewrites RemoteAddr from
	// client-supplied headers. The rate limiter keys on RemoteAddr.
	trustProxy bool
	redis      *goredis.Client
	logger     *slog.Logger
}

func (app *application) router() http.Handler {
	return newRouter(routerDeps{
		identity:   app.identity,
		tasks:      app.tasks,
		rateLimit:  app.config.RateLimit,
		trustProxy: app.config.Server.TrustProxyHeaders,
		redis:      app.redis,
		logger:     app.logger,
	})
}

// newRouter builds the chi router. Trailing slashes are stripped so
// /api/tasks/ and /api/tasks are the same route.
func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if deps.trustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(apiMiddleware.NewTraceMiddleware(deps.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	authHandler := api.NewAuthHandler(deps.identity)
	taskHandler := api.NewTaskHandler(deps.tasks)
	profileHandler := api.NewProfileHandler(deps.identity)
	authMiddleware := apiMiddleware.NewAuthMiddleware(deps.identity)
	limit := apiMiddleware.NewRateLimiter(deps.rateLimit, deps.redis)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(limit).Post("/register", authHandler.Register)
			r.With(limit).Post("/login", authHandler.Login)
			r.With(limit).Post("/refresh", authHandler.Refresh)
			r.Get("/confirm-email/{token}", authHandler.ConfirmEmail)
			r.With(limit, authMiddleware.Authenticate).Post("/password", authHandler.ChangePassword)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/", taskHandler.List)
			r.Post("/", taskHandler.Create)

			r.Get("/profile", profileHandler.Get)
			r.Put("/profile", profileHandler.Update)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.Get)
				r.Put("/", taskHandler.Update)
				r.Patch("/", taskHandler.Patch)
				r.Delete("/", taskHandler.Delete)
				r.Patch("/complete", taskHandler.Complete)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			deps.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
