// Package api exposes the nutrition tracker over JSON/HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/nutrilog-io/nutrilog/internal/auth"
	"github.com/nutrilog-io/nutrilog/internal/config"
	"github.com/nutrilog-io/nutrilog/internal/export"
	"github.com/nutrilog-io/nutrilog/internal/logger"
	"github.com/nutrilog-io/nutrilog/internal/metrics"
	"github.com/nutrilog-io/nutrilog/internal/tracking"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 15 * time.Second
)

// Pinger reports database reachability for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the dependencies the handlers call into.
type Services struct {
	Auth     *auth.Service
	Tracking *tracking.Service
	Metrics  *metrics.Service
	Export   *export.Service
	DB       Pinger
}

type Api struct {
	Config   config.Config
	Router   *chi.Mux
	services Services
	sessions *auth.Manager
	cookies  *auth.CookieHelper
	logger   *logger.Logger
}

func NewApi(cfg config.Config, services Services, logger *logger.Logger) *Api {
	api := &Api{
		Config:   cfg,
		Router:   chi.NewRouter(),
		services: services,
		sessions: services.Auth.Sessions(),
		cookies:  auth.NewCookieHelper(cfg.Session.CookieName, cfg.Session.Secure, cfg.Session.TTL),
		logger:   logger,
	}

	api.setupRoutes()
	return api
}

func (api *Api) setupRoutes() {
	r := api.Router

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/heartbeat"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   api.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(noStore)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.fail(w, http.StatusNotFound, codeNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.fail(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Get("/healthz", api.HealthHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", api.RegisterHandler)
		r.Post("/login", api.LoginHandler)
		r.Post("/logout", api.LogoutHandler)
		r.Get("/me", api.MeHandler)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(api.sessions, api.cookies, api.unauthenticated, api.writeError))

		r.Route("/food", func(r chi.Router) {
			r.Post("/log", api.LogFoodHandler)
			r.Get("/log", api.GetFoodLogHandler)
			r.Delete("/log", api.RemoveFoodHandler)
			r.Get("/recent/{meal}", api.RecentFoodsHandler)
			r.Get("/search", api.SearchFoodsHandler)
			r.Post("/items", api.AddFoodHandler)
			r.Put("/items/{id}", api.UpdateFoodHandler)
			r.Get("/barcode/{code}", api.BarcodeHandler)
			r.Get("/export", api.ExportHandler)
		})

		r.Get("/home", api.HomeHandler)

		r.Route("/weight", func(r chi.Router) {
			r.Post("/add", api.AddWeightHandler)
			r.Get("/trend", api.WeightTrendHandler)
		})

		r.Route("/goals", func(r chi.Router) {
			r.Get("/", api.GetGoalsHandler)
			r.Post("/", api.SetGoalHandler)
		})
	})
}

// Serve runs the HTTP server and the session reaper until ctx is cancelled,
// then shuts the server down gracefully.
func (api *Api) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", api.Config.APIPort),
		Handler:           api.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		api.sessions.RunReaper(gctx, api.Config.Session.CleanupInterval)
		return nil
	})

	g.Go(func() error {
		api.logger.Info("Starting API server", "addr", srv.Addr, "env", api.Config.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		api.logger.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (api *Api) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.services.DB.Ping(r.Context()); err != nil {
		api.logger.Error("API: health check failed", "error", err.Error())
		api.fail(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unavailable")
		return
	}
	api.ok(w, http.StatusOK, map[string]string{"status": "ok"})
}
