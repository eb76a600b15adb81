package api

import (
	"net/http"
	"time"

	"github.com/duoqueue/matchmaker/internal/api/handlers"
	"github.com/duoqueue/matchmaker/internal/api/middleware"
	"github.com/duoqueue/matchmaker/internal/config"
	"github.com/duoqueue/matchmaker/pkg/logger"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP entry point: chi router plus the matchmaker,
// notification, and system handlers it dispatches to.
type Server struct {
	router          *chi.Mux
	mmHandler       *handlers.MatchMakerHandler
	notifyHandler   *handlers.NotifyHandler
	systemHandler   *handlers.SystemHandler
	rateLimiter     middleware.RateLimiter
	corsConfig      config.CORSConfig
	rateLimitConfig config.RateLimitConfig
	log             *logger.Logger
}

// NewServer builds the router and wires every route.
func NewServer(
	mmHandler *handlers.MatchMakerHandler,
	notifyHandler *handlers.NotifyHandler,
	systemHandler *handlers.SystemHandler,
	rateLimiter middleware.RateLimiter,
	corsConfig config.CORSConfig,
	rateLimitConfig config.RateLimitConfig,
	log *logger.Logger,
) *Server {
	s := &Server{
		router:          chi.NewRouter(),
		mmHandler:       mmHandler,
		notifyHandler:   notifyHandler,
		systemHandler:   systemHandler,
		rateLimiter:     rateLimiter,
		corsConfig:      corsConfig,
		rateLimitConfig: rateLimitConfig,
		log:             log,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware wires the ambient middleware chain. Auth/RBAC is
// deliberately absent: this surface has no notion of accounts, only
// teams and rounds.
func (s *Server) setupMiddleware() {
	s.router.Use(chiMiddleware.RequestID)
	s.router.Use(chiMiddleware.RealIP)
	s.router.Use(chiMiddleware.Logger)
	s.router.Use(chiMiddleware.Recoverer)

	s.router.Use(middleware.SecureHeaders())
	s.router.Use(middleware.Compress())
	s.router.Use(middleware.SmartTimeout(middleware.DefaultTimeoutConfig()))

	if s.rateLimitConfig.Enabled {
		s.router.Use(middleware.RateLimit(
			s.rateLimiter,
			s.rateLimitConfig.RequestsPerMinute,
			time.Minute,
			s.log,
		))
	}

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsConfig.AllowedOrigins,
		AllowedMethods:   s.corsConfig.AllowedMethods,
		AllowedHeaders:   s.corsConfig.AllowedHeaders,
		ExposedHeaders:   []string{"Link", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           s.corsConfig.MaxAge,
	}))
}

// setupRoutes implements the route table.
func (s *Server) setupRoutes() {
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/teams/{id}", func(r chi.Router) {
			r.Post("/queue", s.mmHandler.Queue)
			r.Post("/dequeue", s.mmHandler.Dequeue)
		})

		r.Post("/matches/{id}/result", s.mmHandler.PostResult)
		r.Get("/matches/history", s.mmHandler.GetHistory)

		r.Get("/queue", s.mmHandler.GetQueue)
		r.Get("/games", s.mmHandler.GetGames)
		r.Get("/leaderboard", s.mmHandler.GetLeaderboard)

		r.Get("/players/{id}/team", s.mmHandler.GetPlayerTeam)
		r.Get("/players/{id}/match", s.mmHandler.GetPlayerMatch)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/reset", s.mmHandler.AdminReset)
			r.Put("/config/threshold", s.mmHandler.AdminSetThreshold)
			r.Put("/config/principal", s.mmHandler.AdminSetPrincipal)
		})

		r.Route("/ws", func(r chi.Router) {
			r.Get("/{round_key}", s.notifyHandler.HandleRound)
			r.Get("/stats", s.notifyHandler.GetStats)
		})

		r.Get("/system", s.systemHandler.GetMetrics)
		r.Get("/system/health", s.systemHandler.GetHealth)
		r.Get("/metrics", promhttp.Handler().ServeHTTP)
	})
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
