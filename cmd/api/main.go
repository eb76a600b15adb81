package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duoqueue/matchmaker/internal/api"
	"github.com/duoqueue/matchmaker/internal/api/handlers"
	"github.com/duoqueue/matchmaker/internal/config"
	"github.com/duoqueue/matchmaker/internal/executor"
	"github.com/duoqueue/matchmaker/internal/infrastructure/cache"
	"github.com/duoqueue/matchmaker/internal/infrastructure/db"
	"github.com/duoqueue/matchmaker/internal/matchmaker"
	"github.com/duoqueue/matchmaker/internal/notify"
	"github.com/duoqueue/matchmaker/internal/repository"
	"github.com/duoqueue/matchmaker/internal/repository/postgres"
	"github.com/duoqueue/matchmaker/pkg/logger"
	"github.com/duoqueue/matchmaker/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// matchmakerConfig converts the flat env-driven config block into the
// core package's Config value.
func matchmakerConfig(c config.MatchmakerConfig) matchmaker.Config {
	principal := matchmaker.PrincipalName(c.Principal)
	return matchmaker.Config{
		BaseElo:          c.BaseElo,
		PointsPerMatch:   c.PointsPerMatch,
		KFactor:          c.KFactor,
		Period:           matchmaker.Period{Active: c.PeriodActive, DutyCycle: c.PeriodDutyCycle},
		TriggerThreshold: c.TriggerThreshold,
		MaxHistory:       c.MaxHistory,
		Principal:        principal,
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Async:  cfg.Logging.Async,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting matchmaker API server",
		zap.Int("port", cfg.Server.Port),
		zap.String("env", "production"),
	)

	m := metrics.New()

	database, err := db.New(&cfg.Database, log, m)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Health(context.Background()); err != nil {
		log.Fatal("Database health check failed", zap.Error(err))
	}

	redisCache, err := cache.New(&cfg.Redis, log, m)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()
	rateLimiter := cache.NewRateLimiter(redisCache)
	facadeLock := cache.NewDistributedLock(redisCache)
	leaderboard := cache.NewLeaderboardCache(redisCache, m)

	repos := repository.Repositories{
		Players: postgres.NewPlayerRepository(database),
		Teams:   postgres.NewTeamRepository(database),
		Rounds:  postgres.NewRoundRepository(database),
		Matches: postgres.NewMatchRepository(database),
		Results: postgres.NewResultRepository(database),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The queue context needs a seed round; the first real round starts
	// at id 1, so a zero-participant placeholder stands in until the
	// first QueueTeam dispatches the trigger.
	baseRound := matchmaker.Round{ID: 1, StartTime: time.Now()}
	mm, err := matchmaker.New(matchmakerConfig(cfg.Matchmaker), baseRound, log)
	if err != nil {
		log.Fatal("Failed to build matchmaker", zap.Error(err))
	}

	pool := executor.NewPool(cfg.Worker, log, m)
	pool.Start()
	defer pool.Stop()
	executor.RegisterPersistenceHandlers(mm, repos, leaderboard, pool)

	hub := notify.NewHub(log)
	go hub.Run(ctx)
	notify.RegisterBridge(mm, hub)

	mmHandler := handlers.NewMatchMakerHandler(mm, repos, facadeLock, leaderboard, log)
	notifyHandler := handlers.NewNotifyHandler(hub, log)
	systemHandler := handlers.NewSystemHandler(log)

	apiServer := api.NewServer(
		mmHandler,
		notifyHandler,
		systemHandler,
		rateLimiter,
		cfg.CORS,
		cfg.RateLimit,
		log,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      apiServer.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var metricsSrv *http.Server
	if cfg.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())

		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           metricsMux,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			log.Info("Metrics server listening", zap.String("addr", metricsSrv.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("Metrics server error", zap.Error(err))
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("API server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down servers...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("API server forced to shutdown", zap.Error(err))
	}

	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("Metrics server forced to shutdown", zap.Error(err))
		}
	}

	cancel()

	log.Info("Servers stopped gracefully")
}
