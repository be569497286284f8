package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/football-investment/practice-booking-system-sub021/cache"
	"github.com/football-investment/practice-booking-system-sub021/config"
	"github.com/football-investment/practice-booking-system-sub021/db"
	"github.com/football-investment/practice-booking-system-sub021/handlers"
	"github.com/football-investment/practice-booking-system-sub021/metrics"
	"github.com/football-investment/practice-booking-system-sub021/progress"
	"github.com/football-investment/practice-booking-system-sub021/repositories"
	api "github.com/football-investment/practice-booking-system-sub021/routes"
	"github.com/football-investment/practice-booking-system-sub021/services"
	"github.com/football-investment/practice-booking-system-sub021/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-co-op/gocron/v2"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	collector := metrics.NewService()

	var rankingCache cache.RankingCache = cache.NoopRankingCache{}
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer redisClient.Close()
		rankingCache = cache.NewRedisRankingCache(redisClient, cfg.RankingCacheTTL)
		logger.Info("redis ranking cache enabled", slog.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("redis not configured, ranking cache disabled")
	}

	var uploader storage.FileUploader
	if cfg.R2.Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2.AccountID,
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			BucketName:      cfg.R2.BucketName,
			PublicBaseURL:   cfg.R2.PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("R2 not configured, report archiving disabled")
	}

	wsHub := progress.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	enrollmentRepo := repositories.NewPostgresEnrollmentRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	rankingRepo := repositories.NewPostgresRankingRepository(dbConn)
	rewardRepo := repositories.NewPostgresRewardRepository(dbConn)
	txManager := repositories.NewTxManager(dbConn)
	logger.Info("repositories initialized")

	tournamentService := services.NewTournamentService(
		tournamentRepo,
		enrollmentRepo,
		sessionRepo,
		groupRepo,
		rankingRepo,
		rewardRepo,
		rankingCache,
		collector,
	)
	enrollmentService := services.NewEnrollmentService(txManager, tournamentRepo, enrollmentRepo, wsHub, collector)
	phaseService := services.NewPhaseService(
		txManager,
		tournamentRepo,
		enrollmentRepo,
		sessionRepo,
		groupRepo,
		rankingRepo,
		rankingCache,
		wsHub,
		collector,
		cfg.ShuffleSeeds,
	)
	resultService := services.NewResultService(txManager, tournamentRepo, sessionRepo, wsHub, collector)
	rewardService := services.NewRewardService(
		txManager,
		tournamentRepo,
		rankingRepo,
		rewardRepo,
		cfg.Rewards,
		wsHub,
		collector,
	)
	logger.Info("services initialized")

	// Report archiving runs on a schedule instead of inline with reward
	// distribution, so a slow or unavailable object store never blocks the
	// reward call.
	if uploader != nil {
		archiveService := services.NewArchiveService(
			tournamentRepo,
			enrollmentRepo,
			rankingRepo,
			rewardRepo,
			uploader,
			logger,
			collector,
		)

		scheduler, err := gocron.NewScheduler()
		if err != nil {
			logger.Error("failed to create scheduler", slog.Any("error", err))
			os.Exit(1)
		}
		_, err = scheduler.NewJob(
			gocron.DurationJob(cfg.ArchiveSweepInterval),
			gocron.NewTask(func() {
				archived, err := archiveService.SweepUnarchived(context.Background())
				if err != nil {
					logger.Error("archive sweep failed", slog.Any("error", err))
					return
				}
				if archived > 0 {
					logger.Info("archive sweep finished", slog.Int("archived", archived))
				}
			}),
		)
		if err != nil {
			logger.Error("failed to schedule archive sweep", slog.Any("error", err))
			os.Exit(1)
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				logger.Error("failed to stop scheduler", slog.Any("error", err))
			}
		}()
		logger.Info("archive sweep scheduled", slog.Duration("interval", cfg.ArchiveSweepInterval))
	}

	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService)
	phaseHandler := handlers.NewPhaseHandler(phaseService)
	resultHandler := handlers.NewResultHandler(resultService)
	rewardHandler := handlers.NewRewardHandler(rewardService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, collector)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		tournamentHandler,
		enrollmentHandler,
		phaseHandler,
		resultHandler,
		rewardHandler,
		webSocketHandler,
		collector,
		metrics.NewMetricsHandler(),
		[]byte(cfg.JWTSecretKey),
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
