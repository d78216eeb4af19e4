package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"fact_checker/internal/config"
	"fact_checker/internal/publisher"
	"fact_checker/internal/scheduler"
	"fact_checker/internal/server"
	"fact_checker/internal/service"
	"fact_checker/internal/storage/blob"
	"fact_checker/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := setupLogger("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = setupLogger(cfg.LogLevel)

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to database")

	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	blobs, err := blob.NewFSStore(cfg.Uploads.Dir)
	if err != nil {
		logger.Error("failed to prepare upload storage", "error", err)
		os.Exit(1)
	}

	// Stores
	userStore := postgres.NewUserStore(db)
	tagStore := postgres.NewTagStore(db)
	assignmentStore := postgres.NewAssignmentStore(db)
	applicationStore := postgres.NewApplicationStore(db)
	requestStore := postgres.NewRequestStore(db)
	entryStore := postgres.NewEntryStore(db)
	txManager := postgres.NewTransactionManager(db)

	// Services
	roleService := service.NewRoleService(userStore, applicationStore, assignmentStore, txManager, logger)
	requestService := service.NewRequestService(requestStore, tagStore, txManager, logger)
	resolutionService := service.NewResolutionService(requestStore, entryStore, tagStore, txManager, rabbitMQ, logger)
	entryService := service.NewEntryService(entryStore, logger)
	rankingService := service.NewRankingService(entryStore, cfg.Ranking.MaxRank, logger)
	tagService := service.NewTagService(tagStore, assignmentStore, requestStore, entryStore, applicationStore, txManager, logger)
	applicationService := service.NewApplicationService(applicationStore, tagStore, blobs, txManager, logger)

	srv := server.New(
		userStore,
		roleService,
		requestService,
		resolutionService,
		entryService,
		rankingService,
		tagService,
		applicationService,
		logger,
	)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	sched := scheduler.NewScheduler(rankingService, cfg.Ranking.RefreshInterval, logger)
	go func() {
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("scheduler error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("starting fact checker server",
		"addr", cfg.HTTP.Addr,
		"ranking_refresh", cfg.Ranking.RefreshInterval,
	)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
