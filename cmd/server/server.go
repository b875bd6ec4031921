package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"cloudflix/services/streaming-api/internal/config"
	commentdomain "cloudflix/services/streaming-api/internal/domain/comment"
	historydomain "cloudflix/services/streaming-api/internal/domain/history"
	paymentdomain "cloudflix/services/streaming-api/internal/domain/payment"
	ratingdomain "cloudflix/services/streaming-api/internal/domain/rating"
	videodomain "cloudflix/services/streaming-api/internal/domain/video"
	"cloudflix/services/streaming-api/internal/infrastructure/auth"
	"cloudflix/services/streaming-api/internal/infrastructure/database"
	"cloudflix/services/streaming-api/internal/infrastructure/logger"
	"cloudflix/services/streaming-api/internal/infrastructure/observability"
	commentrepo "cloudflix/services/streaming-api/internal/infrastructure/repository/comment"
	historyrepo "cloudflix/services/streaming-api/internal/infrastructure/repository/history"
	paymentrepo "cloudflix/services/streaming-api/internal/infrastructure/repository/payment"
	ratingrepo "cloudflix/services/streaming-api/internal/infrastructure/repository/rating"
	videorepo "cloudflix/services/streaming-api/internal/infrastructure/repository/video"
	"cloudflix/services/streaming-api/internal/infrastructure/storage"
	"cloudflix/services/streaming-api/internal/interfaces/httpserver"
	"cloudflix/services/streaming-api/internal/interfaces/httpserver/handlers"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	db, err := database.Connect(database.Config{
		DSN:             cfg.GetDatabaseWriteDSN(),
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	backend, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize auth")
	}

	videoService := videodomain.NewService(cfg, videorepo.NewRepository(db), backend, log)
	services := handlers.Services{
		Video:   videoService,
		Comment: commentdomain.NewService(commentrepo.NewRepository(db), videoService, log),
		Rating:  ratingdomain.NewService(ratingrepo.NewRepository(db), videoService, log),
		History: historydomain.NewService(historyrepo.NewRepository(db), videoService, log),
		Payment: paymentdomain.NewService(paymentrepo.NewRepository(db), log),
	}

	httpServer := httpserver.New(cfg, log, services, backend, authValidator)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
