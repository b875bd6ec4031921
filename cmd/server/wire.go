//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
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
	commentrepo "cloudflix/services/streaming-api/internal/infrastructure/repository/comment"
	historyrepo "cloudflix/services/streaming-api/internal/infrastructure/repository/history"
	paymentrepo "cloudflix/services/streaming-api/internal/infrastructure/repository/payment"
	ratingrepo "cloudflix/services/streaming-api/internal/infrastructure/repository/rating"
	videorepo "cloudflix/services/streaming-api/internal/infrastructure/repository/video"
	"cloudflix/services/streaming-api/internal/infrastructure/storage"
	"cloudflix/services/streaming-api/internal/interfaces/httpserver"
	"cloudflix/services/streaming-api/internal/interfaces/httpserver/handlers"
)

var domainSet = wire.NewSet(
	videorepo.NewRepository,
	wire.Bind(new(videodomain.Repository), new(*videorepo.Repository)),
	videodomain.NewService,
	commentrepo.NewRepository,
	wire.Bind(new(commentdomain.Repository), new(*commentrepo.Repository)),
	wire.Bind(new(commentdomain.VideoCatalog), new(*videodomain.Service)),
	commentdomain.NewService,
	ratingrepo.NewRepository,
	wire.Bind(new(ratingdomain.Repository), new(*ratingrepo.Repository)),
	wire.Bind(new(ratingdomain.VideoCatalog), new(*videodomain.Service)),
	ratingdomain.NewService,
	historyrepo.NewRepository,
	wire.Bind(new(historydomain.Repository), new(*historyrepo.Repository)),
	wire.Bind(new(historydomain.VideoCatalog), new(*videodomain.Service)),
	historydomain.NewService,
	paymentrepo.NewRepository,
	wire.Bind(new(paymentdomain.Repository), new(*paymentrepo.Repository)),
	paymentdomain.NewService,
	newHandlerServices,
)

// BuildApplication assembles the streaming API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		auth.NewValidator,
		newDatabaseConfig,
		newGormDB,
		storage.New,
		domainSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.GetDatabaseWriteDSN(),
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newHandlerServices(
	video *videodomain.Service,
	comment *commentdomain.Service,
	rating *ratingdomain.Service,
	history *historydomain.Service,
	payment *paymentdomain.Service,
) handlers.Services {
	return handlers.Services{
		Video:   video,
		Comment: comment,
		Rating:  rating,
		History: history,
		Payment: payment,
	}
}
