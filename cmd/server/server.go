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

	"chapel-server/media-api/internal/config"
	domain "chapel-server/media-api/internal/domain/media"
	"chapel-server/media-api/internal/infrastructure/database"
	"chapel-server/media-api/internal/infrastructure/logger"
	"chapel-server/media-api/internal/infrastructure/mediastore"
	"chapel-server/media-api/internal/infrastructure/observability"
	repo "chapel-server/media-api/internal/infrastructure/repository/record"
	"chapel-server/media-api/internal/interfaces/httpserver"
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
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	if err := database.AutoMigrate(ctx, db, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	store, err := provideStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize media store")
	}

	recordRepository := repo.NewRepository(db)
	mediaService := domain.NewService(cfg, recordRepository, store, log)

	httpServer := httpserver.New(cfg, log, mediaService)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// provideStore selects the remote media backend. The transcode backend
// produces derived variants eagerly; the s3 backend stores originals and
// leaves derivation to the CDN edge.
func provideStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Store, error) {
	switch {
	case cfg.IsTranscodeStore():
		return mediastore.NewTranscodeClient(cfg, log), nil
	case cfg.IsS3Store():
		return mediastore.NewS3Store(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown media store backend %q", cfg.StoreBackend)
	}
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
