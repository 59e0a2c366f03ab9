package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"watch-list/internal/data/repository"
	"watch-list/internal/tmdb"
	"watch-list/internal/usecase"
	"watch-list/pkg/database"
	"watch-list/pkg/imageproc"
	"watch-list/pkg/storage"
	"watch-list/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// runtime is what every subcommand shares: config, logger, database and
// the external clients.
type runtime struct {
	config  *utils.Config
	log     *zap.Logger
	db      database.PgxIface
	repo    *repository.Repository
	storage *storage.Client
	deps    usecase.Deps
}

func loadRuntime() (*utils.Config, *zap.Logger, error) {
	config, err := utils.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	return config, logger, nil
}

// bootstrap connects to the database and builds the TMDb, storage and
// image clients. Object storage is optional.
func bootstrap(ctx context.Context) (*runtime, error) {
	config, logger, err := loadRuntime()
	if err != nil {
		return nil, err
	}

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}
	logger.Info("Database connected successfully")

	rt := &runtime{
		config: config,
		log:    logger,
		db:     db,
		repo:   repository.NewRepository(db, logger),
		deps: usecase.Deps{
			TMDb:   tmdb.NewClient(config.TMDb, logger),
			Images: imageproc.NewProcessor(config.Image),
		},
	}

	client, err := storage.NewClient(ctx, config.Storage)
	switch {
	case errors.Is(err, storage.ErrNotConfigured):
		logger.Warn("Object storage not configured, image uploads are disabled")
	case err != nil:
		db.Close()
		return nil, err
	default:
		rt.storage = client
		rt.deps.Storage = client
	}

	return rt, nil
}

func (rt *runtime) close() {
	rt.db.Close()
	_ = rt.log.Sync()
}

// printJSON writes a job report to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}
