package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/simple-mercari/catalog/app/blobstore"
	"github.com/simple-mercari/catalog/app/categories"
	"github.com/simple-mercari/catalog/app/config"
	"github.com/simple-mercari/catalog/app/database"
	"github.com/simple-mercari/catalog/app/images"
	"github.com/simple-mercari/catalog/app/items"
	"github.com/simple-mercari/catalog/app/logger"
	"github.com/simple-mercari/catalog/app/server"
	"github.com/simple-mercari/catalog/models"
)

func main() {
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	appLogger, err := logger.New(logger.Config{
		Development: cfg.IsDevelopment(),
		Level:       cfg.Logger.Level,
		Encoding:    cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer appLogger.Sync()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, appLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(database.Config{
		DSN:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			appLogger.Warn("failed to close database", zap.Error(err))
		}
	}()

	if err := models.Migrate(db); err != nil {
		return err
	}

	store, err := blobstore.New(cfg.Images.Dir, cfg.Images.Placeholder)
	if err != nil {
		return err
	}
	if ok, err := store.Exists(store.Placeholder()); err != nil || !ok {
		appLogger.Warn("placeholder image is missing; unknown images will fail with 500",
			zap.String("dir", store.Dir()),
			zap.String("placeholder", store.Placeholder()))
	}

	repo := models.NewItemsRepository(db)
	handler := server.NewRouter(server.Handlers{
		Items:      items.NewItemHandler(repo, store, appLogger, cfg.Server.MaxUploadBytes),
		Images:     images.NewImageHandler(store, appLogger),
		Categories: categories.NewCategoryHandler(repo, appLogger),
	}, appLogger, cfg.Server.FrontURL)

	srv := server.New(cfg.Server.Addr, handler, appLogger, cfg.Server.ShutdownTimeout)
	return srv.Run(ctx)
}
