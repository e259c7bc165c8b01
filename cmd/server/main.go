package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yukikurage/task-user-api/internal/config"
	"github.com/yukikurage/task-user-api/internal/database"
	"github.com/yukikurage/task-user-api/internal/handlers"
	"github.com/yukikurage/task-user-api/internal/logger"
	"github.com/yukikurage/task-user-api/internal/repository"
	"github.com/yukikurage/task-user-api/internal/services"
	"github.com/yukikurage/task-user-api/internal/validation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Env, cfg.LogLevel, cfg.LogFormat)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	// Initialize services and handlers
	validator := validation.New()
	tx := services.NewTransactor(store, log)
	taskService := services.NewTaskService(store, tx, log, cfg.TaskListLimit)
	userService := services.NewUserService(store, tx, log)

	router := handlers.NewRouter(log, store,
		handlers.NewTaskHandler(taskService, validator, log),
		handlers.NewUserHandler(userService, validator, log),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreDriver}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Graceful shutdown failed")
		}
		if err := store.Close(shutdownCtx); err != nil {
			log.WithError(err).Error("Failed to close store")
		}

	case err := <-serverErr:
		log.WithError(err).Error("Server error")
		_ = store.Close(ctx)
		os.Exit(1)
	}

	log.Info("Server stopped")
}

// openStore connects to the configured store and prepares its schema
func openStore(ctx context.Context, cfg *config.Config, log *logrus.Logger) (repository.Store, error) {
	if cfg.StoreDriver == config.DriverMongo {
		store, err := repository.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		log.WithField("database", cfg.MongoDatabase).Info("MongoDB connection established")
		return store, nil
	}

	db, err := database.Connect(cfg, log)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := database.Migrate(db, log); err != nil {
		return nil, err
	}
	return repository.NewGormStore(db), nil
}
