package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/campusdesk/import-service/internal/auth"
	"github.com/campusdesk/import-service/internal/cache"
	"github.com/campusdesk/import-service/internal/config"
	"github.com/campusdesk/import-service/internal/handlers"
	"github.com/campusdesk/import-service/internal/importer"
	"github.com/campusdesk/import-service/internal/services"
	"github.com/campusdesk/import-service/internal/store"
	"github.com/campusdesk/import-service/internal/utils"
	"github.com/campusdesk/import-service/internal/validator"
	"github.com/campusdesk/import-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := utils.ToSlogLogger(logger)

	mongoClient, db, err := pkg.NewMongoClient(cfg)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(ctx)
	}()

	// The stats cache is best effort; a dead Redis only costs cached
	// counts, never imports.
	cacheService := cache.NewNoopCache()
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, continuing without stats cache", "error", err.Error())
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		log.Fatalf("event publisher: %v", err)
	}
	defer publisher.Close()

	serviceManager := services.NewServiceManager(services.ManagerConfig{
		Docs:      store.NewMongoStore(db),
		Cache:     cacheService,
		Registry:  importer.NewSessionRegistry(cfg.ImportSessionTTL),
		Publisher: publisher,
		Validator: validator.New(),
		Logger:    slogger,
	})

	required := map[string]handlers.Pinger{
		"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) },
	}
	optional := map[string]handlers.Pinger{}
	if redisClient != nil {
		optional["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	health := handlers.NewHealthHandler(logger, required, optional)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger))

	authenticator := auth.NewAuthenticator(cfg, logger)
	handlerManager := handlers.NewHandlerManager(serviceManager, cfg.ImportMaxUploadBytes, logger, health)
	handlerManager.SetupRoutes(router, authenticator.Middleware(), auth.RequireImportPermission())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Import service listening",
			"port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down import service")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err.Error())
	}
}
