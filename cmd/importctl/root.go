package main

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/campusdesk/import-service/internal/cache"
	"github.com/campusdesk/import-service/internal/config"
	"github.com/campusdesk/import-service/internal/events"
	"github.com/campusdesk/import-service/internal/importer"
	"github.com/campusdesk/import-service/internal/services"
	"github.com/campusdesk/import-service/internal/store"
	"github.com/campusdesk/import-service/internal/utils"
	"github.com/campusdesk/import-service/internal/validator"
	"github.com/campusdesk/import-service/pkg"
)

var rootCmd = &cobra.Command{
	Use:   "importctl",
	Short: "Operator CLI for the campus bulk import service",
	Long: `importctl validates and imports CSV/XLSX files into the question bank
and course catalog, renders upload templates, exports stored collections,
and reads collection stats. It talks to the backing store directly, no
HTTP hop.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(statsCmd)
}

// buildServices wires the service set the way the server does, minus
// the HTTP stack. With inMemory no store connection is made and nothing
// persists past the process.
func buildServices(inMemory bool) (services.ServiceManager, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	logger := utils.NewLogger(cfg.Environment)
	slogger := utils.ToSlogLogger(logger)

	var docs store.DocumentStore
	cleanup := func() {}
	if inMemory {
		docs = store.NewMemoryStore()
	} else {
		mongoClient, db, err := pkg.NewMongoClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		docs = store.NewMongoStore(db)
		cleanup = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoClient.Disconnect(ctx)
		}
	}

	manager := services.NewServiceManager(services.ManagerConfig{
		Docs:      docs,
		Cache:     cache.NewNoopCache(),
		Registry:  importer.NewSessionRegistry(cfg.ImportSessionTTL),
		Publisher: events.NewMockEventPublisher(slogger),
		Validator: validator.New(),
		Logger:    slogger,
	})
	return manager, cleanup, nil
}
