package services

import (
	"log/slog"

	"github.com/campusdesk/import-service/internal/cache"
	"github.com/campusdesk/import-service/internal/events"
	"github.com/campusdesk/import-service/internal/importer"
	"github.com/campusdesk/import-service/internal/store"
	"github.com/campusdesk/import-service/internal/validator"
)

// ServiceManager hands out the wired service set.
type ServiceManager interface {
	Import() ImportService
	Catalog() CatalogService
	Export() ExportService
}

// ManagerConfig carries the shared infrastructure the services are
// built on.
type ManagerConfig struct {
	Docs      store.DocumentStore
	Cache     cache.CacheService
	Registry  *importer.SessionRegistry
	Publisher events.EventPublisher
	Validator *validator.Validator
	Logger    *slog.Logger
}

type serviceManager struct {
	importService  ImportService
	catalogService CatalogService
	exportService  ExportService
}

func NewServiceManager(cfg ManagerConfig) ServiceManager {
	stats := cache.NewStatsCache(cfg.Cache)
	catalog := NewCatalogService(cfg.Docs, stats, cfg.Validator, cfg.Logger)

	return &serviceManager{
		importService:  NewImportService(cfg.Docs, cfg.Registry, stats, cfg.Publisher, cfg.Validator, cfg.Logger),
		catalogService: catalog,
		exportService:  NewExportService(catalog, cfg.Registry, cfg.Logger),
	}
}

func (m *serviceManager) Import() ImportService {
	return m.importService
}

func (m *serviceManager) Catalog() CatalogService {
	return m.catalogService
}

func (m *serviceManager) Export() ExportService {
	return m.exportService
}
