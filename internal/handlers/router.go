package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusdesk/import-service/internal/services"
	"github.com/campusdesk/import-service/internal/utils"
)

type HandlerManager struct {
	importHandler  *ImportHandler
	catalogHandler *CatalogHandler
	healthHandler  *HealthHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	maxUploadBytes int64,
	logger utils.Logger,
	health *HealthHandler,
) *HandlerManager {
	return &HandlerManager{
		importHandler:  NewImportHandler(serviceManager.Import(), serviceManager.Export(), maxUploadBytes, logger),
		catalogHandler: NewCatalogHandler(serviceManager.Catalog(), serviceManager.Export(), logger),
		healthHandler:  health,
	}
}

// SetupRoutes sets up all API routes. Authentication applies to the
// versioned API group; the import guard only to the session lifecycle.
// Health stays open. Either middleware may be nil.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine, authMiddleware, importGuard gin.HandlerFunc) {
	router.GET("/health", hm.healthHandler.Check)

	v1 := router.Group("/api/v1")
	if authMiddleware != nil {
		v1.Use(authMiddleware)
	}
	{
		// Import session lifecycle
		imports := v1.Group("/imports")
		if importGuard != nil {
			imports.Use(importGuard)
		}
		{
			imports.POST("", hm.importHandler.CreateImport)
			imports.GET("/:id", hm.importHandler.GetImport)
			imports.POST("/:id/commit", hm.importHandler.CommitImport)
			imports.DELETE("/:id", hm.importHandler.CancelImport)
			imports.GET("/:id/report", hm.importHandler.GetImportReport)
		}

		// Templates and catalog read-back
		v1.GET("/templates/:entity", hm.catalogHandler.GetTemplate)
		v1.GET("/exports/:entity", hm.catalogHandler.ExportCollection)
		v1.GET("/collections/:entity/stats", hm.catalogHandler.GetStats)
	}
}

// ===== HEALTH =====

// Pinger reports whether a backing dependency answers.
type Pinger func(ctx context.Context) error

// HealthHandler answers liveness probes. A failing required check
// makes the service unhealthy; a failing optional one only degrades it.
type HealthHandler struct {
	BaseHandler
	required map[string]Pinger
	optional map[string]Pinger
}

func NewHealthHandler(logger utils.Logger, required, optional map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		BaseHandler: NewBaseHandler(logger),
		required:    required,
		optional:    optional,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	statusCode := http.StatusOK
	overall := "healthy"
	checks := gin.H{}

	for name, ping := range h.required {
		if err := ping(ctx); err != nil {
			checks[name] = err.Error()
			overall = "unhealthy"
			statusCode = http.StatusServiceUnavailable
			h.LogWarn(c, "Health check failed", "check", name, "error", err.Error())
		} else {
			checks[name] = "ok"
		}
	}

	for name, ping := range h.optional {
		if err := ping(ctx); err != nil {
			checks[name] = err.Error()
			if overall == "healthy" {
				overall = "degraded"
			}
			h.LogWarn(c, "Optional health check failed", "check", name, "error", err.Error())
		} else {
			checks[name] = "ok"
		}
	}

	c.JSON(statusCode, gin.H{
		"status":  overall,
		"service": "import-service",
		"checks":  checks,
	})
}
