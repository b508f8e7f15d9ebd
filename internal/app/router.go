package app

import (
	"github.com/gin-gonic/gin"

	"github.com/annothub/annothub-backend/internal/http/middleware"
	"github.com/annothub/annothub-backend/internal/observability"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
)

func wireRouter(cfg Config, h Handlers, metrics *observability.Metrics, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Metrics(metrics))

	router.GET("/health", h.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/annotations", h.Annotations.List)
		api.GET("/annotations/export", h.Annotations.ExportTSV)
		api.GET("/annotations/errors", h.Annotations.Errors)
		api.GET("/annotations/:annotation_id", h.Annotations.Get)
		api.GET("/annotations/:annotation_id/contigs", h.Annotations.Contigs)
		api.GET("/annotations/:annotation_id/aliases", h.Annotations.Aliases)
		api.GET("/annotations/:annotation_id/download", h.Annotations.Download)
		api.GET("/annotations/:annotation_id/region", h.Regions.Stream)

		api.GET("/assemblies", h.Assemblies.List)
		api.GET("/assemblies/:accession", h.Assemblies.Get)
		api.GET("/assemblies/:accession/sequences", h.Assemblies.Sequences)

		api.GET("/organisms", h.Organisms.List)
		api.GET("/organisms/:taxid", h.Organisms.Get)

		api.GET("/taxa", h.Taxa.List)
		api.GET("/taxa/:taxid", h.Taxa.Get)
		api.GET("/taxa/:taxid/children", h.Taxa.Children)
		api.GET("/taxa/:taxid/ancestors", h.Taxa.Ancestors)
	}

	admin := router.Group("/api/v1/admin", middleware.AdminKey(cfg.AdminAuthKey))
	{
		admin.POST("/ingest", h.Admin.TriggerIngest)
		admin.POST("/counts", h.Admin.UpdateCounts)
		admin.POST("/annotations/:annotation_id/statistics", h.Admin.RefreshStatistics)
		admin.DELETE("/annotations/:annotation_id", h.Admin.DeleteAnnotation)
	}

	return router
}
