package app

import (
	"github.com/annothub/annothub-backend/internal/http/handlers"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
)

type Handlers struct {
	Health      *handlers.HealthHandler
	Annotations *handlers.AnnotationHandler
	Assemblies  *handlers.AssemblyHandler
	Organisms   *handlers.OrganismHandler
	Taxa        *handlers.TaxonHandler
	Regions     *handlers.RegionHandler
	Admin       *handlers.AdminHandler
}

func wireHandlers(s Services, log *logger.Logger) Handlers {
	return Handlers{
		Health:      handlers.NewHealthHandler(),
		Annotations: handlers.NewAnnotationHandler(log, s.Annotations),
		Assemblies:  handlers.NewAssemblyHandler(log, s.Assemblies),
		Organisms:   handlers.NewOrganismHandler(log, s.Organisms),
		Taxa:        handlers.NewTaxonHandler(log, s.Taxa),
		Regions:     handlers.NewRegionHandler(log, s.Regions),
		Admin:       handlers.NewAdminHandler(log, s.Admin),
	}
}
