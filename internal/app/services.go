package app

import (
	"github.com/annothub/annothub-backend/internal/ingest"
	"github.com/annothub/annothub-backend/internal/observability"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/services"
)

type Services struct {
	Annotations services.AnnotationService
	Assemblies  services.AssemblyService
	Organisms   services.OrganismService
	Taxa        services.TaxonService
	Regions     services.RegionService
	Admin       services.AdminService
}

func wireServices(cfg Config, r Repos, orchestrator *ingest.Orchestrator, counts *ingest.CountsMaintainer, metrics *observability.Metrics, log *logger.Logger) Services {
	return Services{
		Annotations: services.NewAnnotationService(r.Annotations, r.SeqMaps, r.Errors, cfg.AnnotationsRoot, log),
		Assemblies:  services.NewAssemblyService(r.Assemblies, r.Sequences, log),
		Organisms:   services.NewOrganismService(r.Organisms, log),
		Taxa:        services.NewTaxonService(r.Taxa, log),
		Regions:     services.NewRegionService(r.Annotations, r.SeqMaps, cfg.AnnotationsRoot, log),
		Admin:       services.NewAdminService(orchestrator, counts, r.Annotations, cfg.AnnotationsRoot, metrics, log),
	}
}
