package app

import (
	"github.com/annothub/annothub-backend/internal/clients"
	"github.com/annothub/annothub-backend/internal/ingest"
	"github.com/annothub/annothub-backend/internal/observability"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
)

// wirePipeline builds the ingestion side: external clients, resolvers,
// processor, counts maintainer, and the orchestrator on top.
func wirePipeline(cfg Config, r Repos, metrics *observability.Metrics, log *logger.Logger) (*ingest.Orchestrator, *ingest.CountsMaintainer) {
	chain := clients.NewTaxonomyChain(log,
		clients.NewNCBIClient(cfg.NCBIBaseURL, cfg.ExternalTimeout, log),
		clients.NewENABrowserClient(cfg.ENABrowserBaseURL, cfg.ExternalTimeout, log),
		clients.NewENAPortalClient(cfg.ENAPortalBaseURL, cfg.ExternalTimeout, log),
	)
	assemblyClient := clients.NewAssemblyClient(cfg.AssemblyBaseURL, cfg.ReportBaseURL, cfg.ExternalTimeout, log)

	limiter := ingest.NewRateLimiter(cfg.RateLimitBurst, cfg.RateLimitPause)
	fetcher := ingest.NewCatalogFetcher(cfg.CatalogURLs, cfg.CatalogTimeout, log)
	admission := ingest.NewAdmissionFilter(r.Annotations, r.Errors, log)
	taxonomy := ingest.NewTaxonomyResolver(chain, r.Taxa, r.Organisms, limiter, log)
	assembly := ingest.NewAssemblyResolver(assemblyClient, r.Assemblies, r.Sequences, cfg.ReportConcurrency, log)
	processor := ingest.NewProcessor(cfg.AnnotationsRoot, cfg.TmpDir, cfg.DownloadTimeout, r.Annotations, log)
	counts := ingest.NewCountsMaintainer(r.Annotations, r.Assemblies, r.Organisms, r.Taxa, r.Sequences, log)

	orchestrator := ingest.NewOrchestrator(
		fetcher, admission, taxonomy, assembly, processor, counts,
		r.Annotations, r.Sequences, r.SeqMaps, r.Errors,
		metrics, log,
	)
	return orchestrator, counts
}
