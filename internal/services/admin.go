package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/annothub/annothub-backend/internal/gff"
	"github.com/annothub/annothub-backend/internal/ingest"
	"github.com/annothub/annothub-backend/internal/observability"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/platform/apierr"
	"github.com/annothub/annothub-backend/internal/repos"
)

type AdminService interface {
	// TriggerIngest starts one pipeline run in the background and
	// returns its run id. A second trigger while a run is active is a
	// 409-class error; the orchestrator's own guard is authoritative,
	// so cron-triggered runs are covered by the same flag.
	TriggerIngest() (string, error)
	UpdateCounts(ctx context.Context) error
	// RefreshStatistics recomputes one annotation's summary and
	// statistics from the stored artifact.
	RefreshStatistics(ctx context.Context, annotationID string) error
	DeleteAnnotation(ctx context.Context, annotationID string) error
}

type adminService struct {
	orchestrator *ingest.Orchestrator
	counts       *ingest.CountsMaintainer
	annotations  repos.AnnotationRepo
	root         string
	metrics      *observability.Metrics
	log          *logger.Logger
}

func NewAdminService(orchestrator *ingest.Orchestrator, counts *ingest.CountsMaintainer, annotations repos.AnnotationRepo, root string, metrics *observability.Metrics, log *logger.Logger) AdminService {
	return &adminService{
		orchestrator: orchestrator,
		counts:       counts,
		annotations:  annotations,
		root:         root,
		metrics:      metrics,
		log:          log.With("service", "AdminService"),
	}
}

func (s *adminService) TriggerIngest() (string, error) {
	if s.orchestrator.Active() {
		return "", apierr.New(http.StatusConflict, "ingest_already_running", ingest.ErrRunActive)
	}
	runID := uuid.NewString()
	go func() {
		log := s.log.With("run_id", runID)
		log.Info("ingestion run started")
		report, err := s.orchestrator.Run(context.Background())
		if errors.Is(err, ingest.ErrRunActive) {
			// two triggers raced past the Active check; the CAS inside
			// Run kept a single writer
			log.Warn("ingestion run skipped, another run is active")
			return
		}
		if err != nil {
			log.Error("ingestion run failed", "error", err)
			if s.metrics != nil {
				s.metrics.PipelineRun("failed")
			}
			return
		}
		log.Info("ingestion run finished",
			"saved", report.Saved, "failed", report.Failed, "skipped", report.Skipped)
		if s.metrics != nil {
			s.metrics.PipelineRun("ok")
		}
	}()
	return runID, nil
}

func (s *adminService) UpdateCounts(ctx context.Context) error {
	return s.counts.Update(ctx)
}

func (s *adminService) RefreshStatistics(ctx context.Context, annotationID string) error {
	a, err := s.annotations.GetByID(ctx, nil, annotationID)
	if err != nil {
		return err
	}
	if a == nil {
		return apierr.NotFound("annotation_not_found", fmt.Errorf("annotation %s: %w", annotationID, ErrNotFound))
	}
	path := filepath.Join(s.root, a.IndexedFileInfo.BgzippedPath)
	summary, err := gff.Summarize(ctx, path)
	if err != nil {
		return fmt.Errorf("summarize %s: %w", annotationID, err)
	}
	stats, err := gff.Statistics(ctx, path)
	if err != nil {
		return fmt.Errorf("statistics %s: %w", annotationID, err)
	}
	if err := s.annotations.UpdateSummary(ctx, nil, annotationID, *summary); err != nil {
		return err
	}
	return s.annotations.UpdateStatistics(ctx, nil, annotationID, *stats)
}

func (s *adminService) DeleteAnnotation(ctx context.Context, annotationID string) error {
	return s.orchestrator.DeleteAnnotationByID(ctx, annotationID)
}
