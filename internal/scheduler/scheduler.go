// Package scheduler owns the calendar triggers: the weekly ingestion
// run and the hourly downloads-cache sweep.
package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron"

	"github.com/annothub/annothub-backend/internal/ingest"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
)

type Scheduler struct {
	cron         *cron.Cron
	orchestrator *ingest.Orchestrator
	cacheDir     string
	cacheTTL     time.Duration
	log          *logger.Logger
}

func New(orchestrator *ingest.Orchestrator, cacheDir string, cacheTTL time.Duration, log *logger.Logger) *Scheduler {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &Scheduler{
		cron:         cron.New(),
		orchestrator: orchestrator,
		cacheDir:     cacheDir,
		cacheTTL:     cacheTTL,
		log:          log.With("component", "Scheduler"),
	}
}

func (s *Scheduler) Start() error {
	if err := s.cron.AddFunc("@weekly", s.runIngest); err != nil {
		return err
	}
	if s.cacheDir != "" {
		if err := s.cron.AddFunc("@hourly", s.sweepCache); err != nil {
			return err
		}
	}
	s.cron.Start()
	s.log.Info("scheduler started", "ingest", "@weekly", "cache_sweep", "@hourly")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runIngest() {
	s.log.Info("scheduled ingestion starting")
	report, err := s.orchestrator.Run(context.Background())
	if errors.Is(err, ingest.ErrRunActive) {
		s.log.Warn("scheduled ingestion skipped, a run is already active")
		return
	}
	if err != nil {
		s.log.Error("scheduled ingestion failed", "error", err)
		return
	}
	s.log.Info("scheduled ingestion finished",
		"saved", report.Saved, "failed", report.Failed, "skipped", report.Skipped)
}

// sweepCache removes downloads-cache files older than the TTL.
func (s *Scheduler) sweepCache() {
	cutoff := time.Now().Add(-s.cacheTTL)
	entries, err := os.ReadDir(s.cacheDir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("cache sweep read failed", "dir", s.cacheDir, "error", err)
		}
		return
	}
	removed := 0
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.cacheDir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			s.log.Warn("cache sweep removal failed", "path", path, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		s.log.Info("cache sweep complete", "removed", removed)
	}
}
