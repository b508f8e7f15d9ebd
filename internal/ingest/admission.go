package ingest

import (
	"context"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/repos"
)

// AdmissionFilter drops candidates whose source fingerprint is already
// published and candidates whose declared md5 sits in the error table.
type AdmissionFilter struct {
	annotations repos.AnnotationRepo
	errs        repos.AnnotationErrorRepo
	log         *logger.Logger
}

func NewAdmissionFilter(annotations repos.AnnotationRepo, errs repos.AnnotationErrorRepo, log *logger.Logger) *AdmissionFilter {
	return &AdmissionFilter{
		annotations: annotations,
		errs:        errs,
		log:         log.With("component", "AdmissionFilter"),
	}
}

func (f *AdmissionFilter) Admit(ctx context.Context, candidates []Candidate) ([]Candidate, error) {
	fingerprints, err := f.annotations.SourceFingerprints(ctx, nil)
	if err != nil {
		return nil, err
	}
	known := make(map[repos.SourceFingerprint]bool, len(fingerprints))
	for _, fp := range fingerprints {
		known[fp] = true
	}
	erroredMD5s, err := f.errs.MD5s(ctx, nil)
	if err != nil {
		return nil, err
	}

	admitted := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if known[repos.SourceFingerprint{SourceURL: c.SourceURL, SourceMD5: c.SourceMD5}] {
			continue
		}
		if erroredMD5s[c.SourceMD5] {
			continue
		}
		admitted = append(admitted, c)
	}
	f.log.Info("admission complete",
		"candidates", len(candidates), "admitted", len(admitted))
	return admitted, nil
}
