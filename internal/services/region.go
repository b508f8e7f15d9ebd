package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/annothub/annothub-backend/internal/gff"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/platform/apierr"
	"github.com/annothub/annothub-backend/internal/repos"
)

// RegionQuery is one region-streaming request. Start/End of 0 mean
// "unbounded" on that side.
type RegionQuery struct {
	AnnotationID  string
	Region        string
	Start         int64
	End           int64
	FeatureType   string
	FeatureSource string
	Biotype       string
}

type RegionService interface {
	// Stream writes the matching GFF lines to w incrementally. All
	// validation errors surface before the first byte is written.
	Stream(ctx context.Context, q RegionQuery, w io.Writer) error
}

type regionService struct {
	annotations repos.AnnotationRepo
	seqmaps     repos.SequenceMapRepo
	root        string
	log         *logger.Logger
}

func NewRegionService(annotations repos.AnnotationRepo, seqmaps repos.SequenceMapRepo, root string, log *logger.Logger) RegionService {
	return &regionService{
		annotations: annotations,
		seqmaps:     seqmaps,
		root:        root,
		log:         log.With("service", "RegionService"),
	}
}

func (s *regionService) Stream(ctx context.Context, q RegionQuery, w io.Writer) error {
	if q.Region == "" && q.FeatureType == "" && q.FeatureSource == "" && q.Biotype == "" {
		return apierr.BadRequest("filter_required",
			fmt.Errorf("at least one of region, feature_type, feature_source, biotype is required; use the download endpoint for the whole file"))
	}
	if q.Start != 0 && q.End != 0 && q.Start > q.End {
		return apierr.BadRequest("inverted_interval",
			fmt.Errorf("start %d is greater than end %d", q.Start, q.End))
	}

	a, err := s.annotations.GetByID(ctx, nil, q.AnnotationID)
	if err != nil {
		return err
	}
	if a == nil {
		return apierr.NotFound("annotation_not_found", fmt.Errorf("annotation %s: %w", q.AnnotationID, ErrNotFound))
	}

	summary := a.FeaturesSummary.Data()
	if q.FeatureType != "" && !summary.HasFeatureType(q.FeatureType) {
		return apierr.BadRequest("unknown_feature_type",
			fmt.Errorf("feature_type %q not in this annotation; allowed: %s", q.FeatureType, strings.Join(summary.FeatureTypes, ", ")))
	}
	if q.FeatureSource != "" && !summary.HasSource(q.FeatureSource) {
		return apierr.BadRequest("unknown_feature_source",
			fmt.Errorf("feature_source %q not in this annotation; allowed: %s", q.FeatureSource, strings.Join(summary.Sources, ", ")))
	}
	if q.Biotype != "" && !summary.HasBiotypeValue(q.Biotype) {
		return apierr.BadRequest("unknown_biotype",
			fmt.Errorf("biotype %q not in this annotation; allowed: %s", q.Biotype, strings.Join(summary.Biotypes, ", ")))
	}

	filter := gff.LineFilter{}
	if q.FeatureType != "" {
		filter.Types = map[string]struct{}{q.FeatureType: {}}
	}
	if q.FeatureSource != "" {
		filter.Sources = map[string]struct{}{q.FeatureSource: {}}
	}
	if q.Biotype != "" {
		filter.Biotypes = map[string]struct{}{q.Biotype: {}}
	}

	bgzPath := filepath.Join(s.root, a.IndexedFileInfo.BgzippedPath)
	if q.Region == "" {
		return gff.StreamFiltered(ctx, bgzPath, filter, w)
	}

	ix, err := gff.ReadIndex(filepath.Join(s.root, a.IndexedFileInfo.CSIPath))
	if err != nil {
		return fmt.Errorf("read index for %s: %w", q.AnnotationID, err)
	}
	contig, err := s.resolveRegion(ctx, q.AnnotationID, q.Region, ix)
	if err != nil {
		return err
	}
	return gff.StreamRegion(ctx, bgzPath, ix, contig, q.Start, q.End, filter, w)
}

// resolveRegion maps a user-supplied region alias to the physical
// first-column identifier: sequence-map aliases first, then the
// index's own contig list.
func (s *regionService) resolveRegion(ctx context.Context, annotationID, region string, ix *gff.Index) (string, error) {
	contig, err := s.seqmaps.ResolveAlias(ctx, nil, annotationID, region)
	if err != nil {
		return "", err
	}
	if contig != "" {
		return contig, nil
	}
	if ix.HasContig(region) {
		return region, nil
	}
	return "", apierr.NotFound("region_not_found",
		fmt.Errorf("region %q not found in annotation %s", region, annotationID))
}
