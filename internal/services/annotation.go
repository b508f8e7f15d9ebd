package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/annothub/annothub-backend/internal/gff"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/platform/apierr"
	"github.com/annothub/annothub-backend/internal/repos"
	"github.com/annothub/annothub-backend/internal/types"
)

// ErrNotFound is the generic missing-record sentinel for the read path.
var ErrNotFound = errors.New("not found")

type AnnotationService interface {
	List(ctx context.Context, opts repos.ListOptions) ([]*types.Annotation, int64, error)
	Get(ctx context.Context, annotationID string) (*types.Annotation, error)
	Contigs(ctx context.Context, annotationID string) ([]string, error)
	Aliases(ctx context.Context, annotationID string) ([]*types.AnnotationSequenceMap, error)
	Errors(ctx context.Context, opts repos.ListOptions) ([]*types.AnnotationError, int64, error)
	// Download streams the whole block-compressed artifact; the returned
	// name is the artifact's file name.
	Download(ctx context.Context, annotationID string, w io.Writer) (string, error)
	ExportTSV(ctx context.Context, opts repos.ListOptions, w io.Writer) error
}

type annotationService struct {
	annotations repos.AnnotationRepo
	seqmaps     repos.SequenceMapRepo
	errs        repos.AnnotationErrorRepo
	root        string
	log         *logger.Logger
}

func NewAnnotationService(annotations repos.AnnotationRepo, seqmaps repos.SequenceMapRepo, errs repos.AnnotationErrorRepo, root string, log *logger.Logger) AnnotationService {
	return &annotationService{
		annotations: annotations,
		seqmaps:     seqmaps,
		errs:        errs,
		root:        root,
		log:         log.With("service", "AnnotationService"),
	}
}

func (s *annotationService) List(ctx context.Context, opts repos.ListOptions) ([]*types.Annotation, int64, error) {
	return s.annotations.List(ctx, nil, opts)
}

func (s *annotationService) Get(ctx context.Context, annotationID string) (*types.Annotation, error) {
	a, err := s.annotations.GetByID(ctx, nil, annotationID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apierr.NotFound("annotation_not_found", fmt.Errorf("annotation %s: %w", annotationID, ErrNotFound))
	}
	return a, nil
}

func (s *annotationService) Contigs(ctx context.Context, annotationID string) ([]string, error) {
	a, err := s.Get(ctx, annotationID)
	if err != nil {
		return nil, err
	}
	ix, err := gff.ReadIndex(filepath.Join(s.root, a.IndexedFileInfo.CSIPath))
	if err != nil {
		return nil, fmt.Errorf("read index for %s: %w", annotationID, err)
	}
	return ix.Contigs(), nil
}

func (s *annotationService) Aliases(ctx context.Context, annotationID string) ([]*types.AnnotationSequenceMap, error) {
	if _, err := s.Get(ctx, annotationID); err != nil {
		return nil, err
	}
	return s.seqmaps.GetByAnnotationID(ctx, nil, annotationID)
}

func (s *annotationService) Errors(ctx context.Context, opts repos.ListOptions) ([]*types.AnnotationError, int64, error) {
	return s.errs.List(ctx, nil, opts)
}

func (s *annotationService) Download(ctx context.Context, annotationID string, w io.Writer) (string, error) {
	a, err := s.Get(ctx, annotationID)
	if err != nil {
		return "", err
	}
	rel := a.IndexedFileInfo.BgzippedPath
	if _, err := gff.Copy(filepath.Join(s.root, rel), w); err != nil {
		return "", fmt.Errorf("stream artifact for %s: %w", annotationID, err)
	}
	return filepath.Base(rel), nil
}

// tsvColumns is the fixed projection streamed by ExportTSV.
var tsvColumns = []string{
	"annotation_id", "taxid", "organism_name", "assembly_accession",
	"assembly_name", "source_database", "source_url", "release_date",
	"source_md5", "bgzipped_path", "file_size",
}

func (s *annotationService) ExportTSV(ctx context.Context, opts repos.ListOptions, w io.Writer) error {
	rows, _, err := s.annotations.List(ctx, nil, opts)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, strings.Join(tsvColumns, "\t")+"\n"); err != nil {
		return err
	}
	for _, a := range rows {
		fields := []string{
			a.AnnotationID,
			strconv.FormatInt(a.Taxid, 10),
			a.OrganismName,
			a.AssemblyAccession,
			a.AssemblyName,
			a.SourceFileInfo.SourceDatabase,
			a.SourceFileInfo.URLPath,
			a.SourceFileInfo.ReleaseDate,
			a.SourceFileInfo.UncompressedMD5,
			a.IndexedFileInfo.BgzippedPath,
			strconv.FormatInt(a.IndexedFileInfo.FileSize, 10),
		}
		if _, err := io.WriteString(w, strings.Join(fields, "\t")+"\n"); err != nil {
			return err
		}
	}
	return nil
}
