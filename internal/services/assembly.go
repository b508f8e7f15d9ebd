package services

import (
	"context"
	"fmt"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/platform/apierr"
	"github.com/annothub/annothub-backend/internal/repos"
	"github.com/annothub/annothub-backend/internal/types"
)

type AssemblyService interface {
	List(ctx context.Context, opts repos.ListOptions) ([]*types.GenomeAssembly, int64, error)
	Get(ctx context.Context, accession string) (*types.GenomeAssembly, error)
	Sequences(ctx context.Context, accession string) ([]*types.GenomicSequence, error)
}

type assemblyService struct {
	assemblies repos.GenomeAssemblyRepo
	sequences  repos.GenomicSequenceRepo
	log        *logger.Logger
}

func NewAssemblyService(assemblies repos.GenomeAssemblyRepo, sequences repos.GenomicSequenceRepo, log *logger.Logger) AssemblyService {
	return &assemblyService{
		assemblies: assemblies,
		sequences:  sequences,
		log:        log.With("service", "AssemblyService"),
	}
}

func (s *assemblyService) List(ctx context.Context, opts repos.ListOptions) ([]*types.GenomeAssembly, int64, error) {
	return s.assemblies.List(ctx, nil, opts)
}

func (s *assemblyService) Get(ctx context.Context, accession string) (*types.GenomeAssembly, error) {
	a, err := s.assemblies.GetByAccession(ctx, nil, accession)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apierr.NotFound("assembly_not_found", fmt.Errorf("assembly %s: %w", accession, ErrNotFound))
	}
	return a, nil
}

func (s *assemblyService) Sequences(ctx context.Context, accession string) ([]*types.GenomicSequence, error) {
	if _, err := s.Get(ctx, accession); err != nil {
		return nil, err
	}
	return s.sequences.GetByAssembly(ctx, nil, accession)
}
