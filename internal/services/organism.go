package services

import (
	"context"
	"fmt"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/platform/apierr"
	"github.com/annothub/annothub-backend/internal/repos"
	"github.com/annothub/annothub-backend/internal/types"
)

type OrganismService interface {
	List(ctx context.Context, opts repos.ListOptions) ([]*types.Organism, int64, error)
	Get(ctx context.Context, taxid int64) (*types.Organism, error)
}

type organismService struct {
	organisms repos.OrganismRepo
	log       *logger.Logger
}

func NewOrganismService(organisms repos.OrganismRepo, log *logger.Logger) OrganismService {
	return &organismService{
		organisms: organisms,
		log:       log.With("service", "OrganismService"),
	}
}

func (s *organismService) List(ctx context.Context, opts repos.ListOptions) ([]*types.Organism, int64, error) {
	return s.organisms.List(ctx, nil, opts)
}

func (s *organismService) Get(ctx context.Context, taxid int64) (*types.Organism, error) {
	o, err := s.organisms.GetByTaxid(ctx, nil, taxid)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apierr.NotFound("organism_not_found", fmt.Errorf("organism %d: %w", taxid, ErrNotFound))
	}
	return o, nil
}
