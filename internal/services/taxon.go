package services

import (
	"context"
	"fmt"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/platform/apierr"
	"github.com/annothub/annothub-backend/internal/repos"
	"github.com/annothub/annothub-backend/internal/types"
)

type TaxonService interface {
	List(ctx context.Context, opts repos.ListOptions) ([]*types.TaxonNode, int64, error)
	Get(ctx context.Context, taxid int64) (*types.TaxonNode, error)
	Children(ctx context.Context, taxid int64) ([]*types.TaxonNode, error)
	Ancestors(ctx context.Context, taxid int64) ([]*types.TaxonNode, error)
}

type taxonService struct {
	taxa repos.TaxonNodeRepo
	log  *logger.Logger
}

func NewTaxonService(taxa repos.TaxonNodeRepo, log *logger.Logger) TaxonService {
	return &taxonService{taxa: taxa, log: log.With("service", "TaxonService")}
}

func (s *taxonService) List(ctx context.Context, opts repos.ListOptions) ([]*types.TaxonNode, int64, error) {
	return s.taxa.List(ctx, nil, opts)
}

func (s *taxonService) Get(ctx context.Context, taxid int64) (*types.TaxonNode, error) {
	n, err := s.taxa.GetByTaxid(ctx, nil, taxid)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, apierr.NotFound("taxon_not_found", fmt.Errorf("taxon %d: %w", taxid, ErrNotFound))
	}
	return n, nil
}

func (s *taxonService) Children(ctx context.Context, taxid int64) ([]*types.TaxonNode, error) {
	n, err := s.Get(ctx, taxid)
	if err != nil {
		return nil, err
	}
	return s.taxa.GetByTaxids(ctx, nil, n.Children)
}

// Ancestors walks parent links up from the taxon. The walk is bounded
// so a corrupt children graph cannot loop forever.
func (s *taxonService) Ancestors(ctx context.Context, taxid int64) ([]*types.TaxonNode, error) {
	if _, err := s.Get(ctx, taxid); err != nil {
		return nil, err
	}
	var ancestors []*types.TaxonNode
	current := taxid
	for depth := 0; depth < 100; depth++ {
		parent, err := s.taxa.ParentOf(ctx, nil, current)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		ancestors = append(ancestors, parent)
		current = parent.Taxid
	}
	return ancestors, nil
}
