package clients

import (
	"context"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/types"
)

// rootTaxid is the universal root; lineages never include it.
const rootTaxid = 1

// TaxonomySource resolves one taxid to its lineage of taxon nodes,
// ordered root to leaf, universal root excluded.
type TaxonomySource interface {
	Name() string
	Lineage(ctx context.Context, taxid int64) ([]*types.TaxonNode, error)
}

// TaxonomyChain tries each source in preference order and returns the
// first lineage that resolves.
type TaxonomyChain struct {
	sources []TaxonomySource
	log     *logger.Logger
}

func NewTaxonomyChain(log *logger.Logger, sources ...TaxonomySource) *TaxonomyChain {
	return &TaxonomyChain{sources: sources, log: log.With("client", "TaxonomyChain")}
}

// Lineage returns nil (no error) when every source fails; taxonomy
// failures are soft and drop the candidate, not the run.
func (c *TaxonomyChain) Lineage(ctx context.Context, taxid int64) []*types.TaxonNode {
	for _, src := range c.sources {
		nodes, err := src.Lineage(ctx, taxid)
		if err != nil {
			c.log.Warn("taxonomy source failed", "source", src.Name(), "taxid", taxid, "error", err)
			continue
		}
		if len(nodes) == 0 {
			continue
		}
		return nodes
	}
	return nil
}
