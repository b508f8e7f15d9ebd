package ingest

import (
	"context"

	"gorm.io/datatypes"

	"github.com/annothub/annothub-backend/internal/clients"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/repos"
	"github.com/annothub/annothub-backend/internal/types"
)

// TaxonomyResolver resolves the lineage of every distinct taxid in a
// batch and persists the taxon tree and organisms. Lineages are
// returned species-first, universal root excluded. A taxid no source
// can resolve is simply absent from the result; the caller drops its
// candidates.
type TaxonomyResolver struct {
	chain     *clients.TaxonomyChain
	taxa      repos.TaxonNodeRepo
	organisms repos.OrganismRepo
	limiter   *RateLimiter
	log       *logger.Logger
}

func NewTaxonomyResolver(chain *clients.TaxonomyChain, taxa repos.TaxonNodeRepo, organisms repos.OrganismRepo, limiter *RateLimiter, log *logger.Logger) *TaxonomyResolver {
	return &TaxonomyResolver{
		chain:     chain,
		taxa:      taxa,
		organisms: organisms,
		limiter:   limiter,
		log:       log.With("component", "TaxonomyResolver"),
	}
}

func (r *TaxonomyResolver) Resolve(ctx context.Context, candidates []Candidate) (map[int64][]int64, error) {
	names := make(map[int64]string)
	var order []int64
	for _, c := range candidates {
		if _, seen := names[c.Taxid]; !seen {
			names[c.Taxid] = c.OrganismName
			order = append(order, c.Taxid)
		}
	}

	lineages := make(map[int64][]int64, len(order))
	var newNodes []*types.TaxonNode
	var newOrganisms []*types.Organism
	// chains of taxid pairs (parent, child) to set-add after insert
	var edges [][2]int64

	for _, taxid := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// already-resolved organisms carry their lineage
		existing, err := r.organisms.GetByTaxid(ctx, nil, taxid)
		if err != nil {
			return nil, err
		}
		if existing != nil && len(existing.TaxonLineage) > 0 {
			lineages[taxid] = existing.TaxonLineage
			continue
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		nodes := r.chain.Lineage(ctx, taxid) // root to leaf
		if len(nodes) == 0 {
			r.log.Warn("taxid unresolvable by all sources, dropping", "taxid", taxid)
			continue
		}

		lineage := make([]int64, 0, len(nodes))
		for i := len(nodes) - 1; i >= 0; i-- {
			lineage = append(lineage, nodes[i].Taxid)
		}
		lineages[taxid] = lineage

		newNodes = append(newNodes, nodes...)
		for i := 0; i+1 < len(nodes); i++ {
			edges = append(edges, [2]int64{nodes[i].Taxid, nodes[i+1].Taxid})
		}

		leaf := nodes[len(nodes)-1]
		name := names[taxid]
		if name == "" {
			name = leaf.ScientificName
		}
		newOrganisms = append(newOrganisms, &types.Organism{
			Taxid:        taxid,
			OrganismName: name,
			TaxonLineage: datatypes.NewJSONSlice(lineage),
		})
	}

	if err := r.taxa.CreateMissing(ctx, nil, dedupeNodes(newNodes)); err != nil {
		return nil, err
	}
	for _, e := range edges {
		if err := r.taxa.AddChild(ctx, nil, e[0], e[1]); err != nil {
			return nil, err
		}
	}
	if err := r.organisms.Upsert(ctx, nil, newOrganisms); err != nil {
		return nil, err
	}

	r.log.Info("taxonomy resolved", "taxids", len(order), "resolved", len(lineages))
	return lineages, nil
}

func dedupeNodes(nodes []*types.TaxonNode) []*types.TaxonNode {
	seen := make(map[int64]bool, len(nodes))
	out := nodes[:0]
	for _, n := range nodes {
		if seen[n.Taxid] {
			continue
		}
		seen[n.Taxid] = true
		out = append(out, n)
	}
	return out
}
