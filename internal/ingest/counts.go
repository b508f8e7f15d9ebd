package ingest

import (
	"context"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/repos"
)

// CountsMaintainer recomputes the derived annotations / assemblies /
// organisms counts from the store and reaps entities left without any
// annotations. Counts are authoritative recomputations, never deltas.
type CountsMaintainer struct {
	annotations repos.AnnotationRepo
	assemblies  repos.GenomeAssemblyRepo
	organisms   repos.OrganismRepo
	taxa        repos.TaxonNodeRepo
	sequences   repos.GenomicSequenceRepo
	log         *logger.Logger
}

func NewCountsMaintainer(
	annotations repos.AnnotationRepo,
	assemblies repos.GenomeAssemblyRepo,
	organisms repos.OrganismRepo,
	taxa repos.TaxonNodeRepo,
	sequences repos.GenomicSequenceRepo,
	log *logger.Logger,
) *CountsMaintainer {
	return &CountsMaintainer{
		annotations: annotations,
		assemblies:  assemblies,
		organisms:   organisms,
		taxa:        taxa,
		sequences:   sequences,
		log:         log.With("component", "CountsMaintainer"),
	}
}

// Update recomputes every derived count and deletes orphaned
// assemblies, organisms, and taxon nodes.
func (m *CountsMaintainer) Update(ctx context.Context) error {
	contexts, err := m.annotations.ProjectContext(ctx, nil)
	if err != nil {
		return err
	}

	annPerAssembly := make(map[string]int64)
	annPerTaxid := make(map[int64]int64)
	annPerTaxon := make(map[int64]int64)
	lineageByTaxid := make(map[int64][]int64)
	for _, c := range contexts {
		annPerAssembly[c.AssemblyAccession]++
		annPerTaxid[c.Taxid]++
		members := lineageMembers(c.Taxid, c.TaxonLineage)
		for _, t := range members {
			annPerTaxon[t]++
		}
		if _, ok := lineageByTaxid[c.Taxid]; !ok {
			lineageByTaxid[c.Taxid] = members
		}
	}

	// assemblies: reap unreferenced ones (and their sequences), then
	// refresh the counts of the survivors
	asmTaxids, err := m.assemblies.ProjectTaxids(ctx, nil)
	if err != nil {
		return err
	}
	var orphanAssemblies []string
	for acc := range asmTaxids {
		if annPerAssembly[acc] == 0 {
			orphanAssemblies = append(orphanAssemblies, acc)
			delete(asmTaxids, acc)
		}
	}
	if len(orphanAssemblies) > 0 {
		if err := m.sequences.DeleteByAssemblies(ctx, nil, orphanAssemblies); err != nil {
			return err
		}
		if err := m.assemblies.DeleteByAccessions(ctx, nil, orphanAssemblies); err != nil {
			return err
		}
	}
	for acc := range asmTaxids {
		if err := m.assemblies.SetAnnotationsCount(ctx, nil, acc, annPerAssembly[acc]); err != nil {
			return err
		}
	}

	asmPerTaxid := make(map[int64]int64)
	asmPerTaxon := make(map[int64]int64)
	for _, taxid := range asmTaxids {
		asmPerTaxid[taxid]++
		for _, t := range lineageMembers(taxid, lineageByTaxid[taxid]) {
			asmPerTaxon[t]++
		}
	}

	// organisms
	organismTaxids, err := m.organisms.AllTaxids(ctx, nil)
	if err != nil {
		return err
	}
	orgPerTaxon := make(map[int64]int64)
	var orphanOrganisms []int64
	for _, taxid := range organismTaxids {
		if annPerTaxid[taxid] == 0 {
			orphanOrganisms = append(orphanOrganisms, taxid)
			continue
		}
		if err := m.organisms.SetCounts(ctx, nil, taxid, annPerTaxid[taxid], asmPerTaxid[taxid]); err != nil {
			return err
		}
		for _, t := range lineageMembers(taxid, lineageByTaxid[taxid]) {
			orgPerTaxon[t]++
		}
	}
	if err := m.organisms.DeleteByTaxids(ctx, nil, orphanOrganisms); err != nil {
		return err
	}

	// taxon nodes
	taxonTaxids, err := m.taxa.AllTaxids(ctx, nil)
	if err != nil {
		return err
	}
	var orphanTaxa []int64
	for _, taxid := range taxonTaxids {
		if annPerTaxon[taxid] == 0 {
			orphanTaxa = append(orphanTaxa, taxid)
			continue
		}
		if err := m.taxa.SetCounts(ctx, nil, taxid, annPerTaxon[taxid], asmPerTaxon[taxid], orgPerTaxon[taxid]); err != nil {
			return err
		}
	}
	if err := m.taxa.DeleteByTaxids(ctx, nil, orphanTaxa); err != nil {
		return err
	}

	m.log.Info("derived counts updated",
		"annotations", len(contexts),
		"assemblies_reaped", len(orphanAssemblies),
		"organisms_reaped", len(orphanOrganisms),
		"taxa_reaped", len(orphanTaxa))
	return nil
}

// lineageMembers is the lineage plus the leaf taxid itself, deduped.
func lineageMembers(taxid int64, lineage []int64) []int64 {
	seen := make(map[int64]bool, len(lineage)+1)
	out := make([]int64, 0, len(lineage)+1)
	for _, t := range lineage {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	if !seen[taxid] {
		out = append(out, taxid)
	}
	return out
}
