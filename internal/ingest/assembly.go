package ingest

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/annothub/annothub-backend/internal/clients"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/repos"
	"github.com/annothub/annothub-backend/internal/types"
)

const defaultReportConcurrency = 20

// AssemblyResolver fetches and persists assembly metadata plus the
// assembled-molecule sequences of every assembly the batch references.
type AssemblyResolver struct {
	client      *clients.AssemblyClient
	assemblies  repos.GenomeAssemblyRepo
	sequences   repos.GenomicSequenceRepo
	concurrency int
	log         *logger.Logger
}

func NewAssemblyResolver(client *clients.AssemblyClient, assemblies repos.GenomeAssemblyRepo, sequences repos.GenomicSequenceRepo, concurrency int, log *logger.Logger) *AssemblyResolver {
	if concurrency < 1 {
		concurrency = defaultReportConcurrency
	}
	return &AssemblyResolver{
		client:      client,
		assemblies:  assemblies,
		sequences:   sequences,
		concurrency: concurrency,
		log:         log.With("component", "AssemblyResolver"),
	}
}

// Resolve returns the set of assembly accessions present in the store
// after this step. Assemblies whose sequence batch fails to persist
// are rolled back and absent from the result.
func (r *AssemblyResolver) Resolve(ctx context.Context, candidates []Candidate, lineages map[int64][]int64) (map[string]bool, error) {
	var wanted []string
	seen := make(map[string]bool)
	for _, c := range candidates {
		if c.AssemblyAccession == "" || seen[c.AssemblyAccession] {
			continue
		}
		seen[c.AssemblyAccession] = true
		wanted = append(wanted, c.AssemblyAccession)
	}
	known, err := r.assemblies.ExistingAccessions(ctx, nil, wanted)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, acc := range wanted {
		if !known[acc] {
			missing = append(missing, acc)
		}
	}
	if len(missing) == 0 {
		return known, nil
	}

	summaries, err := r.client.FetchSummaries(ctx, missing)
	if err != nil {
		return nil, err
	}
	for _, a := range summaries {
		if lineage, ok := lineages[a.Taxid]; ok {
			a.TaxonLineage = datatypes.NewJSONSlice(lineage)
		}
	}
	if err := r.assemblies.Create(ctx, nil, summaries); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	var failed []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, a := range summaries {
		a := a
		g.Go(func() error {
			if err := r.resolveSequences(gctx, a); err != nil {
				r.log.Warn("assembly sequences failed, rolling back assembly",
					"assembly", a.AssemblyAccession, "error", err)
				mu.Lock()
				failed = append(failed, a.AssemblyAccession)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if len(failed) > 0 {
		if err := r.sequences.DeleteByAssemblies(ctx, nil, failed); err != nil {
			return nil, err
		}
		if err := r.assemblies.DeleteByAccessions(ctx, nil, failed); err != nil {
			return nil, err
		}
	}

	failedSet := make(map[string]bool, len(failed))
	for _, acc := range failed {
		failedSet[acc] = true
	}
	for _, a := range summaries {
		if !failedSet[a.AssemblyAccession] {
			known[a.AssemblyAccession] = true
		}
	}
	r.log.Info("assemblies resolved",
		"requested", len(missing), "stored", len(summaries)-len(failed), "failed", len(failed))
	return known, nil
}

func (r *AssemblyResolver) resolveSequences(ctx context.Context, a *types.GenomeAssembly) error {
	rows, err := r.client.FetchReport(ctx, r.client.ReportURL(a.AssemblyAccession, a.AssemblyName))
	if err != nil {
		return err
	}
	sequences := make([]*types.GenomicSequence, 0, len(rows))
	for _, row := range rows {
		sequences = append(sequences, &types.GenomicSequence{
			AssemblyAccession: a.AssemblyAccession,
			AssemblyName:      a.AssemblyName,
			SequenceName:      row.SequenceName,
			AssignedMolecule:  row.AssignedMolecule,
			GenBankAccession:  row.GenBankAccession,
			RefSeqAccession:   row.RefSeqAccession,
			UCSCStyleName:     row.UCSCStyleName,
			Length:            row.Length,
			Aliases:           datatypes.NewJSONSlice(BuildAliases(row)),
		})
	}
	return r.sequences.Create(ctx, nil, sequences)
}
