package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"gorm.io/datatypes"

	"github.com/annothub/annothub-backend/internal/gff"
	"github.com/annothub/annothub-backend/internal/observability"
	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/repos"
	"github.com/annothub/annothub-backend/internal/types"
)

const publishBatchSize = 10

// ErrRunActive reports that a pipeline run is already in flight.
var ErrRunActive = errors.New("ingestion run already active")

// RunReport summarizes one orchestrator run.
type RunReport struct {
	Candidates int `json:"candidates"`
	Admitted   int `json:"admitted"`
	Saved      int `json:"saved"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// Orchestrator drives one full pipeline job: discovery, admission,
// enrichment, per-candidate processing, publication, and derived-count
// maintenance. It is the single writer of the annotations root.
type Orchestrator struct {
	fetcher   *CatalogFetcher
	admission *AdmissionFilter
	taxonomy  *TaxonomyResolver
	assembly  *AssemblyResolver
	processor *Processor
	counts    *CountsMaintainer

	annotations repos.AnnotationRepo
	sequences   repos.GenomicSequenceRepo
	seqmaps     repos.SequenceMapRepo
	errs        repos.AnnotationErrorRepo

	metrics *observability.Metrics
	log     *logger.Logger

	running atomic.Bool
}

func NewOrchestrator(
	fetcher *CatalogFetcher,
	admission *AdmissionFilter,
	taxonomy *TaxonomyResolver,
	assembly *AssemblyResolver,
	processor *Processor,
	counts *CountsMaintainer,
	annotations repos.AnnotationRepo,
	sequences repos.GenomicSequenceRepo,
	seqmaps repos.SequenceMapRepo,
	errs repos.AnnotationErrorRepo,
	metrics *observability.Metrics,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		fetcher:     fetcher,
		admission:   admission,
		taxonomy:    taxonomy,
		assembly:    assembly,
		processor:   processor,
		counts:      counts,
		annotations: annotations,
		sequences:   sequences,
		seqmaps:     seqmaps,
		errs:        errs,
		metrics:     metrics,
		log:         log.With("component", "Orchestrator"),
	}
}

// Active reports whether a pipeline run is in flight.
func (o *Orchestrator) Active() bool {
	return o.running.Load()
}

// Run executes the whole pipeline once. The pipeline is a single
// writer: a Run overlapping an active one returns ErrRunActive without
// doing any work. Per-candidate and per-batch failures are isolated;
// Run itself fails only on store or context errors that make further
// progress meaningless.
func (o *Orchestrator) Run(ctx context.Context) (*RunReport, error) {
	report := &RunReport{}
	if !o.running.CompareAndSwap(false, true) {
		return report, ErrRunActive
	}
	defer o.running.Store(false)

	// clear orphans left over from prior partial runs
	if err := o.counts.Update(ctx); err != nil {
		return report, fmt.Errorf("initial orphan cleanup: %w", err)
	}

	var candidates []Candidate
	err := o.fetcher.Fetch(ctx, func(c Candidate) bool {
		candidates = append(candidates, c)
		return ctx.Err() == nil
	})
	if err != nil {
		return report, fmt.Errorf("catalog fetch: %w", err)
	}
	report.Candidates = len(candidates)

	admitted, err := o.admission.Admit(ctx, candidates)
	if err != nil {
		return report, fmt.Errorf("admission: %w", err)
	}
	report.Admitted = len(admitted)
	if o.metrics != nil {
		o.metrics.CandidatesAdmitted(len(admitted))
	}
	if len(admitted) == 0 {
		return report, o.counts.Update(ctx)
	}

	lineages, err := o.taxonomy.Resolve(ctx, admitted)
	if err != nil {
		return report, fmt.Errorf("taxonomy resolution: %w", err)
	}
	survivors := admitted[:0]
	for _, c := range admitted {
		if _, ok := lineages[c.Taxid]; ok {
			survivors = append(survivors, c)
		} else {
			report.Skipped++
		}
	}

	assemblies, err := o.assembly.Resolve(ctx, survivors, lineages)
	if err != nil {
		return report, fmt.Errorf("assembly resolution: %w", err)
	}
	final := survivors[:0]
	for _, c := range survivors {
		if assemblies[c.AssemblyAccession] {
			final = append(final, c)
		} else {
			report.Skipped++
		}
	}

	for start := 0; start < len(final); start += publishBatchSize {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		end := start + publishBatchSize
		if end > len(final) {
			end = len(final)
		}
		o.runBatch(ctx, final[start:end], lineages, report)
	}

	if err := o.counts.Update(ctx); err != nil {
		return report, fmt.Errorf("final counts update: %w", err)
	}
	o.log.Info("pipeline run complete",
		"candidates", report.Candidates, "admitted", report.Admitted,
		"saved", report.Saved, "failed", report.Failed, "skipped", report.Skipped)
	return report, nil
}

type pendingAnnotation struct {
	candidate  Candidate
	annotation *types.Annotation
	seqmaps    []*types.AnnotationSequenceMap
}

func (o *Orchestrator) runBatch(ctx context.Context, batch []Candidate, lineages map[int64][]int64, report *RunReport) {
	var pending []pendingAnnotation
	for _, c := range batch {
		p, err := o.processOne(ctx, c, lineages[c.Taxid])
		if err != nil {
			if errors.Is(err, ErrContentUnchanged) {
				report.Skipped++
				continue
			}
			report.Failed++
			if o.metrics != nil {
				o.metrics.CandidateFailed()
			}
			o.recordFailure(ctx, c, err)
			continue
		}
		pending = append(pending, *p)
	}
	if len(pending) == 0 {
		return
	}

	// a new release for a source URL replaces the old one: record,
	// sequence maps, and on-disk artifacts go together
	for _, p := range pending {
		prior, err := o.annotations.GetBySourceURL(ctx, nil, p.candidate.SourceURL)
		if err != nil {
			o.log.Error("prior annotation lookup failed", "url", p.candidate.SourceURL, "error", err)
			continue
		}
		if prior == nil || prior.AnnotationID == p.annotation.AnnotationID {
			continue
		}
		if err := o.deleteAnnotation(ctx, prior); err != nil {
			o.log.Error("prior annotation delete failed",
				"annotation_id", prior.AnnotationID, "error", err)
		}
	}

	annotations := make([]*types.Annotation, 0, len(pending))
	var maps []*types.AnnotationSequenceMap
	var md5s []string
	for _, p := range pending {
		annotations = append(annotations, p.annotation)
		maps = append(maps, p.seqmaps...)
		md5s = append(md5s, p.candidate.SourceMD5)
	}
	if err := o.annotations.Create(ctx, nil, annotations); err != nil {
		o.log.Error("batch publish failed, removing artifacts", "size", len(pending), "error", err)
		for _, p := range pending {
			o.processor.RemoveArtifacts(p.annotation.IndexedFileInfo.BgzippedPath, p.annotation.IndexedFileInfo.CSIPath)
		}
		report.Failed += len(pending)
		return
	}
	if err := o.seqmaps.Create(ctx, nil, maps); err != nil {
		o.log.Error("sequence map publish failed", "error", err)
	}
	// a successful publish clears the suppression for that source
	if err := o.errs.DeleteBySourceMD5s(ctx, nil, md5s); err != nil {
		o.log.Error("error row cleanup failed", "error", err)
	}
	report.Saved += len(pending)
	if o.metrics != nil {
		o.metrics.AnnotationsSaved(len(pending))
	}
}

func (o *Orchestrator) processOne(ctx context.Context, c Candidate, lineage []int64) (*pendingAnnotation, error) {
	pf, err := o.processor.Process(ctx, c)
	if err != nil {
		return nil, err
	}
	cleanup := func() { o.processor.RemoveArtifacts(pf.BgzippedPath, pf.CSIPath) }

	absBgz := o.processor.ArtifactPath(pf.BgzippedPath)
	absCSI := o.processor.ArtifactPath(pf.CSIPath)

	ix, err := gff.ReadIndex(absCSI)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("read index: %w", err)
	}
	seqs, err := o.sequences.GetByAssembly(ctx, nil, c.AssemblyAccession)
	if err != nil {
		cleanup()
		return nil, err
	}
	rows, mapped := NewAliasMap(seqs).MapContigs(pf.AnnotationID, ix.Contigs())
	if len(mapped) == 0 {
		cleanup()
		return nil, fmt.Errorf("no contig of %s resolved to a chromosome of %s", c.SourceURL, c.AssemblyAccession)
	}

	summary, err := gff.Summarize(ctx, absBgz)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("feature summary: %w", err)
	}
	stats, err := gff.Statistics(ctx, absBgz)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("feature statistics: %w", err)
	}
	if o.metrics != nil {
		o.metrics.CompressedBytes(pf.FileSize)
	}

	annotation := &types.Annotation{
		AnnotationID:      pf.AnnotationID,
		Taxid:             c.Taxid,
		OrganismName:      c.OrganismName,
		TaxonLineage:      datatypes.NewJSONSlice(lineage),
		AssemblyAccession: c.AssemblyAccession,
		AssemblyName:      c.AssemblyName,
		SourceFileInfo: types.SourceFileInfo{
			SourceDatabase:   c.SourceDatabase,
			Provider:         c.AnnotationProvider,
			URLPath:          c.SourceURL,
			ReleaseDate:      c.ReleaseDate,
			LastModifiedDate: c.LastModifiedDate,
			UncompressedMD5:  c.SourceMD5,
			PipelineName:     c.PipelineName,
			PipelineVersion:  c.PipelineVersion,
			PipelineMethod:   c.PipelineMethod,
		},
		IndexedFileInfo: types.IndexedFileInfo{
			BgzippedPath: pf.BgzippedPath,
			CSIPath:      pf.CSIPath,
			FileSize:     pf.FileSize,
			ProcessedAt:  pf.ProcessedAt,
		},
		MappedRegions:   datatypes.NewJSONSlice(mapped),
		FeaturesSummary: datatypes.NewJSONType(*summary),
		FeaturesStats:   datatypes.NewJSONType(*stats),
	}
	return &pendingAnnotation{candidate: c, annotation: annotation, seqmaps: rows}, nil
}

func (o *Orchestrator) recordFailure(ctx context.Context, c Candidate, cause error) {
	o.log.Warn("candidate failed", "url", c.SourceURL, "error", cause)
	e := &types.AnnotationError{
		Taxid:             c.Taxid,
		OrganismName:      c.OrganismName,
		AssemblyAccession: c.AssemblyAccession,
		AssemblyName:      c.AssemblyName,
		SourceDatabase:    c.SourceDatabase,
		SourceURL:         c.SourceURL,
		SourceMD5:         c.SourceMD5,
		ReleaseDate:       c.ReleaseDate,
		LastModifiedDate:  c.LastModifiedDate,
		Message:           cause.Error(),
	}
	if err := o.errs.Upsert(ctx, nil, e); err != nil {
		o.log.Error("error record upsert failed", "url", c.SourceURL, "error", err)
	}
}

// deleteAnnotation removes one annotation record together with its
// sequence-map rows and on-disk artifacts.
func (o *Orchestrator) deleteAnnotation(ctx context.Context, a *types.Annotation) error {
	if err := o.seqmaps.DeleteByAnnotationIDs(ctx, nil, []string{a.AnnotationID}); err != nil {
		return err
	}
	if err := o.annotations.DeleteByIDs(ctx, nil, []string{a.AnnotationID}); err != nil {
		return err
	}
	o.processor.RemoveArtifacts(a.IndexedFileInfo.BgzippedPath, a.IndexedFileInfo.CSIPath)
	return nil
}

// DeleteAnnotationByID is the admin-facing variant of deleteAnnotation.
func (o *Orchestrator) DeleteAnnotationByID(ctx context.Context, annotationID string) error {
	a, err := o.annotations.GetByID(ctx, nil, annotationID)
	if err != nil {
		return err
	}
	if a == nil {
		return nil
	}
	if err := o.deleteAnnotation(ctx, a); err != nil {
		return err
	}
	return o.counts.Update(ctx)
}
