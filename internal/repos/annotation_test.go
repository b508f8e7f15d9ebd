package repos

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/annothub/annothub-backend/internal/types"
)

func sampleAnnotation(id, url, md5 string, taxid int64) *types.Annotation {
	return &types.Annotation{
		AnnotationID:      id,
		Taxid:             taxid,
		OrganismName:      "Homo sapiens",
		TaxonLineage:      datatypes.NewJSONSlice([]int64{taxid, 9605, 9604}),
		AssemblyAccession: "GCA_000001405.29",
		AssemblyName:      "GRCh38.p14",
		SourceFileInfo: types.SourceFileInfo{
			SourceDatabase:  "ensembl",
			URLPath:         url,
			UncompressedMD5: md5,
			ReleaseDate:     "2024-01-01",
		},
		IndexedFileInfo: types.IndexedFileInfo{
			BgzippedPath: "9606/GCA_000001405.29/ensembl_" + id + ".gff.gz",
			CSIPath:      "9606/GCA_000001405.29/ensembl_" + id + ".gff.gz.csi",
			FileSize:     1024,
		},
		MappedRegions: datatypes.NewJSONSlice([]string{"1", "2"}),
	}
}

func TestAnnotationRepoCRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewAnnotationRepo(testDB(t), testLog())

	a1 := sampleAnnotation("id1", "http://x/a.gff.gz", "md5a", 9606)
	a2 := sampleAnnotation("id2", "http://x/b.gff.gz", "md5b", 10090)
	if err := r.Create(ctx, nil, []*types.Annotation{a1, a2}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := r.GetByID(ctx, nil, "id1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Taxid != 9606 || got.SourceFileInfo.UncompressedMD5 != "md5a" {
		t.Errorf("GetByID = %+v", got)
	}
	if len(got.TaxonLineage) != 3 || got.TaxonLineage[0] != 9606 {
		t.Errorf("lineage = %v", got.TaxonLineage)
	}

	missing, err := r.GetByID(ctx, nil, "nope")
	if err != nil || missing != nil {
		t.Errorf("GetByID(missing) = %v, %v, want nil, nil", missing, err)
	}

	ok, err := r.Exists(ctx, nil, "id2")
	if err != nil || !ok {
		t.Errorf("Exists(id2) = %v, %v", ok, err)
	}

	byURL, err := r.GetBySourceURL(ctx, nil, "http://x/b.gff.gz")
	if err != nil || byURL == nil || byURL.AnnotationID != "id2" {
		t.Errorf("GetBySourceURL = %+v, %v", byURL, err)
	}

	fps, err := r.SourceFingerprints(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	set := make(map[SourceFingerprint]bool)
	for _, fp := range fps {
		set[fp] = true
	}
	if !set[SourceFingerprint{SourceURL: "http://x/a.gff.gz", SourceMD5: "md5a"}] {
		t.Errorf("fingerprints = %v", fps)
	}

	if err := r.DeleteByIDs(ctx, nil, []string{"id1"}); err != nil {
		t.Fatal(err)
	}
	if ok, _ := r.Exists(ctx, nil, "id1"); ok {
		t.Error("id1 still exists after delete")
	}
	if ok, _ := r.Exists(ctx, nil, "id2"); !ok {
		t.Error("delete removed the wrong row")
	}
}

func TestAnnotationRepoList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewAnnotationRepo(testDB(t), testLog())

	rows := []*types.Annotation{
		sampleAnnotation("id1", "http://x/a.gff.gz", "md5a", 9606),
		sampleAnnotation("id2", "http://x/b.gff.gz", "md5b", 9606),
		sampleAnnotation("id3", "http://x/c.gff.gz", "md5c", 10090),
	}
	if err := r.Create(ctx, nil, rows); err != nil {
		t.Fatal(err)
	}

	got, total, err := r.List(ctx, nil, ListOptions{
		Filters: map[string]any{"taxid": 9606},
		SortBy:  "annotation_id",
		Desc:    true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("List = %d rows, total %d, want 2/2", len(got), total)
	}
	if got[0].AnnotationID != "id2" || got[1].AnnotationID != "id1" {
		t.Errorf("sort order = %s, %s", got[0].AnnotationID, got[1].AnnotationID)
	}

	got, total, err = r.List(ctx, nil, ListOptions{Page: 2, PerPage: 2, SortBy: "annotation_id"})
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(got) != 1 || got[0].AnnotationID != "id3" {
		t.Errorf("page 2 = %v, total %d", got, total)
	}
}

func TestAnnotationRepoProjectContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewAnnotationRepo(testDB(t), testLog())

	if err := r.Create(ctx, nil, []*types.Annotation{
		sampleAnnotation("id1", "http://x/a.gff.gz", "md5a", 9606),
	}); err != nil {
		t.Fatal(err)
	}

	ctxs, err := r.ProjectContext(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ctxs) != 1 {
		t.Fatalf("contexts = %d, want 1", len(ctxs))
	}
	c := ctxs[0]
	if c.AnnotationID != "id1" || c.Taxid != 9606 || c.AssemblyAccession != "GCA_000001405.29" {
		t.Errorf("context = %+v", c)
	}
	if len(c.TaxonLineage) != 3 {
		t.Errorf("lineage = %v", c.TaxonLineage)
	}
}

func TestAnnotationRepoUpdateSummary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewAnnotationRepo(testDB(t), testLog())

	if err := r.Create(ctx, nil, []*types.Annotation{
		sampleAnnotation("id1", "http://x/a.gff.gz", "md5a", 9606),
	}); err != nil {
		t.Fatal(err)
	}

	summary := types.FeatureOverview{
		FeatureTypes: []string{"exon", "gene"},
		Sources:      []string{"ensembl"},
		HasExon:      true,
	}
	if err := r.UpdateSummary(ctx, nil, "id1", summary); err != nil {
		t.Fatal(err)
	}
	stats := types.FeatureStatistics{
		GeneCategories: []types.GeneCategoryStats{{Category: types.GeneCategoryCoding, Total: 7}},
	}
	if err := r.UpdateStatistics(ctx, nil, "id1", stats); err != nil {
		t.Fatal(err)
	}

	got, err := r.GetByID(ctx, nil, "id1")
	if err != nil {
		t.Fatal(err)
	}
	if !got.FeaturesSummary.Data().HasExon || len(got.FeaturesSummary.Data().FeatureTypes) != 2 {
		t.Errorf("summary = %+v", got.FeaturesSummary.Data())
	}
	if cats := got.FeaturesStats.Data().GeneCategories; len(cats) != 1 || cats[0].Total != 7 {
		t.Errorf("stats = %+v", got.FeaturesStats.Data())
	}
}
