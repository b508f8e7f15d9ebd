package repos

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/annothub/annothub-backend/internal/types"
)

func sampleAssembly(accession string, taxid int64) *types.GenomeAssembly {
	return &types.GenomeAssembly{
		AssemblyAccession: accession,
		AssemblyName:      "asm-" + accession,
		Taxid:             taxid,
		OrganismName:      "organism",
		TaxonLineage:      datatypes.NewJSONSlice([]int64{taxid, 1000}),
		DownloadURL:       "https://ftp.example.org/" + accession,
		Stats: datatypes.NewJSONType(types.AssemblyStats{
			TotalSequenceLength: 3_000_000_000,
			NumberOfChromosomes: 24,
			GCPercent:           41.5,
		}),
	}
}

func TestGenomeAssemblyRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewGenomeAssemblyRepo(testDB(t), testLog())

	if err := r.Create(ctx, nil, []*types.GenomeAssembly{
		sampleAssembly("GCA_000001405.29", 9606),
		sampleAssembly("GCA_000001635.9", 10090),
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := r.GetByAccession(ctx, nil, "GCA_000001405.29")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Taxid != 9606 {
		t.Fatalf("GetByAccession = %+v", got)
	}
	if got.Stats.Data().NumberOfChromosomes != 24 {
		t.Errorf("stats = %+v", got.Stats.Data())
	}

	missing, err := r.GetByAccession(ctx, nil, "GCA_999999999.1")
	if err != nil || missing != nil {
		t.Errorf("GetByAccession(missing) = %v, %v, want nil, nil", missing, err)
	}

	known, err := r.ExistingAccessions(ctx, nil, []string{"GCA_000001405.29", "GCA_999999999.1"})
	if err != nil {
		t.Fatal(err)
	}
	if !known["GCA_000001405.29"] || known["GCA_999999999.1"] || len(known) != 1 {
		t.Errorf("ExistingAccessions = %v", known)
	}

	taxids, err := r.ProjectTaxids(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if taxids["GCA_000001405.29"] != 9606 || taxids["GCA_000001635.9"] != 10090 {
		t.Errorf("ProjectTaxids = %v", taxids)
	}

	if err := r.SetAnnotationsCount(ctx, nil, "GCA_000001405.29", 5); err != nil {
		t.Fatal(err)
	}
	got, _ = r.GetByAccession(ctx, nil, "GCA_000001405.29")
	if got.AnnotationsCount != 5 {
		t.Errorf("annotations count = %d, want 5", got.AnnotationsCount)
	}

	if err := r.DeleteByAccessions(ctx, nil, []string{"GCA_000001635.9"}); err != nil {
		t.Fatal(err)
	}
	if gone, _ := r.GetByAccession(ctx, nil, "GCA_000001635.9"); gone != nil {
		t.Error("assembly still present after delete")
	}
}

func TestGenomeAssemblyRepoList(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewGenomeAssemblyRepo(testDB(t), testLog())

	if err := r.Create(ctx, nil, []*types.GenomeAssembly{
		sampleAssembly("GCA_000000001.1", 9606),
		sampleAssembly("GCA_000000002.1", 9606),
		sampleAssembly("GCA_000000003.1", 10090),
	}); err != nil {
		t.Fatal(err)
	}

	rows, total, err := r.List(ctx, nil, ListOptions{
		Filters: map[string]any{"taxid": 9606},
		SortBy:  "assembly_accession",
	})
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(rows) != 2 || rows[0].AssemblyAccession != "GCA_000000001.1" {
		t.Errorf("List = %v rows, total %d", len(rows), total)
	}
}
