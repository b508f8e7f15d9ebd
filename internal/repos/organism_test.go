package repos

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/annothub/annothub-backend/internal/types"
)

func TestOrganismRepoUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewOrganismRepo(testDB(t), testLog())

	if err := r.Upsert(ctx, nil, []*types.Organism{
		{Taxid: 9606, OrganismName: "Homo sapiens", TaxonLineage: datatypes.NewJSONSlice([]int64{9606, 9605})},
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	// second upsert on the same taxid replaces the mutable columns
	if err := r.Upsert(ctx, nil, []*types.Organism{
		{Taxid: 9606, OrganismName: "Homo sapiens", CommonName: "human", TaxonLineage: datatypes.NewJSONSlice([]int64{9606, 9605, 9604})},
	}); err != nil {
		t.Fatalf("Upsert (again): %v", err)
	}

	got, err := r.GetByTaxid(ctx, nil, 9606)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.CommonName != "human" || len(got.TaxonLineage) != 3 {
		t.Errorf("organism = %+v", got)
	}

	missing, err := r.GetByTaxid(ctx, nil, 1)
	if err != nil || missing != nil {
		t.Errorf("GetByTaxid(missing) = %v, %v, want nil, nil", missing, err)
	}
}

func TestOrganismRepoCountsAndDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewOrganismRepo(testDB(t), testLog())

	if err := r.Upsert(ctx, nil, []*types.Organism{
		{Taxid: 9606, OrganismName: "Homo sapiens"},
		{Taxid: 10090, OrganismName: "Mus musculus"},
	}); err != nil {
		t.Fatal(err)
	}

	if err := r.SetCounts(ctx, nil, 9606, 4, 2); err != nil {
		t.Fatal(err)
	}
	got, _ := r.GetByTaxid(ctx, nil, 9606)
	if got.AnnotationsCount != 4 || got.AssembliesCount != 2 {
		t.Errorf("counts = %d/%d", got.AnnotationsCount, got.AssembliesCount)
	}

	taxids, err := r.AllTaxids(ctx, nil)
	if err != nil || len(taxids) != 2 {
		t.Errorf("AllTaxids = %v, %v", taxids, err)
	}

	if err := r.DeleteByTaxids(ctx, nil, []int64{10090}); err != nil {
		t.Fatal(err)
	}
	if gone, _ := r.GetByTaxid(ctx, nil, 10090); gone != nil {
		t.Error("10090 still present after delete")
	}
}
