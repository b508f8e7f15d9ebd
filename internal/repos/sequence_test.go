package repos

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/annothub/annothub-backend/internal/types"
)

func TestGenomicSequenceRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewGenomicSequenceRepo(testDB(t), testLog())

	rows := []*types.GenomicSequence{
		{
			AssemblyAccession: "GCA_000001405.29",
			SequenceName:      "1",
			GenBankAccession:  "CM000663.2",
			Length:            248956422,
			Aliases:           datatypes.NewJSONSlice([]string{"1", "chr1", "CM000663.2"}),
		},
		{
			AssemblyAccession: "GCA_000001405.29",
			SequenceName:      "2",
			GenBankAccession:  "CM000664.2",
			Length:            242193529,
			Aliases:           datatypes.NewJSONSlice([]string{"2", "chr2", "CM000664.2"}),
		},
		{
			AssemblyAccession: "GCA_000001635.9",
			SequenceName:      "1",
			GenBankAccession:  "CM000994.3",
			Length:            195154279,
			Aliases:           datatypes.NewJSONSlice([]string{"1", "chr1", "CM000994.3"}),
		},
	}
	if err := r.Create(ctx, nil, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, s := range rows {
		if s.ID.String() == "00000000-0000-0000-0000-000000000000" {
			t.Errorf("sequence %s has no generated id", s.SequenceName)
		}
	}

	got, err := r.GetByAssembly(ctx, nil, "GCA_000001405.29")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("GetByAssembly = %d rows, want 2", len(got))
	}

	if err := r.DeleteByAssemblies(ctx, nil, []string{"GCA_000001405.29"}); err != nil {
		t.Fatal(err)
	}
	got, _ = r.GetByAssembly(ctx, nil, "GCA_000001405.29")
	if len(got) != 0 {
		t.Errorf("rows remain after delete: %d", len(got))
	}
	kept, _ := r.GetByAssembly(ctx, nil, "GCA_000001635.9")
	if len(kept) != 1 {
		t.Errorf("delete removed the wrong assembly's rows")
	}
}

func TestSequenceMapRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := NewSequenceMapRepo(testDB(t), testLog())

	rows := []*types.AnnotationSequenceMap{
		{AnnotationID: "ann1", SequenceID: "1", Aliases: datatypes.NewJSONSlice([]string{"1", "chr1", "CM000663.2"})},
		{AnnotationID: "ann1", SequenceID: "MT", Aliases: datatypes.NewJSONSlice([]string{"MT", "chrM"})},
		{AnnotationID: "ann2", SequenceID: "chr1", Aliases: datatypes.NewJSONSlice([]string{"1", "chr1"})},
	}
	if err := r.Create(ctx, nil, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := r.GetByAnnotationID(ctx, nil, "ann1")
	if err != nil || len(got) != 2 {
		t.Fatalf("GetByAnnotationID = %d rows, %v, want 2", len(got), err)
	}

	tests := []struct {
		annotation, alias, want string
	}{
		{"ann1", "1", "1"},
		{"ann1", "chr1", "1"},
		{"ann1", "CM000663.2", "1"},
		{"ann1", "chrM", "MT"},
		{"ann2", "1", "chr1"},   // same alias, different physical id per annotation
		{"ann1", "chr9", ""},
		{"ann3", "1", ""},
	}
	for _, tc := range tests {
		got, err := r.ResolveAlias(ctx, nil, tc.annotation, tc.alias)
		if err != nil {
			t.Fatalf("ResolveAlias(%s, %s): %v", tc.annotation, tc.alias, err)
		}
		if got != tc.want {
			t.Errorf("ResolveAlias(%s, %s) = %q, want %q", tc.annotation, tc.alias, got, tc.want)
		}
	}

	if err := r.DeleteByAnnotationIDs(ctx, nil, []string{"ann1"}); err != nil {
		t.Fatal(err)
	}
	got, _ = r.GetByAnnotationID(ctx, nil, "ann1")
	if len(got) != 0 {
		t.Errorf("rows remain after delete: %d", len(got))
	}
}
