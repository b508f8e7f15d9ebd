package ingest

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/annothub/annothub-backend/internal/types"
)

func testAliasMap() *AliasMap {
	return NewAliasMap([]*types.GenomicSequence{
		{
			SequenceName: "1",
			Aliases:      datatypes.NewJSONSlice([]string{"1", "01", "chr1", "chr01", "CM000663.2", "CM000663"}),
		},
		{
			SequenceName: "2",
			Aliases:      datatypes.NewJSONSlice([]string{"2", "02", "chr2", "chr02"}),
		},
		{
			SequenceName: "MT",
			Aliases:      datatypes.NewJSONSlice([]string{"MT", "chrM"}),
		},
	})
}

func TestAliasMapResolve(t *testing.T) {
	t.Parallel()

	m := testAliasMap()
	tests := []struct {
		contig string
		want   string
		ok     bool
	}{
		{"1", "1", true},
		{"chr1", "1", true},
		{"CM000663.2", "1", true},
		{"001", "1", true},       // numeric coercion
		{"chr002", "2", true},    // chr0N normalization
		{"chr2_", "2", true},     // trailing underscore strip
		{"Chr02", "2", true},     // case fold on the chr token
		{"MT", "MT", true},
		{"chrM", "MT", true},
		{"chr3", "", false},
		{"scaffold_77", "", false},
	}
	for _, tc := range tests {
		seq, ok := m.Resolve(tc.contig)
		if ok != tc.ok {
			t.Errorf("Resolve(%q) ok = %v, want %v", tc.contig, ok, tc.ok)
			continue
		}
		if ok && seq.SequenceName != tc.want {
			t.Errorf("Resolve(%q) = %s, want %s", tc.contig, seq.SequenceName, tc.want)
		}
	}
}

func TestAliasMapFirstWins(t *testing.T) {
	t.Parallel()

	m := NewAliasMap([]*types.GenomicSequence{
		{SequenceName: "first", Aliases: datatypes.NewJSONSlice([]string{"X"})},
		{SequenceName: "second", Aliases: datatypes.NewJSONSlice([]string{"X"})},
	})
	seq, ok := m.Resolve("X")
	if !ok || seq.SequenceName != "first" {
		t.Errorf("Resolve(X) = %v/%v, want first sequence", seq, ok)
	}
}

func TestMapContigs(t *testing.T) {
	t.Parallel()

	m := testAliasMap()
	rows, mapped := m.MapContigs("abc123", []string{"chr1", "scaffold_9", "MT"})

	if len(rows) != 2 || len(mapped) != 2 {
		t.Fatalf("rows = %d, mapped = %v", len(rows), mapped)
	}
	if mapped[0] != "chr1" || mapped[1] != "MT" {
		t.Errorf("mapped = %v", mapped)
	}
	if rows[0].AnnotationID != "abc123" || rows[0].SequenceID != "chr1" {
		t.Errorf("row = %+v", rows[0])
	}
	if !hasAlias(rows[0].Aliases, "CM000663") {
		t.Errorf("row aliases = %v", rows[0].Aliases)
	}

	rows, mapped = m.MapContigs("abc123", []string{"unknown"})
	if rows != nil || mapped != nil {
		t.Errorf("unresolvable contigs produced rows: %v %v", rows, mapped)
	}
}
