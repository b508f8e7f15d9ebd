package gff

import (
	"reflect"
	"testing"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		ok   bool
	}{
		{"header", "##gff-version 3", false},
		{"comment", "# anything", false},
		{"too few columns", "1\tsrc\tgene\t1\t10", false},
		{"bad start", "1\tsrc\tgene\tx\t10\t.\t+\t.\tID=g1", false},
		{"bad end", "1\tsrc\tgene\t1\ty\t.\t+\t.\tID=g1", false},
		{"valid", "1\tensembl\tgene\t100\t200\t.\t+\t.\tID=gene:g1;biotype=protein_coding", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			l, ok := ParseLine(tc.in)
			if ok != tc.ok {
				t.Fatalf("ParseLine(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			}
			if !ok {
				return
			}
			if l.SeqID != "1" || l.Type != "gene" || l.Start != 100 || l.End != 200 {
				t.Errorf("unexpected parse: %+v", l)
			}
			if l.Length() != 101 {
				t.Errorf("Length() = %d, want 101", l.Length())
			}
			if l.Attributes["ID"] != "gene:g1" {
				t.Errorf("ID attribute = %q", l.Attributes["ID"])
			}
		})
	}
}

func TestParseAttributes(t *testing.T) {
	t.Parallel()

	attrs := ParseAttributes("ID=t1;Parent=g1; biotype = lncRNA ;flagonly;empty=")
	want := map[string]string{"ID": "t1", "Parent": "g1", "biotype": "lncRNA", "empty": ""}
	if !reflect.DeepEqual(attrs, want) {
		t.Errorf("ParseAttributes = %v, want %v", attrs, want)
	}
}

func TestParents(t *testing.T) {
	t.Parallel()

	l, _ := ParseLine("1\ts\texon\t1\t5\t.\t+\t.\tParent=t1, t2 ,,t3")
	got := l.Parents()
	want := []string{"t1", "t2", "t3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parents() = %v, want %v", got, want)
	}

	root, _ := ParseLine("1\ts\tgene\t1\t5\t.\t+\t.\tID=g1")
	if root.Parents() != nil {
		t.Errorf("Parents() on root = %v, want nil", root.Parents())
	}
}

func TestBiotypePrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		attrs string
		want  string
	}{
		{"biotype=a;gene_biotype=b;transcript_biotype=c", "a"},
		{"gene_biotype=b;transcript_biotype=c", "b"},
		{"transcript_biotype=c", "c"},
		{"ID=x", ""},
	}
	for _, tc := range tests {
		l, _ := ParseLine("1\ts\tgene\t1\t5\t.\t+\t.\t" + tc.attrs)
		if got := l.Biotype(); got != tc.want {
			t.Errorf("Biotype(%q) = %q, want %q", tc.attrs, got, tc.want)
		}
	}
}
