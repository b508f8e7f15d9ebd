package ingest

import (
	"strconv"
	"strings"

	"gorm.io/datatypes"

	"github.com/annothub/annothub-backend/internal/types"
)

// AliasMap resolves GFF contig names to the assembly's chromosomes
// through their precomputed alias sets.
type AliasMap struct {
	byAlias map[string]*types.GenomicSequence
}

func NewAliasMap(sequences []*types.GenomicSequence) *AliasMap {
	byAlias := make(map[string]*types.GenomicSequence)
	for _, seq := range sequences {
		for _, a := range seq.Aliases {
			if _, taken := byAlias[a]; !taken {
				byAlias[a] = seq
			}
		}
	}
	return &AliasMap{byAlias: byAlias}
}

// Resolve tries, in order: exact match, numeric coercion for all-digit
// names, and chr-token normalization (trailing underscore strip,
// chr0N to chrN).
func (m *AliasMap) Resolve(contig string) (*types.GenomicSequence, bool) {
	if seq, ok := m.byAlias[contig]; ok {
		return seq, true
	}
	if n, err := strconv.Atoi(contig); err == nil {
		if seq, ok := m.byAlias[strconv.Itoa(n)]; ok {
			return seq, true
		}
	}
	if norm := normalizeChrToken(contig); norm != "" && norm != contig {
		if seq, ok := m.byAlias[norm]; ok {
			return seq, true
		}
	}
	return nil, false
}

// MapContigs produces one sequence-map row per resolvable contig and
// the ordered list of resolved contig names. Unresolvable contigs are
// not errors; they are simply absent.
func (m *AliasMap) MapContigs(annotationID string, contigs []string) ([]*types.AnnotationSequenceMap, []string) {
	var rows []*types.AnnotationSequenceMap
	var mapped []string
	for _, contig := range contigs {
		seq, ok := m.Resolve(contig)
		if !ok {
			continue
		}
		rows = append(rows, &types.AnnotationSequenceMap{
			AnnotationID: annotationID,
			SequenceID:   contig,
			Aliases:      datatypes.NewJSONSlice([]string(seq.Aliases)),
		})
		mapped = append(mapped, contig)
	}
	return rows, mapped
}

// normalizeChrToken rewrites a chr-prefixed name into its canonical
// form: "chr1_" -> "chr1", "chr01" -> "chr1". Returns "" for names
// that are not chr tokens.
func normalizeChrToken(name string) string {
	lower := strings.ToLower(name)
	if !strings.HasPrefix(lower, "chr") {
		return ""
	}
	rest := strings.TrimSuffix(lower[3:], "_")
	rest = strings.TrimPrefix(rest, "_")
	if n, err := strconv.Atoi(rest); err == nil {
		return "chr" + strconv.Itoa(n)
	}
	return "chr" + rest
}
