package gff

import (
	"context"
	"sort"

	"github.com/annothub/annothub-backend/internal/types"
)

var biotypeAttrKeys = []string{"biotype", "gene_biotype", "transcript_biotype"}

// Summarize runs the single-pass feature overview over a
// block-compressed GFF file.
func Summarize(ctx context.Context, path string) (*types.FeatureOverview, error) {
	br, err := OpenBlock(path)
	if err != nil {
		return nil, err
	}
	defer br.Close()

	var (
		attrKeys  = map[string]struct{}{}
		ftypes    = map[string]struct{}{}
		sources   = map[string]struct{}{}
		biotypes  = map[string]struct{}{}
		missingID = map[string]struct{}{}
		rootTypes = map[string]int64{}
		hasCDS    bool
		hasExon   bool
	)

	err = br.Scan(ctx, func(s string) error {
		l, ok := ParseLine(s)
		if !ok {
			return nil
		}
		for k := range l.Attributes {
			attrKeys[k] = struct{}{}
		}
		ftypes[l.Type] = struct{}{}
		sources[l.Source] = struct{}{}
		for _, k := range biotypeAttrKeys {
			if v := l.Attributes[k]; v != "" {
				biotypes[v] = struct{}{}
			}
		}
		if l.Attributes["ID"] == "" {
			missingID[l.Type] = struct{}{}
		}
		if l.Attributes["Parent"] == "" {
			rootTypes[l.Type]++
		}
		switch l.Type {
		case "CDS":
			hasCDS = true
		case "exon":
			hasExon = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &types.FeatureOverview{
		AttributeKeys:  sortedKeys(attrKeys),
		FeatureTypes:   sortedKeys(ftypes),
		Sources:        sortedKeys(sources),
		Biotypes:       sortedKeys(biotypes),
		TypesMissingID: sortedKeys(missingID),
		RootTypes:      rootTypes,
		HasBiotype:     len(biotypes) > 0,
		HasCDS:         hasCDS,
		HasExon:        hasExon,
	}, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
