package types

// BiotypeMissing buckets features that carry no biotype attribute.
const BiotypeMissing = "biotype_missing"

// Gene categories, in emission order.
const (
	GeneCategoryCoding    = "coding"
	GeneCategoryNonCoding = "non_coding"
	GeneCategoryPseudo    = "pseudogene"
)

// GeneCategories is the fixed emission order for per-category stats.
var GeneCategories = []string{GeneCategoryCoding, GeneCategoryNonCoding, GeneCategoryPseudo}

// FeatureOverview is the single-pass structural summary of a GFF file.
type FeatureOverview struct {
	AttributeKeys  []string         `json:"attribute_keys"`
	FeatureTypes   []string         `json:"feature_types"`
	Sources        []string         `json:"sources"`
	Biotypes       []string         `json:"biotypes"`
	TypesMissingID []string         `json:"types_missing_id"`
	RootTypes      map[string]int64 `json:"root_types"`
	HasBiotype     bool             `json:"has_biotype"`
	HasCDS         bool             `json:"has_cds"`
	HasExon        bool             `json:"has_exon"`
}

// HasFeatureType reports whether t appears in the overview's type set.
func (o FeatureOverview) HasFeatureType(t string) bool {
	return containsString(o.FeatureTypes, t)
}

func (o FeatureOverview) HasSource(s string) bool {
	return containsString(o.Sources, s)
}

func (o FeatureOverview) HasBiotypeValue(b string) bool {
	return containsString(o.Biotypes, b)
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// LengthStats carries rolling min/max/mean of a length distribution.
type LengthStats struct {
	Min  int64   `json:"min"`
	Max  int64   `json:"max"`
	Mean float64 `json:"mean"`
}

// SubFeatureStats aggregates exon or CDS rows under one transcript type.
// Length is per sub-feature; ConcatLength sums lengths per parent
// (the spliced length).
type SubFeatureStats struct {
	Total        int64       `json:"total"`
	Length       LengthStats `json:"length"`
	ConcatLength LengthStats `json:"concatenated_length"`
}

// GeneCategoryStats aggregates genes inside one category.
type GeneCategoryStats struct {
	Category        string           `json:"category"`
	Total           int64            `json:"total"`
	Length          LengthStats      `json:"length"`
	Biotypes        map[string]int64 `json:"biotypes"`
	TranscriptTypes map[string]int64 `json:"transcript_types"`
}

// TranscriptGeneStats counts the unique genes a transcript type belongs to.
type TranscriptGeneStats struct {
	Total      int64            `json:"total"`
	ByCategory map[string]int64 `json:"by_category"`
}

// TranscriptTypeStats aggregates transcripts of one type.
type TranscriptTypeStats struct {
	Type             string              `json:"type"`
	Total            int64               `json:"total"`
	Length           LengthStats         `json:"length"`
	Biotypes         map[string]int64    `json:"biotypes"`
	Genes            TranscriptGeneStats `json:"genes"`
	ExonStats        SubFeatureStats     `json:"exon_stats"`
	CDSStats         *SubFeatureStats    `json:"cds_stats,omitempty"`
	HasMultipleExons bool                `json:"has_multiple_exons"`
	HasCDS           bool                `json:"has_cds"`
}

// FeatureStatistics is the multi-pass structural report of a GFF file.
// Gene categories appear in GeneCategories order; transcript types are
// sorted by total count descending.
type FeatureStatistics struct {
	GeneCategories  []GeneCategoryStats   `json:"gene_categories"`
	TranscriptTypes []TranscriptTypeStats `json:"transcript_types"`
}
