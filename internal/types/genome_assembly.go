package types

import (
	"time"

	"gorm.io/datatypes"
)

// AssemblyStats mirrors the high-level numbers reported by the external
// assembly catalog.
type AssemblyStats struct {
	TotalSequenceLength int64   `json:"total_sequence_length"`
	TotalUngappedLength int64   `json:"total_ungapped_length"`
	NumberOfChromosomes int64   `json:"number_of_chromosomes"`
	NumberOfScaffolds   int64   `json:"number_of_scaffolds"`
	NumberOfContigs     int64   `json:"number_of_contigs"`
	ScaffoldN50         int64   `json:"scaffold_n50"`
	ScaffoldL50         int64   `json:"scaffold_l50"`
	ContigN50           int64   `json:"contig_n50"`
	ContigL50           int64   `json:"contig_l50"`
	GCCount             int64   `json:"gc_count"`
	GCPercent           float64 `json:"gc_percent"`
	GenomeCoverage      float64 `json:"genome_coverage"`
	NumberOfOrganelles  int64   `json:"number_of_organelles"`
}

type GenomeAssembly struct {
	AssemblyAccession string                            `gorm:"column:assembly_accession;primaryKey" json:"assembly_accession"`
	PairedAccession   string                            `gorm:"column:paired_accession" json:"paired_accession,omitempty"`
	AssemblyName      string                            `gorm:"column:assembly_name" json:"assembly_name"`
	Submitter         string                            `gorm:"column:submitter" json:"submitter"`
	ReleaseDate       string                            `gorm:"column:release_date" json:"release_date"`
	SourceDatabase    string                            `gorm:"column:source_database" json:"source_database"`
	Stats             datatypes.JSONType[AssemblyStats] `gorm:"column:assembly_stats" json:"assembly_stats"`
	Taxid             int64                             `gorm:"column:taxid;index" json:"taxid"`
	OrganismName      string                            `gorm:"column:organism_name" json:"organism_name"`
	TaxonLineage      datatypes.JSONSlice[int64]        `gorm:"column:taxon_lineage" json:"taxon_lineage"`
	DownloadURL       string                            `gorm:"column:download_url;uniqueIndex" json:"download_url"`
	AnnotationsCount  int64                             `gorm:"column:annotations_count" json:"annotations_count"`
	CreatedAt         time.Time                         `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time                         `gorm:"not null" json:"updated_at"`
}

func (GenomeAssembly) TableName() string { return "genome_assembly" }
