package types

import (
	"time"

	"gorm.io/datatypes"
)

// SourceFileInfo describes the remote file an annotation was built from,
// as declared by the provider catalog.
type SourceFileInfo struct {
	SourceDatabase   string `gorm:"column:source_database" json:"source_database"`
	Provider         string `gorm:"column:provider" json:"provider"`
	URLPath          string `gorm:"column:source_url;uniqueIndex" json:"url_path"`
	ReleaseDate      string `gorm:"column:release_date" json:"release_date"`
	LastModifiedDate string `gorm:"column:last_modified_date" json:"last_modified_date"`
	UncompressedMD5  string `gorm:"column:source_md5;uniqueIndex" json:"uncompressed_md5"`
	PipelineName     string `gorm:"column:pipeline_name" json:"pipeline_name,omitempty"`
	PipelineVersion  string `gorm:"column:pipeline_version" json:"pipeline_version,omitempty"`
	PipelineMethod   string `gorm:"column:pipeline_method" json:"pipeline_method,omitempty"`
}

// IndexedFileInfo points at the durable artifacts produced by the
// pipeline. Paths are relative to the annotations root.
type IndexedFileInfo struct {
	BgzippedPath string    `gorm:"column:bgzipped_path;uniqueIndex" json:"bgzipped_path"`
	CSIPath      string    `gorm:"column:csi_path" json:"csi_path"`
	FileSize     int64     `gorm:"column:file_size" json:"file_size"`
	ProcessedAt  time.Time `gorm:"column:processed_at" json:"processed_at"`
}

// Annotation is one published GFF file plus its metadata. The primary
// key is the hex MD5 of the sorted uncompressed GFF content.
type Annotation struct {
	AnnotationID      string                               `gorm:"column:annotation_id;primaryKey" json:"annotation_id"`
	Taxid             int64                                `gorm:"column:taxid;index" json:"taxid"`
	OrganismName      string                               `gorm:"column:organism_name" json:"organism_name"`
	TaxonLineage      datatypes.JSONSlice[int64]           `gorm:"column:taxon_lineage" json:"taxon_lineage"`
	AssemblyAccession string                               `gorm:"column:assembly_accession;index" json:"assembly_accession"`
	AssemblyName      string                               `gorm:"column:assembly_name" json:"assembly_name"`
	SourceFileInfo    SourceFileInfo                       `gorm:"embedded" json:"source_file_info"`
	IndexedFileInfo   IndexedFileInfo                      `gorm:"embedded" json:"indexed_file_info"`
	MappedRegions     datatypes.JSONSlice[string]          `gorm:"column:mapped_regions" json:"mapped_regions"`
	FeaturesSummary   datatypes.JSONType[FeatureOverview]  `gorm:"column:features_summary" json:"features_summary"`
	FeaturesStats     datatypes.JSONType[FeatureStatistics] `gorm:"column:features_statistics" json:"features_statistics"`
	CreatedAt         time.Time                            `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time                            `gorm:"not null" json:"updated_at"`
}

func (Annotation) TableName() string { return "annotation" }
