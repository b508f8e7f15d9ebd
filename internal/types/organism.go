package types

import (
	"time"

	"gorm.io/datatypes"
)

type Organism struct {
	Taxid            int64                      `gorm:"column:taxid;primaryKey;autoIncrement:false" json:"taxid"`
	OrganismName     string                     `gorm:"column:organism_name" json:"organism_name"`
	CommonName       string                     `gorm:"column:common_name" json:"common_name,omitempty"`
	TaxonLineage     datatypes.JSONSlice[int64] `gorm:"column:taxon_lineage" json:"taxon_lineage"`
	AnnotationsCount int64                      `gorm:"column:annotations_count" json:"annotations_count"`
	AssembliesCount  int64                      `gorm:"column:assemblies_count" json:"assemblies_count"`
	CreatedAt        time.Time                  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time                  `gorm:"not null" json:"updated_at"`
}

func (Organism) TableName() string { return "organism" }
