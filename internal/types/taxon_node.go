package types

import (
	"time"

	"gorm.io/datatypes"
)

// TaxonNode is one node of the taxonomy tree. Children holds direct
// child taxids; the repo enforces set semantics on updates.
type TaxonNode struct {
	Taxid            int64                      `gorm:"column:taxid;primaryKey;autoIncrement:false" json:"taxid"`
	ScientificName   string                     `gorm:"column:scientific_name" json:"scientific_name"`
	Rank             string                     `gorm:"column:rank" json:"rank"`
	Children         datatypes.JSONSlice[int64] `gorm:"column:children" json:"children"`
	AnnotationsCount int64                      `gorm:"column:annotations_count" json:"annotations_count"`
	AssembliesCount  int64                      `gorm:"column:assemblies_count" json:"assemblies_count"`
	OrganismsCount   int64                      `gorm:"column:organisms_count" json:"organisms_count"`
	CreatedAt        time.Time                  `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time                  `gorm:"not null" json:"updated_at"`
}

func (TaxonNode) TableName() string { return "taxon_node" }
