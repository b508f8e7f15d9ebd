package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GenomicSequence is one assembled molecule of an assembly. Aliases is
// the precomputed lookup key set used by the alias mapper.
type GenomicSequence struct {
	ID                uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	AssemblyAccession string                      `gorm:"column:assembly_accession;index;index:idx_sequence_assembly_genbank,unique" json:"assembly_accession"`
	AssemblyName      string                      `gorm:"column:assembly_name" json:"assembly_name"`
	SequenceName      string                      `gorm:"column:sequence_name" json:"sequence_name"`
	AssignedMolecule  string                      `gorm:"column:assigned_molecule" json:"assigned_molecule"`
	GenBankAccession  string                      `gorm:"column:genbank_accession;index:idx_sequence_assembly_genbank,unique" json:"genbank_accession"`
	RefSeqAccession   string                      `gorm:"column:refseq_accession" json:"refseq_accession"`
	UCSCStyleName     string                      `gorm:"column:ucsc_style_name" json:"ucsc_style_name"`
	Length            int64                       `gorm:"column:length" json:"length"`
	Aliases           datatypes.JSONSlice[string] `gorm:"column:aliases" json:"aliases"`
	CreatedAt         time.Time                   `gorm:"not null" json:"created_at"`
}

func (GenomicSequence) TableName() string { return "genomic_sequence" }

func (s *GenomicSequence) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
