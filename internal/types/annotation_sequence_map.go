package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnnotationSequenceMap ties one GFF first-column identifier of an
// annotation to the alias set of the chromosome it resolved to.
type AnnotationSequenceMap struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	AnnotationID string                      `gorm:"column:annotation_id;index;index:idx_seqmap_annotation_sequence,unique" json:"annotation_id"`
	SequenceID   string                      `gorm:"column:sequence_id;index:idx_seqmap_annotation_sequence,unique" json:"sequence_id"`
	Aliases      datatypes.JSONSlice[string] `gorm:"column:aliases" json:"aliases"`
	CreatedAt    time.Time                   `gorm:"not null" json:"created_at"`
}

func (AnnotationSequenceMap) TableName() string { return "annotation_sequence_map" }

func (m *AnnotationSequenceMap) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
