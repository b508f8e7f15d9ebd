package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnnotationError is a persisted per-candidate pipeline failure. Its
// presence suppresses re-admission of the same declared MD5.
type AnnotationError struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Taxid             int64     `gorm:"column:taxid" json:"taxid"`
	OrganismName      string    `gorm:"column:organism_name" json:"organism_name"`
	AssemblyAccession string    `gorm:"column:assembly_accession" json:"assembly_accession"`
	AssemblyName      string    `gorm:"column:assembly_name" json:"assembly_name"`
	SourceDatabase    string    `gorm:"column:source_database" json:"source_database"`
	SourceURL         string    `gorm:"column:source_url;uniqueIndex" json:"url_path"`
	SourceMD5         string    `gorm:"column:source_md5;uniqueIndex" json:"source_md5"`
	ReleaseDate       string    `gorm:"column:release_date" json:"release_date"`
	LastModifiedDate  string    `gorm:"column:last_modified_date" json:"last_modified_date"`
	Message           string    `gorm:"column:message" json:"message"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}

func (AnnotationError) TableName() string { return "annotation_error" }

func (e *AnnotationError) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
