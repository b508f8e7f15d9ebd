package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/types"
)

type GenomicSequenceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sequences []*types.GenomicSequence) error
	GetByAssembly(ctx context.Context, tx *gorm.DB, accession string) ([]*types.GenomicSequence, error)
	DeleteByAssemblies(ctx context.Context, tx *gorm.DB, accessions []string) error
}

type genomicSequenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenomicSequenceRepo(db *gorm.DB, baseLog *logger.Logger) GenomicSequenceRepo {
	return &genomicSequenceRepo{db: db, log: baseLog.With("repo", "GenomicSequenceRepo")}
}

func (r *genomicSequenceRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *genomicSequenceRepo) Create(ctx context.Context, tx *gorm.DB, sequences []*types.GenomicSequence) error {
	if len(sequences) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).CreateInBatches(&sequences, 500).Error
}

func (r *genomicSequenceRepo) GetByAssembly(ctx context.Context, tx *gorm.DB, accession string) ([]*types.GenomicSequence, error) {
	var results []*types.GenomicSequence
	err := r.conn(tx).WithContext(ctx).
		Where("assembly_accession = ?", accession).
		Find(&results).Error
	return results, err
}

func (r *genomicSequenceRepo) DeleteByAssemblies(ctx context.Context, tx *gorm.DB, accessions []string) error {
	if len(accessions) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Where("assembly_accession IN ?", accessions).
		Delete(&types.GenomicSequence{}).Error
}
