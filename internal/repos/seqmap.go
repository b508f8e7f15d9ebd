package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/types"
)

type SequenceMapRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.AnnotationSequenceMap) error
	GetByAnnotationID(ctx context.Context, tx *gorm.DB, annotationID string) ([]*types.AnnotationSequenceMap, error)
	DeleteByAnnotationIDs(ctx context.Context, tx *gorm.DB, annotationIDs []string) error
	// ResolveAlias returns the physical sequence id a region alias maps
	// to within one annotation, or "" when no row carries the alias.
	ResolveAlias(ctx context.Context, tx *gorm.DB, annotationID, alias string) (string, error)
}

type sequenceMapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSequenceMapRepo(db *gorm.DB, baseLog *logger.Logger) SequenceMapRepo {
	return &sequenceMapRepo{db: db, log: baseLog.With("repo", "SequenceMapRepo")}
}

func (r *sequenceMapRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *sequenceMapRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.AnnotationSequenceMap) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).CreateInBatches(&rows, 500).Error
}

func (r *sequenceMapRepo) GetByAnnotationID(ctx context.Context, tx *gorm.DB, annotationID string) ([]*types.AnnotationSequenceMap, error) {
	var rows []*types.AnnotationSequenceMap
	err := r.conn(tx).WithContext(ctx).
		Where("annotation_id = ?", annotationID).
		Find(&rows).Error
	return rows, err
}

func (r *sequenceMapRepo) DeleteByAnnotationIDs(ctx context.Context, tx *gorm.DB, annotationIDs []string) error {
	if len(annotationIDs) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Where("annotation_id IN ?", annotationIDs).
		Delete(&types.AnnotationSequenceMap{}).Error
}

func (r *sequenceMapRepo) ResolveAlias(ctx context.Context, tx *gorm.DB, annotationID, alias string) (string, error) {
	rows, err := r.GetByAnnotationID(ctx, tx, annotationID)
	if err != nil {
		return "", err
	}
	for _, row := range rows {
		if row.SequenceID == alias {
			return row.SequenceID, nil
		}
		for _, a := range row.Aliases {
			if a == alias {
				return row.SequenceID, nil
			}
		}
	}
	return "", nil
}
