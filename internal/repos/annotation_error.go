package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/types"
)

type AnnotationErrorRepo interface {
	// Upsert records a failure, replacing any prior row for the same
	// source URL or the same declared md5. A source that fails again
	// under a new upstream md5 keeps exactly one current row.
	Upsert(ctx context.Context, tx *gorm.DB, e *types.AnnotationError) error
	MD5s(ctx context.Context, tx *gorm.DB) (map[string]bool, error)
	List(ctx context.Context, tx *gorm.DB, opts ListOptions) ([]*types.AnnotationError, int64, error)
	DeleteBySourceMD5s(ctx context.Context, tx *gorm.DB, md5s []string) error
}

type annotationErrorRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnnotationErrorRepo(db *gorm.DB, baseLog *logger.Logger) AnnotationErrorRepo {
	return &annotationErrorRepo{db: db, log: baseLog.With("repo", "AnnotationErrorRepo")}
}

func (r *annotationErrorRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *annotationErrorRepo) Upsert(ctx context.Context, tx *gorm.DB, e *types.AnnotationError) error {
	// the row is unique on both source_url and source_md5, so an
	// on-conflict clause on one key can still trip the other; replace
	// whatever either key points at
	return r.conn(tx).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("source_url = ? OR source_md5 = ?", e.SourceURL, e.SourceMD5).
			Delete(&types.AnnotationError{}).Error; err != nil {
			return err
		}
		return tx.Create(e).Error
	})
}

func (r *annotationErrorRepo) MD5s(ctx context.Context, tx *gorm.DB) (map[string]bool, error) {
	var md5s []string
	err := r.conn(tx).WithContext(ctx).
		Model(&types.AnnotationError{}).
		Pluck("source_md5", &md5s).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(md5s))
	for _, m := range md5s {
		out[m] = true
	}
	return out, nil
}

func (r *annotationErrorRepo) List(ctx context.Context, tx *gorm.DB, opts ListOptions) ([]*types.AnnotationError, int64, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.AnnotationError{})
	for k, v := range opts.Filters {
		q = q.Where(k+" = ?", v)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var results []*types.AnnotationError
	if err := opts.apply(r.conn(tx).WithContext(ctx).Model(&types.AnnotationError{})).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *annotationErrorRepo) DeleteBySourceMD5s(ctx context.Context, tx *gorm.DB, md5s []string) error {
	if len(md5s) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Where("source_md5 IN ?", md5s).
		Delete(&types.AnnotationError{}).Error
}
