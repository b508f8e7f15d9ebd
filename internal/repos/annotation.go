package repos

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/types"
)

// SourceFingerprint is the admission pair (url, declared md5).
type SourceFingerprint struct {
	SourceURL string
	SourceMD5 string
}

// AnnotationContext is the projection the derived-counts maintainer
// works from.
type AnnotationContext struct {
	AnnotationID      string
	Taxid             int64
	AssemblyAccession string
	TaxonLineage      []int64
}

// ListOptions is shared pagination/sort/filter state for list queries.
type ListOptions struct {
	Page    int
	PerPage int
	SortBy  string
	Desc    bool
	Filters map[string]any
}

func (o ListOptions) apply(q *gorm.DB) *gorm.DB {
	for k, v := range o.Filters {
		q = q.Where(k+" = ?", v)
	}
	if o.SortBy != "" {
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}
		q = q.Order(o.SortBy + dir)
	}
	page := o.Page
	if page < 1 {
		page = 1
	}
	perPage := o.PerPage
	if perPage < 1 {
		perPage = 20
	}
	return q.Offset((page - 1) * perPage).Limit(perPage)
}

type AnnotationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, annotations []*types.Annotation) error
	GetByID(ctx context.Context, tx *gorm.DB, annotationID string) (*types.Annotation, error)
	Exists(ctx context.Context, tx *gorm.DB, annotationID string) (bool, error)
	GetBySourceURL(ctx context.Context, tx *gorm.DB, sourceURL string) (*types.Annotation, error)
	List(ctx context.Context, tx *gorm.DB, opts ListOptions) ([]*types.Annotation, int64, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, annotationIDs []string) error
	SourceFingerprints(ctx context.Context, tx *gorm.DB) ([]SourceFingerprint, error)
	ProjectContext(ctx context.Context, tx *gorm.DB) ([]AnnotationContext, error)
	UpdateStatistics(ctx context.Context, tx *gorm.DB, annotationID string, stats types.FeatureStatistics) error
	UpdateSummary(ctx context.Context, tx *gorm.DB, annotationID string, summary types.FeatureOverview) error
}

type annotationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnnotationRepo(db *gorm.DB, baseLog *logger.Logger) AnnotationRepo {
	return &annotationRepo{db: db, log: baseLog.With("repo", "AnnotationRepo")}
}

func (r *annotationRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *annotationRepo) Create(ctx context.Context, tx *gorm.DB, annotations []*types.Annotation) error {
	if len(annotations) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&annotations).Error
}

func (r *annotationRepo) GetByID(ctx context.Context, tx *gorm.DB, annotationID string) (*types.Annotation, error) {
	var a types.Annotation
	err := r.conn(tx).WithContext(ctx).
		Where("annotation_id = ?", annotationID).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *annotationRepo) Exists(ctx context.Context, tx *gorm.DB, annotationID string) (bool, error) {
	var n int64
	err := r.conn(tx).WithContext(ctx).
		Model(&types.Annotation{}).
		Where("annotation_id = ?", annotationID).
		Count(&n).Error
	return n > 0, err
}

func (r *annotationRepo) GetBySourceURL(ctx context.Context, tx *gorm.DB, sourceURL string) (*types.Annotation, error) {
	var a types.Annotation
	err := r.conn(tx).WithContext(ctx).
		Where("source_url = ?", sourceURL).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *annotationRepo) List(ctx context.Context, tx *gorm.DB, opts ListOptions) ([]*types.Annotation, int64, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.Annotation{})
	for k, v := range opts.Filters {
		q = q.Where(k+" = ?", v)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var results []*types.Annotation
	if err := opts.apply(r.conn(tx).WithContext(ctx).Model(&types.Annotation{})).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *annotationRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, annotationIDs []string) error {
	if len(annotationIDs) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Where("annotation_id IN ?", annotationIDs).
		Delete(&types.Annotation{}).Error
}

func (r *annotationRepo) SourceFingerprints(ctx context.Context, tx *gorm.DB) ([]SourceFingerprint, error) {
	var rows []SourceFingerprint
	err := r.conn(tx).WithContext(ctx).
		Model(&types.Annotation{}).
		Select("source_url", "source_md5").
		Scan(&rows).Error
	return rows, err
}

func (r *annotationRepo) ProjectContext(ctx context.Context, tx *gorm.DB) ([]AnnotationContext, error) {
	var rows []*types.Annotation
	err := r.conn(tx).WithContext(ctx).
		Model(&types.Annotation{}).
		Select("annotation_id", "taxid", "assembly_accession", "taxon_lineage").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]AnnotationContext, 0, len(rows))
	for _, a := range rows {
		out = append(out, AnnotationContext{
			AnnotationID:      a.AnnotationID,
			Taxid:             a.Taxid,
			AssemblyAccession: a.AssemblyAccession,
			TaxonLineage:      a.TaxonLineage,
		})
	}
	return out, nil
}

func (r *annotationRepo) UpdateStatistics(ctx context.Context, tx *gorm.DB, annotationID string, stats types.FeatureStatistics) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.Annotation{}).
		Where("annotation_id = ?", annotationID).
		Update("features_statistics", datatypes.NewJSONType(stats)).Error
}

func (r *annotationRepo) UpdateSummary(ctx context.Context, tx *gorm.DB, annotationID string, summary types.FeatureOverview) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.Annotation{}).
		Where("annotation_id = ?", annotationID).
		Update("features_summary", datatypes.NewJSONType(summary)).Error
}
