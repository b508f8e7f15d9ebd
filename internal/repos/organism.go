package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/types"
)

type OrganismRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, organisms []*types.Organism) error
	GetByTaxid(ctx context.Context, tx *gorm.DB, taxid int64) (*types.Organism, error)
	List(ctx context.Context, tx *gorm.DB, opts ListOptions) ([]*types.Organism, int64, error)
	DeleteByTaxids(ctx context.Context, tx *gorm.DB, taxids []int64) error
	SetCounts(ctx context.Context, tx *gorm.DB, taxid, annotations, assemblies int64) error
	AllTaxids(ctx context.Context, tx *gorm.DB) ([]int64, error)
}

type organismRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganismRepo(db *gorm.DB, baseLog *logger.Logger) OrganismRepo {
	return &organismRepo{db: db, log: baseLog.With("repo", "OrganismRepo")}
}

func (r *organismRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *organismRepo) Upsert(ctx context.Context, tx *gorm.DB, organisms []*types.Organism) error {
	if len(organisms) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "taxid"}},
			DoUpdates: clause.AssignmentColumns([]string{"organism_name", "common_name", "taxon_lineage", "updated_at"}),
		}).
		Create(&organisms).Error
}

func (r *organismRepo) GetByTaxid(ctx context.Context, tx *gorm.DB, taxid int64) (*types.Organism, error) {
	var o types.Organism
	err := r.conn(tx).WithContext(ctx).Where("taxid = ?", taxid).First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *organismRepo) List(ctx context.Context, tx *gorm.DB, opts ListOptions) ([]*types.Organism, int64, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.Organism{})
	for k, v := range opts.Filters {
		q = q.Where(k+" = ?", v)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var results []*types.Organism
	if err := opts.apply(r.conn(tx).WithContext(ctx).Model(&types.Organism{})).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *organismRepo) DeleteByTaxids(ctx context.Context, tx *gorm.DB, taxids []int64) error {
	if len(taxids) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Where("taxid IN ?", taxids).
		Delete(&types.Organism{}).Error
}

func (r *organismRepo) SetCounts(ctx context.Context, tx *gorm.DB, taxid, annotations, assemblies int64) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.Organism{}).
		Where("taxid = ?", taxid).
		Updates(map[string]any{
			"annotations_count": annotations,
			"assemblies_count":  assemblies,
		}).Error
}

func (r *organismRepo) AllTaxids(ctx context.Context, tx *gorm.DB) ([]int64, error) {
	var taxids []int64
	err := r.conn(tx).WithContext(ctx).
		Model(&types.Organism{}).
		Pluck("taxid", &taxids).Error
	return taxids, err
}
