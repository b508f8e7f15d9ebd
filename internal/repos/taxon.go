package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/types"
)

type TaxonNodeRepo interface {
	CreateMissing(ctx context.Context, tx *gorm.DB, nodes []*types.TaxonNode) error
	AddChild(ctx context.Context, tx *gorm.DB, taxid, child int64) error
	GetByTaxid(ctx context.Context, tx *gorm.DB, taxid int64) (*types.TaxonNode, error)
	GetByTaxids(ctx context.Context, tx *gorm.DB, taxids []int64) ([]*types.TaxonNode, error)
	List(ctx context.Context, tx *gorm.DB, opts ListOptions) ([]*types.TaxonNode, int64, error)
	DeleteByTaxids(ctx context.Context, tx *gorm.DB, taxids []int64) error
	SetCounts(ctx context.Context, tx *gorm.DB, taxid, annotations, assemblies, organisms int64) error
	AllTaxids(ctx context.Context, tx *gorm.DB) ([]int64, error)
	ParentOf(ctx context.Context, tx *gorm.DB, taxid int64) (*types.TaxonNode, error)
}

type taxonNodeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaxonNodeRepo(db *gorm.DB, baseLog *logger.Logger) TaxonNodeRepo {
	return &taxonNodeRepo{db: db, log: baseLog.With("repo", "TaxonNodeRepo")}
}

func (r *taxonNodeRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// CreateMissing inserts nodes that are not yet stored; existing taxids
// are left untouched so repeated lineage resolution stays idempotent.
func (r *taxonNodeRepo) CreateMissing(ctx context.Context, tx *gorm.DB, nodes []*types.TaxonNode) error {
	if len(nodes) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "taxid"}},
			DoNothing: true,
		}).
		Create(&nodes).Error
}

// AddChild adds child to the node's children set. The read-dedup-write
// runs inside one transaction; the pipeline is the only writer.
func (r *taxonNodeRepo) AddChild(ctx context.Context, tx *gorm.DB, taxid, child int64) error {
	run := func(tx *gorm.DB) error {
		var node types.TaxonNode
		if err := tx.WithContext(ctx).Where("taxid = ?", taxid).First(&node).Error; err != nil {
			return err
		}
		for _, c := range node.Children {
			if c == child {
				return nil
			}
		}
		node.Children = append(node.Children, child)
		return tx.WithContext(ctx).
			Model(&types.TaxonNode{}).
			Where("taxid = ?", taxid).
			Update("children", node.Children).Error
	}
	if tx != nil {
		return run(tx)
	}
	return r.db.Transaction(run)
}

func (r *taxonNodeRepo) GetByTaxid(ctx context.Context, tx *gorm.DB, taxid int64) (*types.TaxonNode, error) {
	var n types.TaxonNode
	err := r.conn(tx).WithContext(ctx).Where("taxid = ?", taxid).First(&n).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *taxonNodeRepo) GetByTaxids(ctx context.Context, tx *gorm.DB, taxids []int64) ([]*types.TaxonNode, error) {
	var nodes []*types.TaxonNode
	if len(taxids) == 0 {
		return nodes, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Where("taxid IN ?", taxids).
		Find(&nodes).Error
	return nodes, err
}

func (r *taxonNodeRepo) List(ctx context.Context, tx *gorm.DB, opts ListOptions) ([]*types.TaxonNode, int64, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.TaxonNode{})
	for k, v := range opts.Filters {
		q = q.Where(k+" = ?", v)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var results []*types.TaxonNode
	if err := opts.apply(r.conn(tx).WithContext(ctx).Model(&types.TaxonNode{})).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *taxonNodeRepo) DeleteByTaxids(ctx context.Context, tx *gorm.DB, taxids []int64) error {
	if len(taxids) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Where("taxid IN ?", taxids).
		Delete(&types.TaxonNode{}).Error
}

func (r *taxonNodeRepo) SetCounts(ctx context.Context, tx *gorm.DB, taxid, annotations, assemblies, organisms int64) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.TaxonNode{}).
		Where("taxid = ?", taxid).
		Updates(map[string]any{
			"annotations_count": annotations,
			"assemblies_count":  assemblies,
			"organisms_count":   organisms,
		}).Error
}

func (r *taxonNodeRepo) AllTaxids(ctx context.Context, tx *gorm.DB) ([]int64, error) {
	var taxids []int64
	err := r.conn(tx).WithContext(ctx).
		Model(&types.TaxonNode{}).
		Pluck("taxid", &taxids).Error
	return taxids, err
}

// ParentOf scans for the node holding taxid in its children set. The
// tree is navigated by id in either direction (children are stored,
// parents are derived).
func (r *taxonNodeRepo) ParentOf(ctx context.Context, tx *gorm.DB, taxid int64) (*types.TaxonNode, error) {
	var nodes []*types.TaxonNode
	err := r.conn(tx).WithContext(ctx).
		Select("taxid", "scientific_name", "rank", "children").
		Find(&nodes).Error
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		for _, c := range n.Children {
			if c == taxid {
				return n, nil
			}
		}
	}
	return nil, nil
}
