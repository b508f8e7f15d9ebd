package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/annothub/annothub-backend/internal/pkg/logger"
	"github.com/annothub/annothub-backend/internal/types"
)

type GenomeAssemblyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, assemblies []*types.GenomeAssembly) error
	GetByAccession(ctx context.Context, tx *gorm.DB, accession string) (*types.GenomeAssembly, error)
	ExistingAccessions(ctx context.Context, tx *gorm.DB, accessions []string) (map[string]bool, error)
	List(ctx context.Context, tx *gorm.DB, opts ListOptions) ([]*types.GenomeAssembly, int64, error)
	DeleteByAccessions(ctx context.Context, tx *gorm.DB, accessions []string) error
	SetAnnotationsCount(ctx context.Context, tx *gorm.DB, accession string, n int64) error
	ProjectTaxids(ctx context.Context, tx *gorm.DB) (map[string]int64, error)
}

type genomeAssemblyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenomeAssemblyRepo(db *gorm.DB, baseLog *logger.Logger) GenomeAssemblyRepo {
	return &genomeAssemblyRepo{db: db, log: baseLog.With("repo", "GenomeAssemblyRepo")}
}

func (r *genomeAssemblyRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *genomeAssemblyRepo) Create(ctx context.Context, tx *gorm.DB, assemblies []*types.GenomeAssembly) error {
	if len(assemblies) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Create(&assemblies).Error
}

func (r *genomeAssemblyRepo) GetByAccession(ctx context.Context, tx *gorm.DB, accession string) (*types.GenomeAssembly, error) {
	var a types.GenomeAssembly
	err := r.conn(tx).WithContext(ctx).
		Where("assembly_accession = ?", accession).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *genomeAssemblyRepo) ExistingAccessions(ctx context.Context, tx *gorm.DB, accessions []string) (map[string]bool, error) {
	out := make(map[string]bool, len(accessions))
	if len(accessions) == 0 {
		return out, nil
	}
	var found []string
	err := r.conn(tx).WithContext(ctx).
		Model(&types.GenomeAssembly{}).
		Where("assembly_accession IN ?", accessions).
		Pluck("assembly_accession", &found).Error
	if err != nil {
		return nil, err
	}
	for _, acc := range found {
		out[acc] = true
	}
	return out, nil
}

func (r *genomeAssemblyRepo) List(ctx context.Context, tx *gorm.DB, opts ListOptions) ([]*types.GenomeAssembly, int64, error) {
	q := r.conn(tx).WithContext(ctx).Model(&types.GenomeAssembly{})
	for k, v := range opts.Filters {
		q = q.Where(k+" = ?", v)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var results []*types.GenomeAssembly
	if err := opts.apply(r.conn(tx).WithContext(ctx).Model(&types.GenomeAssembly{})).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *genomeAssemblyRepo) DeleteByAccessions(ctx context.Context, tx *gorm.DB, accessions []string) error {
	if len(accessions) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Where("assembly_accession IN ?", accessions).
		Delete(&types.GenomeAssembly{}).Error
}

func (r *genomeAssemblyRepo) SetAnnotationsCount(ctx context.Context, tx *gorm.DB, accession string, n int64) error {
	return r.conn(tx).WithContext(ctx).
		Model(&types.GenomeAssembly{}).
		Where("assembly_accession = ?", accession).
		Update("annotations_count", n).Error
}

func (r *genomeAssemblyRepo) ProjectTaxids(ctx context.Context, tx *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		AssemblyAccession string
		Taxid             int64
	}
	err := r.conn(tx).WithContext(ctx).
		Model(&types.GenomeAssembly{}).
		Select("assembly_accession", "taxid").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.AssemblyAccession] = row.Taxid
	}
	return out, nil
}
