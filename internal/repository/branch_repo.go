package repository

import (
	"context"

	"github.com/vllevinton/bakery-stock-app/internal/model"

	"gorm.io/gorm"
)

// BranchRepository reads the fixed branch set. Branches are seeded by
// migration and never written through the application.
type BranchRepository interface {
	List(ctx context.Context) ([]model.Branch, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type branchRepo struct{ db *gorm.DB }

func NewBranchRepository(db *gorm.DB) BranchRepository { return &branchRepo{db: db} }

func (r *branchRepo) List(ctx context.Context) ([]model.Branch, error) {
	var branches []model.Branch
	err := r.db.WithContext(ctx).Order("id ASC").Find(&branches).Error
	return branches, err
}

func (r *branchRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Branch{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
