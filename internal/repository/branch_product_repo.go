package repository

import (
	"context"
	"time"

	"github.com/vllevinton/bakery-stock-app/internal/model"

	"gorm.io/gorm"
)

// BranchProductRepository defines the data access contract for per-branch
// overrides. The visibility predicate and the lazy expiry sweep live here so
// every caller sees the same rules.
type BranchProductRepository interface {
	// ExpireOverdue flips active off for every row of the branch whose end_date
	// is strictly before today. Idempotent; safe to run on every request. This
	// is the only mechanism that expires date-bounded listings.
	ExpireOverdue(ctx context.Context, branchID int64, today string) error

	Find(ctx context.Context, branchID, productID int64) (*model.BranchProduct, error)
	// FindVisible returns the row only when it passes the visibility predicate
	// for the given day. gorm.ErrRecordNotFound otherwise.
	FindVisible(ctx context.Context, branchID, productID int64, today string) (*model.BranchProduct, error)
	// ListVisible returns predicate-passing rows with Product preloaded,
	// ordered by product name. branchID 0 means all branches.
	ListVisible(ctx context.Context, branchID int64, today string) ([]model.BranchProduct, error)
	ListByProduct(ctx context.Context, productID int64) ([]model.BranchProduct, error)
	Save(ctx context.Context, bp *model.BranchProduct) error

	// Used inside transactions — callers must pass the tx instance
	CreateTx(tx *gorm.DB, bp *model.BranchProduct) error
	UpdateStockTx(tx *gorm.DB, branchID, productID int64, stockPacks int) error
	DeleteByProductTx(tx *gorm.DB, productID int64) error
}

type branchProductRepo struct{ db *gorm.DB }

func NewBranchProductRepository(db *gorm.DB) BranchProductRepository {
	return &branchProductRepo{db: db}
}

// visibleScope applies the visibility rules: active, window started (or
// unbounded), window not yet ended (or unbounded). Empty-string dates count as
// unbounded for compatibility with rows imported from the legacy database.
func visibleScope(today string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("active = true").
			Where("(start_date IS NULL OR start_date = '' OR start_date <= ?)", today).
			Where("(end_date IS NULL OR end_date = '' OR end_date >= ?)", today)
	}
}

func (r *branchProductRepo) ExpireOverdue(ctx context.Context, branchID int64, today string) error {
	return r.db.WithContext(ctx).Model(&model.BranchProduct{}).
		Where("branch_id = ? AND active = true", branchID).
		Where("end_date IS NOT NULL AND end_date <> '' AND end_date < ?", today).
		Updates(map[string]interface{}{"active": false, "updated_at": time.Now()}).Error
}

func (r *branchProductRepo) Find(ctx context.Context, branchID, productID int64) (*model.BranchProduct, error) {
	var bp model.BranchProduct
	err := r.db.WithContext(ctx).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		First(&bp).Error
	return &bp, err
}

func (r *branchProductRepo) FindVisible(ctx context.Context, branchID, productID int64, today string) (*model.BranchProduct, error) {
	var bp model.BranchProduct
	err := r.db.WithContext(ctx).Preload("Product").
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		Scopes(visibleScope(today)).
		First(&bp).Error
	return &bp, err
}

func (r *branchProductRepo) ListVisible(ctx context.Context, branchID int64, today string) ([]model.BranchProduct, error) {
	var rows []model.BranchProduct
	q := r.db.WithContext(ctx).Preload("Product").
		Joins("JOIN products ON products.id = branch_products.product_id").
		Scopes(visibleScope(today)).
		Order("products.name ASC")
	if branchID != 0 {
		q = q.Where("branch_id = ?", branchID)
	}
	err := q.Find(&rows).Error
	return rows, err
}

func (r *branchProductRepo) ListByProduct(ctx context.Context, productID int64) ([]model.BranchProduct, error) {
	var rows []model.BranchProduct
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("branch_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *branchProductRepo) Save(ctx context.Context, bp *model.BranchProduct) error {
	return r.db.WithContext(ctx).Save(bp).Error
}

func (r *branchProductRepo) CreateTx(tx *gorm.DB, bp *model.BranchProduct) error {
	return tx.Create(bp).Error
}

func (r *branchProductRepo) UpdateStockTx(tx *gorm.DB, branchID, productID int64, stockPacks int) error {
	return tx.Model(&model.BranchProduct{}).
		Where("branch_id = ? AND product_id = ?", branchID, productID).
		Updates(map[string]interface{}{
			"current_stock_packs": stockPacks,
			"updated_at":          time.Now(),
		}).Error
}

func (r *branchProductRepo) DeleteByProductTx(tx *gorm.DB, productID int64) error {
	return tx.Where("product_id = ?", productID).Delete(&model.BranchProduct{}).Error
}
