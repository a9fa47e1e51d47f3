package repository

import (
	"context"
	"time"

	"github.com/vllevinton/bakery-stock-app/internal/model"

	"gorm.io/gorm"
)

// AlertLogRepository appends sent-alert records and answers the one query the
// pipeline needs: "was this (branch, product) already alerted recently?".
type AlertLogRepository interface {
	Create(ctx context.Context, a *model.AlertLog) error
	CountSince(ctx context.Context, branchID, productID int64, since time.Time) (int64, error)
}

type alertLogRepo struct{ db *gorm.DB }

func NewAlertLogRepository(db *gorm.DB) AlertLogRepository { return &alertLogRepo{db: db} }

func (r *alertLogRepo) Create(ctx context.Context, a *model.AlertLog) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *alertLogRepo) CountSince(ctx context.Context, branchID, productID int64, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AlertLog{}).
		Where("branch_id = ? AND product_id = ? AND sent_at >= ?", branchID, productID, since).
		Count(&count).Error
	return count, err
}
