package repository

import (
	"context"
	"time"

	"github.com/vllevinton/bakery-stock-app/internal/model"

	"gorm.io/gorm"
)

// HistoryEntry is one joined row of the owner history view.
type HistoryEntry struct {
	RecordedAt  time.Time
	ProductName string
	StockPacks  int
	Username    string
	BranchID    int64
}

// StockEntryRepository appends and reads the immutable stock history.
type StockEntryRepository interface {
	CreateTx(tx *gorm.DB, e *model.StockEntry) error
	// History returns the newest rows first, joined with product name and the
	// recording username. branchID 0 means all branches.
	History(ctx context.Context, branchID int64, limit int) ([]HistoryEntry, error)
	// ByDate returns all entries recorded on one calendar day, newest first,
	// for the daily-average aggregation. branchID 0 means all branches.
	ByDate(ctx context.Context, branchID int64, date string) ([]model.StockEntry, error)
}

type stockEntryRepo struct{ db *gorm.DB }

func NewStockEntryRepository(db *gorm.DB) StockEntryRepository {
	return &stockEntryRepo{db: db}
}

func (r *stockEntryRepo) CreateTx(tx *gorm.DB, e *model.StockEntry) error {
	return tx.Create(e).Error
}

func (r *stockEntryRepo) History(ctx context.Context, branchID int64, limit int) ([]HistoryEntry, error) {
	var rows []HistoryEntry
	q := r.db.WithContext(ctx).Table("stock_entries").
		Select(`stock_entries.recorded_at,
			products.name AS product_name,
			stock_entries.stock_packs,
			users.username,
			stock_entries.branch_id`).
		Joins("JOIN products ON products.id = stock_entries.product_id").
		Joins("JOIN users ON users.id = stock_entries.recorded_by").
		Order("stock_entries.id DESC").
		Limit(limit)
	if branchID != 0 {
		q = q.Where("stock_entries.branch_id = ?", branchID)
	}
	err := q.Scan(&rows).Error
	return rows, err
}

func (r *stockEntryRepo) ByDate(ctx context.Context, branchID int64, date string) ([]model.StockEntry, error) {
	var entries []model.StockEntry
	q := r.db.WithContext(ctx).
		Where("recorded_date = ?", date).
		Order("recorded_at DESC")
	if branchID != 0 {
		q = q.Where("branch_id = ?", branchID)
	}
	err := q.Find(&entries).Error
	return entries, err
}
