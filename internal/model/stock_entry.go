package model

import "time"

// StockEntry records one accepted stock reading. Append-only: rows are never
// updated or deleted. Doubles as the audit trail and as the source for the
// dashboard's average-stock-per-day series.
type StockEntry struct {
	ID         int64  `gorm:"primaryKey"`
	ProductID  int64  `gorm:"not null;index"`
	BranchID   int64  `gorm:"not null;index"`
	StockPacks int    `gorm:"not null"`
	RecordedBy int64  `gorm:"not null"`
	RecordedAt time.Time
	// RecordedDate is the calendar day (YYYY-MM-DD) of the reading, denormalized
	// so the daily aggregation does not depend on session time zones.
	RecordedDate string `gorm:"type:varchar(10);not null;index"`

	Product *Product `gorm:"foreignKey:ProductID"`
	User    *User    `gorm:"foreignKey:RecordedBy"`
}

func (StockEntry) TableName() string { return "stock_entries" }
