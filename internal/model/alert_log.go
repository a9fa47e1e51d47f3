package model

import "time"

// AlertLog records one alert that was actually dispatched, with a snapshot of
// the values that triggered it. Append-only. Its only read path is the 24-hour
// de-duplication window in the stock pipeline.
type AlertLog struct {
	ID                 int64 `gorm:"primaryKey"`
	ProductID          int64 `gorm:"not null;index"`
	BranchID           int64 `gorm:"not null;index"`
	StockPacks         int   `gorm:"not null"`
	MarginMinimumPacks int   `gorm:"not null"`
	ReplenishPacks     int   `gorm:"not null"`
	// SentTo is the resolved recipient lists as JSON: {"owner":[...],"employee":[...]}
	SentTo string `gorm:"not null"`
	Reason string `gorm:"not null"` // "EMPLOYEE_SAVE"
	SentAt time.Time `gorm:"not null;index"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

func (AlertLog) TableName() string { return "alert_logs" }
