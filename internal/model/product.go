package model

import "time"

// Product is the catalog row shared by all branches. Stock, the alert margin
// and the visibility window live per branch in BranchProduct; the catalog only
// carries the ordering parameters the replenish calculation needs.
type Product struct {
	ID           int64  `gorm:"primaryKey"`
	ProductCode  string `gorm:"column:product_code;uniqueIndex;not null"`
	Name         string `gorm:"index;not null"`
	Category     string `gorm:"not null;default:'Otros'"`
	LeadTimeDays int    `gorm:"not null;default:1"`
	UnitsPerPack int    `gorm:"not null;default:1"`
	// MinPacksOrder is the supplier's minimum order unit; replenish amounts are
	// always rounded up to a multiple of it.
	MinPacksOrder int `gorm:"not null;default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
