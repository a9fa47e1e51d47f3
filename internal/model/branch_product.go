package model

import "time"

// BranchProduct is the per-(branch, product) override: effective stock, the
// branch's own alert margin, and the visibility window. One row is created per
// branch when the product is created and the pair is never deleted on its own;
// only a full product delete removes them.
//
// Window invariants: start_date <= end_date when both are set; an end_date in
// the past forces Active to false. Expiry is applied lazily on read/write —
// there is no background job.
type BranchProduct struct {
	BranchID  int64 `gorm:"primaryKey;autoIncrement:false"`
	ProductID int64 `gorm:"primaryKey;autoIncrement:false"`
	Active    bool  `gorm:"not null;default:false"`
	// Dates are YYYY-MM-DD stored as text, nil = unbounded. ISO dates order
	// lexicographically, which the visibility predicate depends on.
	StartDate          *string `gorm:"type:varchar(10)"`
	EndDate            *string `gorm:"type:varchar(10)"`
	CurrentStockPacks  int     `gorm:"not null;default:0"`
	MarginMinimumPacks int     `gorm:"not null;default:0"`
	UpdatedAt          time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
	Branch  *Branch  `gorm:"foreignKey:BranchID"`
}

func (BranchProduct) TableName() string { return "branch_products" }
