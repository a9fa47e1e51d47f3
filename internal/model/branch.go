package model

import "time"

// Branch is one of the three bakery locations. Rows are seeded by migration
// and never mutated afterwards; branch IDs are constrained to {1, 2, 3}.
type Branch struct {
	ID        int64  `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

// TableName overrides GORM's pluralization (branch → branches is fine, but be
// explicit to match the legacy schema).
func (Branch) TableName() string { return "branches" }
