package model

import "time"

// Role values stored in users.role.
const (
	RoleOwner    = "OWNER"
	RoleEmpleado = "EMPLEADO"
)

// User stores system users with role-based access.
// Employees are pinned to one branch; the owner has BranchID nil and may act
// on any branch.
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	Email        *string
	BranchID     *int64 `gorm:"index"`
	CreatedAt    time.Time
}
