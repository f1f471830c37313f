package models

import (
	"time"
)

// Role IDs referenced by route guards.
const (
	RoleAdmin           = 1
	RoleCollectionAgent = 2
)

type User struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname string     `gorm:"column:user_lname" json:"user_lname"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Password  string     `gorm:"column:password" json:"-"`
	RoleID    int        `gorm:"column:role_id" json:"role_id"`
	BranchID  int        `gorm:"column:branch_id" json:"branch_id"`
	Phone     *string    `gorm:"column:phone" json:"phone,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Relations
	Role   Role   `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Branch Branch `gorm:"foreignKey:BranchID" json:"branch,omitempty"`
}

type Role struct {
	RoleID    int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role      string     `gorm:"column:role" json:"role"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

type Branch struct {
	BranchID   int        `gorm:"primaryKey;column:branch_id" json:"branch_id"`
	BranchName string     `gorm:"column:branch_name" json:"branch_name"`
	BranchCode string     `gorm:"column:branch_code;unique" json:"branch_code"`
	Address    *string    `gorm:"column:address" json:"address,omitempty"`
	Phone      *string    `gorm:"column:phone" json:"phone,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (Branch) TableName() string {
	return "branches"
}
