package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Application statuses. Transitions are one-way: pending -> approved|rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// LoanApplication represents loan_applications records. ApprovedAmount is set
// iff status is approved; AdminRemarks iff rejected. Once a terminal status is
// reached the row is immutable apart from payment records referencing it.
type LoanApplication struct {
	ApplicationID   int              `gorm:"primaryKey;column:application_id" json:"application_id"`
	CustomerID      int              `gorm:"column:customer_id" json:"customer_id"`
	SchemeID        int              `gorm:"column:scheme_id" json:"scheme_id"`
	BranchID        int              `gorm:"column:branch_id" json:"branch_id"`
	RequestedAmount decimal.Decimal  `gorm:"column:requested_amount;type:decimal(14,2)" json:"requested_amount"`
	Status          string           `gorm:"column:status" json:"status"`
	ApprovedAmount  *decimal.Decimal `gorm:"column:approved_amount;type:decimal(14,2)" json:"approved_amount,omitempty"`
	AdminRemarks    *string          `gorm:"column:admin_remarks" json:"admin_remarks,omitempty"`
	SubmittedAt     time.Time        `gorm:"column:submitted_at" json:"submitted_at"`
	DecidedAt       *time.Time       `gorm:"column:decided_at" json:"decided_at,omitempty"`
	DecidedBy       *int             `gorm:"column:decided_by" json:"decided_by,omitempty"`
	CreatedAt       time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt       *time.Time       `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Relations
	Scheme LoanScheme `gorm:"foreignKey:SchemeID" json:"scheme,omitempty"`
}

// TableName implements gorm's tablename interface.
func (LoanApplication) TableName() string {
	return "loan_applications"
}
