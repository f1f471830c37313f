package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Repayment cadences supported by schedule generation.
const (
	CadenceDaily   = "daily"
	CadenceWeekly  = "weekly"
	CadenceMonthly = "monthly"
)

// LoanScheme represents loan_schemes records. A scheme carries the default
// repayment terms applied when an application under it is approved.
type LoanScheme struct {
	SchemeID           int             `gorm:"primaryKey;column:scheme_id" json:"scheme_id"`
	SchemeName         string          `gorm:"column:scheme_name" json:"scheme_name"`
	InterestRate       decimal.Decimal `gorm:"column:interest_rate;type:decimal(7,4)" json:"interest_rate"`
	InstallmentCount   int             `gorm:"column:installment_count" json:"installment_count"`
	RepaymentCadence   string          `gorm:"column:repayment_cadence" json:"repayment_cadence"`
	MaxPrincipalAmount decimal.Decimal `gorm:"column:max_principal_amount;type:decimal(14,2)" json:"max_principal_amount"`
	IsActive           bool            `gorm:"column:is_active" json:"is_active"`
	CreatedAt          time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt          *time.Time      `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

// TableName implements gorm's tablename interface.
func (LoanScheme) TableName() string {
	return "loan_schemes"
}
