package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduledPayment represents scheduled_payments records: one expected
// installment of an approved loan. Rows are bulk-created at approval time and
// never updated afterwards; a restructuring appends a new set of rows under
// higher installment numbers instead of editing these in place.
type ScheduledPayment struct {
	ScheduleID     int             `gorm:"primaryKey;column:schedule_id" json:"schedule_id"`
	LoanID         int             `gorm:"column:loan_id;uniqueIndex:uq_loan_installment,priority:1" json:"loan_id"`
	InstallmentNo  int             `gorm:"column:installment_no;uniqueIndex:uq_loan_installment,priority:2" json:"installment_no"`
	DueDate        time.Time       `gorm:"column:due_date;index" json:"due_date"`
	ExpectedAmount decimal.Decimal `gorm:"column:expected_amount;type:decimal(14,2)" json:"expected_amount"`
	CreatedAt      time.Time       `gorm:"column:created_at" json:"created_at"`
}

// TableName implements gorm's tablename interface.
func (ScheduledPayment) TableName() string {
	return "scheduled_payments"
}
