package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecord represents payment_records: one actual collection event
// against an approved loan. The table is append-only; a mistaken record is
// corrected by appending a reversal that points back via ReversalOf, never by
// rewriting history already used in closed reporting periods. The unique
// index on reversal_of holds each record to at most one reversal (MySQL
// unique indexes admit any number of NULLs, so ordinary records are free).
type PaymentRecord struct {
	RecordID       int             `gorm:"primaryKey;column:record_id" json:"record_id"`
	ReceiptNo      string          `gorm:"column:receipt_no;unique" json:"receipt_no"`
	LoanID         int             `gorm:"column:loan_id;index" json:"loan_id"`
	CollectionDate time.Time       `gorm:"column:collection_date;index" json:"collection_date"`
	AmountPaid     decimal.Decimal `gorm:"column:amount_paid;type:decimal(14,2)" json:"amount_paid"`
	Fine           decimal.Decimal `gorm:"column:fine;type:decimal(14,2)" json:"fine"`
	RecordedBy     int             `gorm:"column:recorded_by" json:"recorded_by"`
	ReversalOf     *int            `gorm:"column:reversal_of;uniqueIndex:uq_payment_reversal" json:"reversal_of,omitempty"`
	CreatedAt      time.Time       `gorm:"column:created_at" json:"created_at"`
}

// TableName implements gorm's tablename interface.
func (PaymentRecord) TableName() string {
	return "payment_records"
}
