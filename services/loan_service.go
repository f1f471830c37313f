package services

import (
	"errors"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lending-admin-api/config"
	"lending-admin-api/models"
)

// LoanService owns the application lifecycle: submission, the single
// approve-or-reject decision, and payment recording. Decisions are written
// as a conditional update guarded on the current status, so two concurrent
// decisions on the same application resolve to exactly one winner.
type LoanService struct {
	db *gorm.DB
}

func NewLoanService(db *gorm.DB) *LoanService {
	if db == nil {
		db = config.DB
	}
	return &LoanService{db: db}
}

// SubmitInput carries a new application request.
type SubmitInput struct {
	CustomerID      int
	BranchID        int
	RequestedAmount decimal.Decimal
	SchemeID        int
}

// Submit validates the request and creates a pending application.
func (s *LoanService) Submit(in SubmitInput) (*models.LoanApplication, error) {
	if !in.RequestedAmount.IsPositive() {
		return nil, &ValidationError{Field: "requested_amount", Message: "must be greater than zero"}
	}
	if in.CustomerID <= 0 {
		return nil, &ValidationError{Field: "customer_id", Message: "is required"}
	}

	var scheme models.LoanScheme
	if err := s.db.Where("scheme_id = ? AND deleted_at IS NULL", in.SchemeID).First(&scheme).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ValidationError{Field: "scheme_id", Message: "unknown scheme"}
		}
		return nil, err
	}
	if !scheme.IsActive {
		return nil, &ValidationError{Field: "scheme_id", Message: "scheme is not accepting applications"}
	}
	if scheme.MaxPrincipalAmount.IsPositive() && in.RequestedAmount.GreaterThan(scheme.MaxPrincipalAmount) {
		return nil, &ValidationError{Field: "requested_amount", Message: "exceeds the scheme's maximum principal"}
	}

	now := time.Now()
	app := models.LoanApplication{
		CustomerID:      in.CustomerID,
		SchemeID:        in.SchemeID,
		BranchID:        in.BranchID,
		RequestedAmount: in.RequestedAmount.Round(2),
		Status:          models.StatusPending,
		SubmittedAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.db.Create(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// Approve flips a pending application to approved and bulk-inserts its
// installment schedule in the same transaction. The status flip is a
// conditional update keyed on status = pending: RowsAffected tells the loser
// of a concurrent decision apart, and a report can never observe an approved
// loan without schedule rows.
func (s *LoanService) Approve(applicationID int, approvedAmount decimal.Decimal, terms ScheduleTerms, actorID int) (*models.LoanApplication, error) {
	if !approvedAmount.IsPositive() {
		return nil, &ValidationError{Field: "approved_amount", Message: "must be greater than zero"}
	}
	approvedAmount = approvedAmount.Round(2)

	rows, err := GenerateSchedule(applicationID, approvedAmount, terms)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.LoanApplication{}).
			Where("application_id = ? AND status = ? AND deleted_at IS NULL", applicationID, models.StatusPending).
			Updates(map[string]interface{}{
				"status":          models.StatusApproved,
				"approved_amount": approvedAmount,
				"decided_at":      now,
				"decided_by":      actorID,
				"updated_at":      now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return s.decisionConflict(tx, applicationID)
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(applicationID)
}

// Reject flips a pending application to rejected with a mandatory reason.
func (s *LoanService) Reject(applicationID int, reason string, actorID int) (*models.LoanApplication, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Message: "is required"}
	}

	now := time.Now()
	res := s.db.Model(&models.LoanApplication{}).
		Where("application_id = ? AND status = ? AND deleted_at IS NULL", applicationID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":        models.StatusRejected,
			"admin_remarks": reason,
			"decided_at":    now,
			"decided_by":    actorID,
			"updated_at":    now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, s.decisionConflict(s.db, applicationID)
	}
	return s.Get(applicationID)
}

// RecordPaymentInput carries one collection event.
type RecordPaymentInput struct {
	LoanID         int
	AmountPaid     decimal.Decimal
	Fine           decimal.Decimal
	CollectionDate time.Time
	RecordedBy     int
}

// RecordPayment appends a payment record against an approved loan. Scheduled
// payments are never touched; the daily report reconciles the two sides.
func (s *LoanService) RecordPayment(in RecordPaymentInput) (*models.PaymentRecord, error) {
	if in.AmountPaid.IsNegative() {
		return nil, &ValidationError{Field: "amount_paid", Message: "must not be negative"}
	}
	if in.Fine.IsNegative() {
		return nil, &ValidationError{Field: "fine", Message: "must not be negative"}
	}
	if in.CollectionDate.IsZero() {
		in.CollectionDate = time.Now()
	}

	app, err := s.Get(in.LoanID)
	if err != nil {
		return nil, err
	}
	if app.Status != models.StatusApproved {
		return nil, &InvalidStateError{
			Entity:  "loan",
			ID:      in.LoanID,
			Current: app.Status,
			Message: "payments can only be recorded against approved loans",
		}
	}

	record := models.PaymentRecord{
		ReceiptNo:      uuid.NewString(),
		LoanID:         in.LoanID,
		CollectionDate: in.CollectionDate,
		AmountPaid:     in.AmountPaid.Round(2),
		Fine:           in.Fine.Round(2),
		RecordedBy:     in.RecordedBy,
		CreatedAt:      time.Now(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ReversePayment appends a compensating record for a mistaken collection
// entry. History is never rewritten in place, so closed reporting periods
// stay reproducible.
func (s *LoanService) ReversePayment(recordID int, actorID int) (*models.PaymentRecord, error) {
	var original models.PaymentRecord
	if err := s.db.Where("record_id = ?", recordID).First(&original).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "payment record", ID: recordID}
		}
		return nil, err
	}
	if original.ReversalOf != nil {
		return nil, &InvalidStateError{
			Entity:  "payment record",
			ID:      recordID,
			Current: "reversal",
			Message: "a reversal cannot itself be reversed",
		}
	}

	// Fast path for the common already-reversed case; the unique index on
	// reversal_of is what holds under concurrent reversals.
	var existing int64
	if err := s.db.Model(&models.PaymentRecord{}).
		Where("reversal_of = ?", recordID).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, alreadyReversed(recordID)
	}

	reversal := models.PaymentRecord{
		ReceiptNo:      uuid.NewString(),
		LoanID:         original.LoanID,
		CollectionDate: time.Now(),
		AmountPaid:     original.AmountPaid.Neg(),
		Fine:           original.Fine.Neg(),
		RecordedBy:     actorID,
		ReversalOf:     &original.RecordID,
		CreatedAt:      time.Now(),
	}
	if err := s.db.Create(&reversal).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, alreadyReversed(recordID)
		}
		return nil, err
	}
	return &reversal, nil
}

func alreadyReversed(recordID int) error {
	return &InvalidStateError{
		Entity:  "payment record",
		ID:      recordID,
		Current: "reversed",
		Message: "record has already been reversed",
	}
}

// isDuplicateKey recognizes a unique-index violation whether or not gorm's
// error translation is enabled.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// Get returns a fresh application snapshot for UI refresh after each call.
func (s *LoanService) Get(applicationID int) (*models.LoanApplication, error) {
	var app models.LoanApplication
	if err := s.db.Where("application_id = ? AND deleted_at IS NULL", applicationID).First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "loan application", ID: applicationID}
		}
		return nil, err
	}
	return &app, nil
}

// Schedule returns the installment rows of a loan ordered by installment.
func (s *LoanService) Schedule(loanID int) ([]models.ScheduledPayment, error) {
	var rows []models.ScheduledPayment
	if err := s.db.Where("loan_id = ?", loanID).
		Order("installment_no ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Payments returns the collection history of a loan, newest first.
func (s *LoanService) Payments(loanID int) ([]models.PaymentRecord, error) {
	var rows []models.PaymentRecord
	if err := s.db.Where("loan_id = ?", loanID).
		Order("collection_date DESC, record_id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// decisionConflict turns a zero-row conditional update into the right error:
// the application is either missing or already decided.
func (s *LoanService) decisionConflict(tx *gorm.DB, applicationID int) error {
	var app models.LoanApplication
	if err := tx.Where("application_id = ? AND deleted_at IS NULL", applicationID).First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "loan application", ID: applicationID}
		}
		return err
	}
	return &InvalidStateError{
		Entity:  "loan application",
		ID:      applicationID,
		Current: app.Status,
		Message: "only pending applications can be decided",
	}
}
