package services

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lending-admin-api/models"
)

// ScheduleTerms describes the repayment plan applied at approval time.
// InstallmentAmount is optional; when zero the approved amount is split
// evenly across the installments at two decimal places. An explicit amount
// must reproduce the approved amount to within per-installment rounding.
// Either way the rounding remainder is folded into the final installment so
// the schedule total equals the approved amount exactly.
type ScheduleTerms struct {
	InstallmentCount  int             `json:"installment_count"`
	Cadence           string          `json:"cadence"`
	FirstDueDate      time.Time       `json:"first_due_date"`
	InstallmentAmount decimal.Decimal `json:"installment_amount"`
}

// Validate checks the terms before any schedule rows are generated.
func (t ScheduleTerms) Validate() error {
	if t.InstallmentCount < 1 {
		return &ValidationError{Field: "installment_count", Message: "must be at least 1"}
	}
	switch strings.ToLower(strings.TrimSpace(t.Cadence)) {
	case models.CadenceDaily, models.CadenceWeekly, models.CadenceMonthly:
	default:
		return &ValidationError{Field: "cadence", Message: "must be daily, weekly or monthly"}
	}
	if t.FirstDueDate.IsZero() {
		return &ValidationError{Field: "first_due_date", Message: "is required"}
	}
	if t.InstallmentAmount.IsNegative() {
		return &ValidationError{Field: "installment_amount", Message: "must not be negative"}
	}
	return nil
}

// GenerateSchedule produces the full installment set for an approved loan.
// It is a pure function: rows are returned for bulk insertion inside the
// approval transaction and are never mutated afterwards.
func GenerateSchedule(loanID int, approvedAmount decimal.Decimal, terms ScheduleTerms) ([]models.ScheduledPayment, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if !approvedAmount.IsPositive() {
		return nil, &ValidationError{Field: "approved_amount", Message: "must be greater than zero"}
	}

	n := terms.InstallmentCount
	count := decimal.NewFromInt(int64(n))

	per := terms.InstallmentAmount.Round(2)
	if per.IsZero() {
		per = approvedAmount.DivRound(count, 2)
	} else {
		// An explicit installment amount must reproduce the approved
		// amount; only the half-cent-per-installment rounding slack of an
		// even split is tolerated.
		drift := per.Mul(count).Sub(approvedAmount).Abs()
		if drift.GreaterThan(decimal.New(5, -3).Mul(count)) {
			return nil, &ValidationError{Field: "installment_amount", Message: "installments do not sum to the approved amount"}
		}
	}
	// The final installment absorbs the rounding remainder so the schedule
	// sums to the approved amount exactly.
	last := approvedAmount.Sub(per.Mul(decimal.NewFromInt(int64(n - 1))))
	if !per.IsPositive() || !last.IsPositive() {
		return nil, &ValidationError{Field: "installment_amount", Message: "resolves to a non-positive installment"}
	}

	cadence := strings.ToLower(strings.TrimSpace(terms.Cadence))
	rows := make([]models.ScheduledPayment, 0, n)
	due := terms.FirstDueDate
	for i := 1; i <= n; i++ {
		amount := per
		if i == n {
			amount = last
		}
		rows = append(rows, models.ScheduledPayment{
			LoanID:         loanID,
			InstallmentNo:  i,
			DueDate:        due,
			ExpectedAmount: amount,
		})
		due = nextDueDate(due, cadence)
	}
	return rows, nil
}

func nextDueDate(d time.Time, cadence string) time.Time {
	switch cadence {
	case models.CadenceDaily:
		return d.AddDate(0, 0, 1)
	case models.CadenceWeekly:
		return d.AddDate(0, 0, 7)
	default: // monthly
		return d.AddDate(0, 1, 0)
	}
}
