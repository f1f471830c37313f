package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"

	"lending-admin-api/models"
)

var (
	schemeSelectPattern   = regexp.MustCompile("SELECT .* FROM `loan_schemes` WHERE scheme_id = \\?")
	appSelectPattern      = regexp.MustCompile("SELECT .* FROM `loan_applications` WHERE application_id = \\?")
	appInsertPattern      = regexp.MustCompile("INSERT INTO `loan_applications`")
	appUpdatePattern      = regexp.MustCompile("UPDATE `loan_applications` SET .* WHERE application_id = \\? AND status = \\?")
	scheduleInsertPattern = regexp.MustCompile("INSERT INTO `scheduled_payments`")
	paymentInsertPattern  = regexp.MustCompile("INSERT INTO `payment_records`")
)

func activeSchemeStep() *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: schemeSelectPattern,
		columns: []string{"scheme_id", "scheme_name", "installment_count", "repayment_cadence", "max_principal_amount", "is_active"},
		rows: [][]driver.Value{
			{int64(3), "Weekly Micro Loan", int64(12), "weekly", "50000.00", true},
		},
	}
}

func applicationRowStep(id int64, status string, approved driver.Value) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: appSelectPattern,
		columns: []string{"application_id", "customer_id", "scheme_id", "requested_amount", "status", "approved_amount", "submitted_at"},
		rows: [][]driver.Value{
			{id, int64(10), int64(3), "1000.00", status, approved, time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)},
		},
	}
}

func TestSubmitRejectsNonPositiveAmount(t *testing.T) {
	state := &scriptedDB{}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	_, err := svc.Submit(SubmitInput{CustomerID: 1, RequestedAmount: d("0"), SchemeID: 3})

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("no queries should have run: %v", err)
	}
}

func TestSubmitRejectsUnknownScheme(t *testing.T) {
	state := &scriptedDB{steps: []*queryStep{
		{
			kind:    kindQuery,
			pattern: schemeSelectPattern,
			columns: []string{"scheme_id"},
			rows:    [][]driver.Value{},
		},
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	_, err := svc.Submit(SubmitInput{CustomerID: 1, RequestedAmount: d("1000"), SchemeID: 99})

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validation.Field != "scheme_id" {
		t.Fatalf("expected scheme_id validation, got %q", validation.Field)
	}
}

func TestSubmitCreatesPendingApplication(t *testing.T) {
	state := &scriptedDB{steps: []*queryStep{
		activeSchemeStep(),
		{
			kind:    kindExec,
			pattern: appInsertPattern,
			result:  scriptedResult{lastInsertID: 99, rowsAffected: 1},
		},
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	app, err := svc.Submit(SubmitInput{CustomerID: 10, RequestedAmount: d("1000.00"), SchemeID: 3})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if app.ApplicationID != 99 {
		t.Fatalf("expected assigned id 99, got %d", app.ApplicationID)
	}
	if app.Status != models.StatusPending {
		t.Fatalf("expected pending status, got %q", app.Status)
	}
	if app.SubmittedAt.IsZero() {
		t.Fatal("expected a submission timestamp")
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSubmitRejectsAmountOverSchemeMaximum(t *testing.T) {
	state := &scriptedDB{steps: []*queryStep{activeSchemeStep()}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	_, err := svc.Submit(SubmitInput{CustomerID: 10, RequestedAmount: d("60000.00"), SchemeID: 3})

	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func validTerms() ScheduleTerms {
	return ScheduleTerms{
		InstallmentCount: 4,
		Cadence:          models.CadenceWeekly,
		FirstDueDate:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestApproveFlipsStatusAndInsertsSchedule(t *testing.T) {
	state := &scriptedDB{steps: []*queryStep{
		{
			kind:    kindExec,
			pattern: appUpdatePattern,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: scheduleInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 4},
		},
		applicationRowStep(55, models.StatusApproved, "800.00"),
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	app, err := svc.Approve(55, d("800.00"), validTerms(), 2)
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}

	if app.Status != models.StatusApproved {
		t.Fatalf("expected approved status, got %q", app.Status)
	}
	if app.ApprovedAmount == nil || !app.ApprovedAmount.Equal(d("800.00")) {
		t.Fatalf("unexpected approved amount: %v", app.ApprovedAmount)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApproveAlreadyDecidedIsInvalidState(t *testing.T) {
	// The conditional update hits no row because the status is no longer
	// pending; the service re-reads to tell conflict from absence. This is
	// exactly what the loser of two concurrent approvals observes.
	state := &scriptedDB{steps: []*queryStep{
		{
			kind:    kindExec,
			pattern: appUpdatePattern,
			result:  scriptedResult{rowsAffected: 0},
		},
		applicationRowStep(55, models.StatusApproved, "800.00"),
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	_, err := svc.Approve(55, d("900.00"), validTerms(), 2)

	var invalidState *InvalidStateError
	if !errors.As(err, &invalidState) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if invalidState.Current != models.StatusApproved {
		t.Fatalf("expected current status approved, got %q", invalidState.Current)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("no schedule insert may run for the losing approval: %v", err)
	}
}

func TestApproveMissingApplicationIsNotFound(t *testing.T) {
	state := &scriptedDB{steps: []*queryStep{
		{
			kind:    kindExec,
			pattern: appUpdatePattern,
			result:  scriptedResult{rowsAffected: 0},
		},
		{
			kind:    kindQuery,
			pattern: appSelectPattern,
			columns: []string{"application_id"},
			rows:    [][]driver.Value{},
		},
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	_, err := svc.Approve(404, d("800.00"), validTerms(), 2)

	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	state := &scriptedDB{}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)

	for _, reason := range []string{"", "  ", "\t\n"} {
		_, err := svc.Reject(55, reason, 2)
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("reason %q: expected ValidationError, got %v", reason, err)
		}
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("no queries should have run: %v", err)
	}
}

func TestRejectFlipsStatus(t *testing.T) {
	remarks := "insufficient repayment capacity"
	state := &scriptedDB{steps: []*queryStep{
		{
			kind:    kindExec,
			pattern: appUpdatePattern,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: appSelectPattern,
			columns: []string{"application_id", "status", "admin_remarks"},
			rows: [][]driver.Value{
				{int64(55), models.StatusRejected, remarks},
			},
		},
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	app, err := svc.Reject(55, "  "+remarks+"  ", 2)
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	if app.Status != models.StatusRejected {
		t.Fatalf("expected rejected status, got %q", app.Status)
	}
	if app.AdminRemarks == nil || *app.AdminRemarks != remarks {
		t.Fatalf("unexpected remarks: %v", app.AdminRemarks)
	}
}

func TestRecordPaymentRejectsNegativeAmounts(t *testing.T) {
	state := &scriptedDB{}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)

	_, err := svc.RecordPayment(RecordPaymentInput{LoanID: 55, AmountPaid: d("-1"), RecordedBy: 2})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for negative amount, got %v", err)
	}

	_, err = svc.RecordPayment(RecordPaymentInput{LoanID: 55, AmountPaid: d("10"), Fine: d("-1"), RecordedBy: 2})
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for negative fine, got %v", err)
	}
}

func TestRecordPaymentRequiresApprovedLoan(t *testing.T) {
	state := &scriptedDB{steps: []*queryStep{
		applicationRowStep(55, models.StatusPending, nil),
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	_, err := svc.RecordPayment(RecordPaymentInput{
		LoanID:     55,
		AmountPaid: d("100.00"),
		Fine:       d("0"),
		RecordedBy: 2,
	})

	var invalidState *InvalidStateError
	if !errors.As(err, &invalidState) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestRecordPaymentAppendsRecord(t *testing.T) {
	state := &scriptedDB{steps: []*queryStep{
		applicationRowStep(55, models.StatusApproved, "800.00"),
		{
			kind:    kindExec,
			pattern: paymentInsertPattern,
			result:  scriptedResult{lastInsertID: 7, rowsAffected: 1},
		},
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	record, err := svc.RecordPayment(RecordPaymentInput{
		LoanID:         55,
		AmountPaid:     d("150.005"),
		Fine:           d("10"),
		CollectionDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		RecordedBy:     2,
	})
	if err != nil {
		t.Fatalf("RecordPayment returned error: %v", err)
	}

	if record.RecordID != 7 {
		t.Fatalf("expected assigned id 7, got %d", record.RecordID)
	}
	if record.ReceiptNo == "" {
		t.Fatal("expected a receipt number")
	}
	if !record.AmountPaid.Equal(d("150.01")) {
		t.Fatalf("expected amount rounded to 150.01, got %s", record.AmountPaid)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

var (
	paymentSelectPattern = regexp.MustCompile("SELECT .* FROM `payment_records` WHERE record_id = \\?")
	reversalCountPattern = regexp.MustCompile("SELECT count\\(\\*\\) FROM `payment_records` WHERE reversal_of = \\?")
)

func paymentRowStep(id int64, reversalOf driver.Value) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: paymentSelectPattern,
		columns: []string{"record_id", "receipt_no", "loan_id", "amount_paid", "fine", "reversal_of"},
		rows: [][]driver.Value{
			{id, "rcpt-1", int64(55), "150.00", "10.00", reversalOf},
		},
	}
}

func TestReversePaymentAppendsNegatedRecord(t *testing.T) {
	state := &scriptedDB{steps: []*queryStep{
		paymentRowStep(7, nil),
		{
			kind:    kindQuery,
			pattern: reversalCountPattern,
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(0)}},
		},
		{
			kind:    kindExec,
			pattern: paymentInsertPattern,
			result:  scriptedResult{lastInsertID: 8, rowsAffected: 1},
		},
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	reversal, err := svc.ReversePayment(7, 2)
	if err != nil {
		t.Fatalf("ReversePayment returned error: %v", err)
	}

	if !reversal.AmountPaid.Equal(d("-150.00")) || !reversal.Fine.Equal(d("-10.00")) {
		t.Fatalf("expected negated amounts, got %s / %s", reversal.AmountPaid, reversal.Fine)
	}
	if reversal.ReversalOf == nil || *reversal.ReversalOf != 7 {
		t.Fatalf("expected reversal_of 7, got %v", reversal.ReversalOf)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReversePaymentRefusesDoubleReversal(t *testing.T) {
	state := &scriptedDB{steps: []*queryStep{
		paymentRowStep(7, nil),
		{
			kind:    kindQuery,
			pattern: reversalCountPattern,
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(1)}},
		},
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	_, err := svc.ReversePayment(7, 2)

	var invalidState *InvalidStateError
	if !errors.As(err, &invalidState) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestReversePaymentRefusesReversingAReversal(t *testing.T) {
	state := &scriptedDB{steps: []*queryStep{
		paymentRowStep(8, int64(7)),
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	_, err := svc.ReversePayment(8, 2)

	var invalidState *InvalidStateError
	if !errors.As(err, &invalidState) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
}

func TestReversePaymentLosingRaceHitsUniqueIndex(t *testing.T) {
	// The pre-insert count sees no reversal yet, but a concurrent reversal
	// lands first and the insert trips the unique index on reversal_of.
	state := &scriptedDB{steps: []*queryStep{
		paymentRowStep(7, nil),
		{
			kind:    kindQuery,
			pattern: reversalCountPattern,
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(0)}},
		},
		{
			kind:    kindExec,
			pattern: paymentInsertPattern,
			err:     &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '7' for key 'uq_payment_reversal'"},
		},
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)
	_, err := svc.ReversePayment(7, 2)

	var invalidState *InvalidStateError
	if !errors.As(err, &invalidState) {
		t.Fatalf("expected InvalidStateError, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestApproveConcurrentDecisionsSingleWinner(t *testing.T) {
	// Two approvals race on one pending application over shared scripted
	// state. Whichever conditional update runs first gets the affected row;
	// the other gets zero and must re-read. The script holds exactly one
	// schedule insert, so a doubled schedule would fail verifyComplete.
	state := &scriptedDB{unordered: true, steps: []*queryStep{
		{
			kind:    kindExec,
			pattern: appUpdatePattern,
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindExec,
			pattern: appUpdatePattern,
			result:  scriptedResult{rowsAffected: 0},
		},
		{
			kind:    kindExec,
			pattern: scheduleInsertPattern,
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 4},
		},
		applicationRowStep(55, models.StatusApproved, "800.00"),
		applicationRowStep(55, models.StatusApproved, "800.00"),
	}}
	db, cleanup := newScriptedGormDB(t, state)
	defer cleanup()

	svc := NewLoanService(db)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Approve(55, d("800.00"), validTerms(), 2)
		}(i)
	}
	wg.Wait()

	winners, losers := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		default:
			var invalidState *InvalidStateError
			if !errors.As(err, &invalidState) {
				t.Fatalf("loser must observe InvalidStateError, got %v", err)
			}
			losers++
		}
	}
	if winners != 1 || losers != 1 {
		t.Fatalf("expected exactly one winner and one loser, got %d/%d", winners, losers)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("schedule must be inserted exactly once: %v", err)
	}
}
