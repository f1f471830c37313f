package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lending-admin-api/config"
	"lending-admin-api/models"
)

// DefaultReportWindowDays is the trailing window used when the caller does
// not supply one.
const DefaultReportWindowDays = 30

// DailyReportEntry compares what should have been collected on a calendar
// day against what actually was, across all loans. Degraded marks a day the
// underlying reads failed for; its sums are zero, not true zeroes.
type DailyReportEntry struct {
	Date           string          `json:"date"`
	ExpectedToday  decimal.Decimal `json:"expected_today"`
	CollectedToday decimal.Decimal `json:"collected_today"`
	Variance       decimal.Decimal `json:"variance"`
	Degraded       bool            `json:"degraded,omitempty"`
}

// CollectionReportService is the reconciliation engine: a pure read-and-
// reduce over scheduled_payments and payment_records. It performs no writes
// and reads no wall clock; the reference instant comes from the caller.
type CollectionReportService struct {
	db *gorm.DB
}

func NewCollectionReportService(db *gorm.DB) *CollectionReportService {
	if db == nil {
		db = config.DB
	}
	return &CollectionReportService{db: db}
}

// DailyReport computes the expected-vs-collected series for `days`
// consecutive calendar days ending at asOf inclusive. Days aggregate
// independently and in parallel; a day whose reads fail (or whose context is
// cancelled) still yields an entry, zeroed and flagged, and the failure
// surfaces as a *PartialAggregationFailure alongside the full report.
func (s *CollectionReportService) DailyReport(ctx context.Context, asOf time.Time, days int) ([]DailyReportEntry, error) {
	if days <= 0 {
		days = DefaultReportWindowDays
	}

	end := startOfDay(asOf)
	start := end.AddDate(0, 0, -(days - 1))

	entries := make([]DailyReportEntry, days)
	failures := make([]time.Time, 0)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		wg.Add(1)
		go func(i int, day time.Time) {
			defer wg.Done()
			entry, err := s.aggregateDay(ctx, day)
			if err != nil {
				entry = DailyReportEntry{
					Date:           day.Format("2006-01-02"),
					ExpectedToday:  decimal.Zero,
					CollectedToday: decimal.Zero,
					Variance:       decimal.Zero,
					Degraded:       true,
				}
				mu.Lock()
				failures = append(failures, day)
				mu.Unlock()
			}
			entries[i] = entry
		}(i, day)
	}
	wg.Wait()

	if len(failures) > 0 {
		sort.Slice(failures, func(a, b int) bool { return failures[a].Before(failures[b]) })
		return entries, &PartialAggregationFailure{FailedDates: failures}
	}
	return entries, nil
}

// aggregateDay runs the two range-scoped aggregate queries for one day:
// one over all loans' scheduled payments, one over all payment records.
// Bounds are [00:00, next 00:00), so each row lands in exactly one day.
func (s *CollectionReportService) aggregateDay(ctx context.Context, day time.Time) (DailyReportEntry, error) {
	next := day.AddDate(0, 0, 1)

	var expected sumRow
	if err := s.db.WithContext(ctx).
		Model(&models.ScheduledPayment{}).
		Select("SUM(expected_amount) AS total").
		Where("due_date >= ? AND due_date < ?", day, next).
		Scan(&expected).Error; err != nil {
		return DailyReportEntry{}, err
	}

	var collected sumRow
	if err := s.db.WithContext(ctx).
		Model(&models.PaymentRecord{}).
		Select("SUM(amount_paid + fine) AS total").
		Where("collection_date >= ? AND collection_date < ?", day, next).
		Scan(&collected).Error; err != nil {
		return DailyReportEntry{}, err
	}

	exp := expected.Amount()
	col := collected.Amount()

	return DailyReportEntry{
		Date:           day.Format("2006-01-02"),
		ExpectedToday:  exp,
		CollectedToday: col,
		Variance:       col.Sub(exp),
	}, nil
}

// sumRow receives a SUM aggregate; SQL SUM over no rows is NULL, which
// reads back as a true zero.
type sumRow struct {
	Total decimal.NullDecimal `gorm:"column:total"`
}

func (r sumRow) Amount() decimal.Decimal {
	if !r.Total.Valid {
		return decimal.Zero
	}
	return r.Total.Decimal.Round(2)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
