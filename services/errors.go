package services

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError reports malformed or out-of-range input. The caller can
// recover by correcting the request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvalidStateError reports an operation that is not legal in the entity's
// current state, e.g. approving an application that is no longer pending.
type InvalidStateError struct {
	Entity  string
	ID      int
	Current string
	Message string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %d: %s (current status: %s)", e.Entity, e.ID, e.Message, e.Current)
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Entity string
	ID     int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// PartialAggregationFailure reports the days of a collection report that
// could not be computed. The report itself still covers the full window;
// the failed days carry zeroed, degraded entries.
type PartialAggregationFailure struct {
	FailedDates []time.Time
}

func (e *PartialAggregationFailure) Error() string {
	dates := make([]string, len(e.FailedDates))
	for i, d := range e.FailedDates {
		dates[i] = d.Format("2006-01-02")
	}
	return fmt.Sprintf("failed to aggregate %d day(s): %s", len(dates), strings.Join(dates, ", "))
}
