package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"lending-admin-api/config"
)

// DailySummaryJob emails the end-of-day collection report to the addresses
// in REPORT_RECIPIENTS (comma separated). A degraded report is still sent;
// failed days are called out instead of being presented as true zeroes.
type DailySummaryJob struct {
	reports *CollectionReportService
	days    int
}

func NewDailySummaryJob(db *gorm.DB) *DailySummaryJob {
	return &DailySummaryJob{
		reports: NewCollectionReportService(db),
		days:    7,
	}
}

// Start registers the job on the given cron runner, defaulting to 18:00
// daily. The schedule can be overridden with REPORT_CRON_SPEC.
func (j *DailySummaryJob) Start(c *cron.Cron) error {
	spec := os.Getenv("REPORT_CRON_SPEC")
	if spec == "" {
		spec = "0 18 * * *"
	}
	_, err := c.AddFunc(spec, j.Run)
	return err
}

// Run computes the trailing report and mails it. Used both by cron and by
// the manual trigger endpoint.
func (j *DailySummaryJob) Run() {
	recipients := splitRecipients(os.Getenv("REPORT_RECIPIENTS"))
	if len(recipients) == 0 {
		log.Println("daily summary: no REPORT_RECIPIENTS configured, skipping")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	entries, err := j.reports.DailyReport(ctx, time.Now(), j.days)
	var partial *PartialAggregationFailure
	if err != nil && !errors.As(err, &partial) {
		log.Printf("daily summary: report failed: %v", err)
		return
	}

	subject := fmt.Sprintf("Daily collection summary for %s", time.Now().Format("2006-01-02"))
	if err := config.SendMail(recipients, subject, renderSummaryHTML(entries, partial)); err != nil {
		log.Printf("daily summary: send failed: %v", err)
		return
	}
	log.Printf("daily summary: sent to %d recipient(s)", len(recipients))
}

func splitRecipients(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func renderSummaryHTML(entries []DailyReportEntry, partial *PartialAggregationFailure) string {
	var b strings.Builder
	b.WriteString("<h3>Collections: expected vs. actual</h3>")
	if partial != nil {
		b.WriteString(fmt.Sprintf("<p><strong>Warning:</strong> %s. Those rows show zero and must not be read as true totals.</p>", partial.Error()))
	}
	b.WriteString("<table border=\"1\" cellpadding=\"4\"><tr><th>Date</th><th>Expected</th><th>Collected</th><th>Variance</th></tr>")
	for _, e := range entries {
		marker := ""
		if e.Degraded {
			marker = " *"
		}
		b.WriteString(fmt.Sprintf("<tr><td>%s%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			e.Date, marker, e.ExpectedToday.StringFixed(2), e.CollectedToday.StringFixed(2), e.Variance.StringFixed(2)))
	}
	b.WriteString("</table>")
	return b.String()
}
