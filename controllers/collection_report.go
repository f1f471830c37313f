package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lending-admin-api/config"
	"lending-admin-api/services"
	"lending-admin-api/utils"
)

// GetDailyCollectionReport returns the expected-vs-collected series for a
// trailing window of days (?days=N, default 30, ?as_of=YYYY-MM-DD defaults
// to today). Days whose reads failed are flagged per entry and listed in
// failed_dates; a degraded day is never presented as a true zero.
func GetDailyCollectionReport(c *gin.Context) {
	days := parsePositive(c.Query("days"), services.DefaultReportWindowDays)
	if days > 366 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "days must be at most 366"})
		return
	}

	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, ok := utils.ParseDate(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "as_of must be YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	svc := services.NewCollectionReportService(config.DB)
	entries, err := svc.DailyReport(c.Request.Context(), asOf, days)

	failedDates := []string{}
	if err != nil {
		var partial *services.PartialAggregationFailure
		if !errors.As(err, &partial) {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to build report"})
			return
		}
		for _, d := range partial.FailedDates {
			failedDates = append(failedDates, d.Format(utils.DateLayout))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"entries":      entries,
		"failed_dates": failedDates,
		"degraded":     len(failedDates) > 0,
	})
}

// RunDailySummaryNow triggers the end-of-day summary email outside its cron
// schedule (admin only).
func RunDailySummaryNow(c *gin.Context) {
	go services.NewDailySummaryJob(config.DB).Run()
	c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "Daily summary triggered"})
}
