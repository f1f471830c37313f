package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"lending-admin-api/config"
	"lending-admin-api/models"
)

type portfolioStatsRow struct {
	TotalApplications int64               `gorm:"column:total_applications" json:"total_applications"`
	PendingCount      int64               `gorm:"column:pending_count" json:"pending_count"`
	ApprovedCount     int64               `gorm:"column:approved_count" json:"approved_count"`
	RejectedCount     int64               `gorm:"column:rejected_count" json:"rejected_count"`
	TotalRequested    decimal.NullDecimal `gorm:"column:total_requested" json:"total_requested"`
	TotalApproved     decimal.NullDecimal `gorm:"column:total_approved" json:"total_approved"`
}

// GetDashboardStats returns portfolio counts and amounts plus this month's
// collections, for the admin landing page.
func GetDashboardStats(c *gin.Context) {
	var stats portfolioStatsRow
	err := config.DB.Model(&models.LoanApplication{}).
		Select(`COUNT(*) AS total_applications,
                    SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS pending_count,
                    SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS approved_count,
                    SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS rejected_count,
                    COALESCE(SUM(requested_amount),0) AS total_requested,
                    COALESCE(SUM(CASE WHEN status = ? THEN approved_amount ELSE 0 END),0) AS total_approved`,
			models.StatusPending, models.StatusApproved, models.StatusRejected, models.StatusApproved).
		Where("deleted_at IS NULL").
		Scan(&stats).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch stats"})
		return
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var collectedThisMonth decimal.NullDecimal
	err = config.DB.Model(&models.PaymentRecord{}).
		Select("COALESCE(SUM(amount_paid + fine),0)").
		Where("collection_date >= ? AND collection_date < ?", monthStart, monthStart.AddDate(0, 1, 0)).
		Scan(&collectedThisMonth).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch stats"})
		return
	}

	collected := decimal.Zero
	if collectedThisMonth.Valid {
		collected = collectedThisMonth.Decimal
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"applications":         stats,
			"collected_this_month": collected,
		},
	})
}
