package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"lending-admin-api/config"
	"lending-admin-api/models"
	"lending-admin-api/services"
)

// SubmitApplication creates a pending loan application.
func SubmitApplication(c *gin.Context) {
	var req struct {
		CustomerID      int             `json:"customer_id" binding:"required"`
		RequestedAmount decimal.Decimal `json:"requested_amount" binding:"required"`
		SchemeID        int             `json:"scheme_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	branchID := 0
	if v, ok := c.Get("branchID"); ok {
		branchID, _ = v.(int)
	}

	svc := services.NewLoanService(config.DB)
	app, err := svc.Submit(services.SubmitInput{
		CustomerID:      req.CustomerID,
		BranchID:        branchID,
		RequestedAmount: req.RequestedAmount,
		SchemeID:        req.SchemeID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "application": app})
}

// GetApplications lists applications with optional status/scheme filters.
func GetApplications(c *gin.Context) {
	q := config.DB.Model(&models.LoanApplication{}).
		Preload("Scheme").
		Where("deleted_at IS NULL")

	if status := strings.ToLower(strings.TrimSpace(c.Query("status"))); status != "" {
		q = q.Where("status = ?", status)
	}
	if scheme := strings.TrimSpace(c.Query("scheme_id")); scheme != "" {
		q = q.Where("scheme_id = ?", scheme)
	}
	if customer := strings.TrimSpace(c.Query("customer_id")); customer != "" {
		q = q.Where("customer_id = ?", customer)
	}

	page := parsePositive(c.Query("page"), 1)
	size := parsePositive(c.Query("page_size"), 20)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch applications"})
		return
	}

	var apps []models.LoanApplication
	if err := q.Order("submitted_at DESC, application_id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&apps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"applications": apps,
		"meta": gin.H{
			"page":      page,
			"page_size": size,
			"total":     total,
		},
	})
}

// GetApplication returns one application with its schedule and payments.
func GetApplication(c *gin.Context) {
	appID, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := services.NewLoanService(config.DB)
	app, err := svc.Get(appID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	schedule, err := svc.Schedule(appID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch schedule"})
		return
	}
	payments, err := svc.Payments(appID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"application": app,
		"schedule":    schedule,
		"payments":    payments,
	})
}

func parsePositive(q string, def int) int {
	if q == "" {
		return def
	}
	n, err := strconv.Atoi(q)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
