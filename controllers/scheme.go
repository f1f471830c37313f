package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"lending-admin-api/config"
	"lending-admin-api/models"
)

// GetSchemes returns loan schemes; pass ?active=1 to filter to open ones.
func GetSchemes(c *gin.Context) {
	q := config.DB.Where("deleted_at IS NULL")
	if c.Query("active") == "1" {
		q = q.Where("is_active = ?", true)
	}

	var schemes []models.LoanScheme
	if err := q.Order("scheme_id ASC").Find(&schemes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch schemes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "schemes": schemes})
}

// CreateScheme creates a loan scheme (admin only).
func CreateScheme(c *gin.Context) {
	var req struct {
		SchemeName         string          `json:"scheme_name" binding:"required"`
		InterestRate       decimal.Decimal `json:"interest_rate"`
		InstallmentCount   int             `json:"installment_count" binding:"required"`
		RepaymentCadence   string          `json:"repayment_cadence" binding:"required"`
		MaxPrincipalAmount decimal.Decimal `json:"max_principal_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	cadence := strings.ToLower(strings.TrimSpace(req.RepaymentCadence))
	switch cadence {
	case models.CadenceDaily, models.CadenceWeekly, models.CadenceMonthly:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "repayment_cadence must be daily, weekly or monthly"})
		return
	}
	if req.InstallmentCount < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "installment_count must be at least 1"})
		return
	}

	now := time.Now()
	scheme := models.LoanScheme{
		SchemeName:         strings.TrimSpace(req.SchemeName),
		InterestRate:       req.InterestRate,
		InstallmentCount:   req.InstallmentCount,
		RepaymentCadence:   cadence,
		MaxPrincipalAmount: req.MaxPrincipalAmount,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := config.DB.Create(&scheme).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create scheme"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "scheme": scheme})
}

// SetSchemeActive opens or closes a scheme for new applications. Existing
// loans under the scheme are unaffected.
func SetSchemeActive(c *gin.Context) {
	schemeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "is_active is required"})
		return
	}

	res := config.DB.Model(&models.LoanScheme{}).
		Where("scheme_id = ? AND deleted_at IS NULL", schemeID).
		Updates(map[string]interface{}{"is_active": *req.IsActive, "updated_at": time.Now()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update scheme"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Scheme not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
