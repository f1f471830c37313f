package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"lending-admin-api/config"
	"lending-admin-api/services"
	"lending-admin-api/utils"
)

// RecordPayment appends a collection event against an approved loan and
// returns the record for receipt display.
func RecordPayment(c *gin.Context) {
	loanID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		AmountPaid     decimal.Decimal `json:"amount_paid" binding:"required"`
		Fine           decimal.Decimal `json:"fine"`
		CollectionDate string          `json:"collection_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var collectionDate time.Time
	if req.CollectionDate != "" {
		parsed, ok := utils.ParseDate(req.CollectionDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "collection_date must be YYYY-MM-DD"})
			return
		}
		collectionDate = parsed
	}

	svc := services.NewLoanService(config.DB)
	record, err := svc.RecordPayment(services.RecordPaymentInput{
		LoanID:         loanID,
		AmountPaid:     req.AmountPaid,
		Fine:           req.Fine,
		CollectionDate: collectionDate,
		RecordedBy:     currentUserID(c),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "payment": record})
}

// GetLoanPayments lists the collection history of a loan.
func GetLoanPayments(c *gin.Context) {
	loanID, ok := pathID(c, "id")
	if !ok {
		return
	}

	svc := services.NewLoanService(config.DB)
	if _, err := svc.Get(loanID); err != nil {
		respondServiceError(c, err)
		return
	}

	payments, err := svc.Payments(loanID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payments": payments})
}

// ReversePayment appends a compensating entry for a mistaken record.
func ReversePayment(c *gin.Context) {
	recordID, ok := pathID(c, "record_id")
	if !ok {
		return
	}

	svc := services.NewLoanService(config.DB)
	reversal, err := svc.ReversePayment(recordID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "reversal": reversal})
}
