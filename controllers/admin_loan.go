package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"lending-admin-api/config"
	"lending-admin-api/services"
	"lending-admin-api/utils"
)

// ApproveApplication decides a pending application in favour and generates
// its installment schedule atomically with the status flip.
func ApproveApplication(c *gin.Context) {
	appID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		ApprovedAmount    decimal.Decimal `json:"approved_amount" binding:"required"`
		InstallmentCount  int             `json:"installment_count" binding:"required"`
		Cadence           string          `json:"cadence" binding:"required"`
		FirstDueDate      string          `json:"first_due_date" binding:"required"`
		InstallmentAmount decimal.Decimal `json:"installment_amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	firstDue, ok := utils.ParseDate(req.FirstDueDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "first_due_date must be YYYY-MM-DD"})
		return
	}

	svc := services.NewLoanService(config.DB)
	app, err := svc.Approve(appID, req.ApprovedAmount, services.ScheduleTerms{
		InstallmentCount:  req.InstallmentCount,
		Cadence:           req.Cadence,
		FirstDueDate:      firstDue,
		InstallmentAmount: req.InstallmentAmount,
	}, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifyDecision(app.ApplicationID, "approved")

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Application approved",
		"application": app,
	})
}

// RejectApplication decides a pending application against, with a reason.
func RejectApplication(c *gin.Context) {
	appID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request data"})
		return
	}

	svc := services.NewLoanService(config.DB)
	app, err := svc.Reject(appID, req.Reason, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	notifyDecision(app.ApplicationID, "rejected")

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Application rejected",
		"application": app,
	})
}

// notifyDecision mails the branch inbox about a decision. Best effort: a
// mail failure never rolls back the decision itself.
func notifyDecision(applicationID int, outcome string) {
	recipients := branchNotifyRecipients()
	if len(recipients) == 0 {
		return
	}
	subject := "Loan application decision"
	body := "Application #" + itoa(applicationID) + " has been " + outcome + "."
	if err := config.SendMail(recipients, subject, body); err != nil {
		log.Printf("decision notification failed: %v", err)
	}
}
