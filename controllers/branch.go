package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lending-admin-api/config"
	"lending-admin-api/models"
)

// GetBranches returns all branches ordered by code.
func GetBranches(c *gin.Context) {
	var branches []models.Branch
	if err := config.DB.Where("deleted_at IS NULL").
		Order("branch_code ASC").
		Find(&branches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch branches"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "branches": branches})
}

// CreateBranch creates a branch (admin only).
func CreateBranch(c *gin.Context) {
	var req struct {
		BranchName string  `json:"branch_name" binding:"required"`
		BranchCode string  `json:"branch_code" binding:"required"`
		Address    *string `json:"address"`
		Phone      *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	now := time.Now()
	branch := models.Branch{
		BranchName: strings.TrimSpace(req.BranchName),
		BranchCode: strings.ToUpper(strings.TrimSpace(req.BranchCode)),
		Address:    req.Address,
		Phone:      req.Phone,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := config.DB.Create(&branch).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create branch"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "branch": branch})
}

// UpdateBranch updates branch contact details.
func UpdateBranch(c *gin.Context) {
	branchID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		BranchName *string `json:"branch_name"`
		Address    *string `json:"address"`
		Phone      *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var branch models.Branch
	if err := config.DB.Where("branch_id = ? AND deleted_at IS NULL", branchID).First(&branch).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Branch not found"})
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.BranchName != nil {
		updates["branch_name"] = strings.TrimSpace(*req.BranchName)
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if err := config.DB.Model(&branch).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update branch"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "branch": branch})
}

// DeleteBranch soft-deletes a branch.
func DeleteBranch(c *gin.Context) {
	branchID, ok := pathID(c, "id")
	if !ok {
		return
	}

	now := time.Now()
	res := config.DB.Model(&models.Branch{}).
		Where("branch_id = ? AND deleted_at IS NULL", branchID).
		Update("deleted_at", now)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete branch"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Branch not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Branch deleted"})
}
