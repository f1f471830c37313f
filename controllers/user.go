package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lending-admin-api/config"
	"lending-admin-api/models"
	"lending-admin-api/utils"
)

// GetUsers lists users, optionally filtered by branch or role.
func GetUsers(c *gin.Context) {
	q := config.DB.Preload("Role").Preload("Branch").
		Where("deleted_at IS NULL")

	if branch := strings.TrimSpace(c.Query("branch_id")); branch != "" {
		q = q.Where("branch_id = ?", branch)
	}
	if role := strings.TrimSpace(c.Query("role_id")); role != "" {
		q = q.Where("role_id = ?", role)
	}

	var users []models.User
	if err := q.Order("user_id ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// CreateUser creates a staff account (admin only).
func CreateUser(c *gin.Context) {
	var req struct {
		UserFname string  `json:"user_fname" binding:"required"`
		UserLname string  `json:"user_lname" binding:"required"`
		Email     string  `json:"email" binding:"required,email"`
		Password  string  `json:"password" binding:"required"`
		RoleID    int     `json:"role_id" binding:"required"`
		BranchID  int     `json:"branch_id" binding:"required"`
		Phone     *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	if ok, msg := utils.ValidatePassword(req.Password); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
		return
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create user"})
		return
	}

	now := time.Now()
	user := models.User{
		UserFname: strings.TrimSpace(req.UserFname),
		UserLname: strings.TrimSpace(req.UserLname),
		Email:     utils.NormalizeEmail(req.Email),
		Password:  hashed,
		RoleID:    req.RoleID,
		BranchID:  req.BranchID,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "user": user})
}

// UpdateUser updates role/branch assignment and contact details.
func UpdateUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserFname *string `json:"user_fname"`
		UserLname *string `json:"user_lname"`
		RoleID    *int    `json:"role_id"`
		BranchID  *int    `json:"branch_id"`
		Phone     *string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("user_id = ? AND deleted_at IS NULL", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if req.UserFname != nil {
		updates["user_fname"] = strings.TrimSpace(*req.UserFname)
	}
	if req.UserLname != nil {
		updates["user_lname"] = strings.TrimSpace(*req.UserLname)
	}
	if req.RoleID != nil {
		updates["role_id"] = *req.RoleID
	}
	if req.BranchID != nil {
		updates["branch_id"] = *req.BranchID
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// DeleteUser soft-deletes a staff account.
func DeleteUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if userID == currentUserID(c) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Cannot delete your own account"})
		return
	}

	res := config.DB.Model(&models.User{}).
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Update("deleted_at", time.Now())
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to delete user"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted"})
}
