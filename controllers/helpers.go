package controllers

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"lending-admin-api/services"
)

// respondServiceError maps the service error taxonomy onto HTTP statuses so
// the UI can tell bad input, conflicts and missing entities apart.
func respondServiceError(c *gin.Context, err error) {
	var (
		validation   *services.ValidationError
		invalidState *services.InvalidStateError
		notFound     *services.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": validation.Error()})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": invalidState.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": notFound.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
	}
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// branchNotifyRecipients reads NOTIFY_RECIPIENTS (comma separated) for
// decision emails; empty means notifications are off.
func branchNotifyRecipients() []string {
	parts := strings.Split(os.Getenv("NOTIFY_RECIPIENTS"), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func currentUserID(c *gin.Context) int {
	if v, ok := c.Get("userID"); ok {
		if id, ok := v.(int); ok {
			return id
		}
	}
	return 0
}
