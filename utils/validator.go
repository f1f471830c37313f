// utils/validator.go - Request input helpers shared by the controllers
package utils

import (
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates (due dates, as_of).
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD request parameter in the server's zone.
func ParseDate(raw string) (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ValidatePassword checks password strength for staff accounts.
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}

	return true, ""
}

// NormalizeEmail lowercases and trims an email before storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
