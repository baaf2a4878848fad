package normalize

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"weather-dashboard/datasource"
)

// Category buckets a failure for user-facing messaging.
type Category string

const (
	CategoryOffline      Category = "offline"
	CategoryTimeout      Category = "timeout"
	CategoryUnauthorized Category = "unauthorized"
	CategoryNotFound     Category = "not_found"
	CategoryRateLimited  Category = "rate_limited"
	CategoryNetwork      Category = "network"
	CategoryValidation   Category = "validation"
	CategoryUnknown      Category = "unknown"
)

// Classification pairs a failure category with a message fit for display.
type Classification struct {
	Category Category
	Message  string
}

// Classify buckets an error and picks a user-facing phrase. offline reports
// whether the caller already knows connectivity is down, which outranks
// anything the error text says.
func Classify(err error, offline bool) Classification {
	if offline {
		return Classification{CategoryOffline, "You appear to be offline. Check your connection."}
	}
	if err == nil {
		return Classification{CategoryUnknown, "Something went wrong. Please try again."}
	}

	msg := err.Error()
	lower := strings.ToLower(msg)

	var statusErr *datasource.StatusError
	status := 0
	if errors.As(err, &statusErr) {
		status = statusErr.Status
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out"):
		return Classification{CategoryTimeout, "The request timed out. Please try again."}
	case status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(msg, "401") || strings.Contains(msg, "403"):
		return Classification{CategoryUnauthorized, "You are not authorized to perform this action."}
	case status == http.StatusNotFound || strings.Contains(msg, "404"):
		return Classification{CategoryNotFound, "The requested resource was not found."}
	case status == http.StatusTooManyRequests || strings.Contains(msg, "429"):
		return Classification{CategoryRateLimited, "Too many requests. Please wait a moment and try again."}
	case strings.Contains(lower, "network") || strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host"):
		return Classification{CategoryNetwork, "Network error. Check your connection and try again."}
	case strings.Contains(lower, "invalid") || strings.Contains(lower, "validation"):
		return Classification{CategoryValidation, "Some inputs look invalid. Please review and try again."}
	}

	if msg != "" {
		return Classification{CategoryUnknown, msg}
	}
	return Classification{CategoryUnknown, "Something went wrong. Please try again."}
}
