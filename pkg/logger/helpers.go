package logger

import (
	"time"
)

// LogRequest logs one HTTP exchange. Successful requests stay at debug
// so a normal scrape does not flood the console; failures are promoted.
func LogRequest(method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration":    duration,
	}

	switch {
	case statusCode >= 500:
		GetLogger().ErrorWithFields("HTTP request server error", fields)
	case statusCode >= 400:
		GetLogger().WarnWithFields("HTTP request client error", fields)
	default:
		GetLogger().DebugWithFields("HTTP request completed", fields)
	}
}

// LogRateLimit logs a rate limiting event and the cooldown being taken
func LogRateLimit(operation string, wait time.Duration) {
	GetLogger().WithFields(map[string]interface{}{
		"operation": operation,
		"wait":      wait.String(),
		"action":    "rate_limited",
	}).Warn("Rate limit reached, backing off")
}

// LogSessionStart logs the beginning of a scrape session
func LogSessionStart(mode, target string) {
	GetLogger().WithFields(map[string]interface{}{
		"mode":   mode,
		"target": target,
	}).Info("Session started")
}

// LogSessionEnd logs how a scrape session finished
func LogSessionEnd(mode, reason string, accepted int) {
	GetLogger().WithFields(map[string]interface{}{
		"mode":     mode,
		"reason":   reason,
		"accepted": accepted,
	}).Info("Session finished")
}
