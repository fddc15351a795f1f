// Package env reads the handful of process settings consulted before config
// is loaded (log format, worker identity).
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// Is reports whether key holds want, ignoring case.
func Is(key, want string) bool {
	return strings.EqualFold(Get(key, ""), want)
}
