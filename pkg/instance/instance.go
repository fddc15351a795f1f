// Package instance names the running worker process in logs and lock owners.
package instance

import (
	"os"

	"github.com/angelmondragon/vendorkyc-backend/pkg/env"
)

// GetID prefers VENDORKYC_WORKER_ID, then the hostname.
func GetID() string {
	if id := env.Get("VENDORKYC_WORKER_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
