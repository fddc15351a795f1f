// Package gcp holds the credential wiring shared by the Pub/Sub and Cloud
// Storage clients.
package gcp

import (
	"strings"

	"google.golang.org/api/option"

	"github.com/angelmondragon/vendorkyc-backend/pkg/config"
)

// ClientOptions prefers inline JSON credentials over a credentials file. With
// neither set it returns no options and the SDK uses application default
// credentials (or PUBSUB_EMULATOR_HOST for Pub/Sub).
func ClientOptions(cfg config.GCPConfig) []option.ClientOption {
	if creds := strings.TrimSpace(cfg.CredentialsJSON); creds != "" {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	if path := strings.TrimSpace(cfg.ApplicationCredentials); path != "" {
		return []option.ClientOption{option.WithCredentialsFile(path)}
	}
	return nil
}
