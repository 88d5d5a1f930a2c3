package instance

import (
	"os"

	"github.com/angelmondragon/backoffice/pkg/env"
)

const defaultID = "backoffice-0"

// ID names this process in logs and lock ownership tokens.
// BACKOFFICE_INSTANCE_ID wins over the hostname.
func ID() string {
	if id := env.Get("BACKOFFICE_INSTANCE_ID", ""); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return defaultID
}
