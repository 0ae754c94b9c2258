package instance

import (
	"os"

	"github.com/angelmondragon/surplusmarket-backend/pkg/env"
)

// GetID names the running process for logs and lock ownership. WORKER_ID wins, then the
// platform dyno name, then the hostname.
func GetID(fallback string) string {
	if id := env.First("", "WORKER_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallback
}
