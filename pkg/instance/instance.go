package instance

import (
	"os"

	"github.com/angelmondragon/mallcart/pkg/env"
)

// GetID identifies this process in logs: MALLCART_INSTANCE_ID, then the platform
// dyno name, then the hostname.
func GetID() string {
	if id, ok := env.Lookup("MALLCART_INSTANCE_ID"); ok {
		return id
	}
	if id, ok := env.Lookup("DYNO"); ok {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
