package instance

import (
	"fmt"
	"os"
)

// DefaultRedisPort is the port assumed when no Redis URL is configured.
const DefaultRedisPort = 6379

// GetRedisHost returns the appropriate Redis hostname for the current environment.
// Inside a container it returns "host.docker.internal" to reach the host's
// published ports. Otherwise, it returns "localhost".
func GetRedisHost() string {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "host.docker.internal"
	}
	return "localhost"
}

// GetRedisURL constructs the full Redis URL for a given port.
func GetRedisURL(port int) string {
	host := GetRedisHost()
	return fmt.Sprintf("redis://%s:%d", host, port)
}
